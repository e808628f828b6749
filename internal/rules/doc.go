// Package rules decides which configuration values are sensitive.
//
// Key rules match the name of the key holding a value (password, api_key,
// token, ...). Value rules match values that identify themselves as
// credentials regardless of their key (AWS key IDs, GitHub tokens, PEM
// blocks, credentialed database URLs). Allow-key patterns exempt metadata
// keys such as password_file or token_ttl before any key rule runs.
package rules

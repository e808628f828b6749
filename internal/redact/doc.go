// Package redact replaces sensitive values in configuration documents.
//
// A Redactor walks every entry of a document.Document, asks the rule set
// whether the entry's key or value is sensitive, and overwrites matching
// values with a placeholder. Run wraps this in the file pipeline: read,
// detect, parse, redact, encode and write.
//
// Redacted values are never logged and never stored in a Result; only their
// location, the rule that matched and their length are kept.
package redact

// Package secrets detects credentials in configuration values using the
// gitleaks rule pack, with gitleaks-style allow-list files.
package secrets

import "errors"

var (
	// ErrInvalidRegex indicates a regex pattern failed to compile.
	ErrInvalidRegex = errors.New("invalid regex pattern")

	// ErrInvalidTOML indicates an allow-list file could not be parsed.
	ErrInvalidTOML = errors.New("invalid TOML format")
)

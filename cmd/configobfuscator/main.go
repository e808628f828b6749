// Configobfuscator replaces sensitive values in configuration files.
//
// Usage:
//
//	# Redact in place
//	configobfuscator config.yaml
//
//	# Write to another file with a custom placeholder
//	configobfuscator -o shared.json -p '<REDACTED>' app.json
//
//	# Preview what would be redacted
//	configobfuscator --dry-run --deep .env
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ShadowStrikeHQ/misconfig-configobfuscator/internal/document"
	"github.com/ShadowStrikeHQ/misconfig-configobfuscator/internal/redact"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
)

// Exit codes.
const (
	exitOK         = 0
	exitError      = 1
	exitParseError = 2
	exitIOError    = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

func exitCode(err error) int {
	var (
		parseErr *document.ParseError
		ioErr    *redact.IOError
	)
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &parseErr):
		return exitParseError
	case errors.As(err, &ioErr):
		return exitIOError
	default:
		return exitError
	}
}

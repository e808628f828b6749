package redact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ShadowStrikeHQ/misconfig-configobfuscator/internal/document"
)

// Stdio is the path that selects stdin for input and stdout for output.
const Stdio = "-"

// Options describes one file run.
type Options struct {
	// Input is the file to redact, or "-" for stdin.
	Input string

	// Output is where the redacted file goes. Empty overwrites Input
	// (stdout when Input is stdin); "-" writes to stdout.
	Output string

	// Format forces the input format. Empty detects it.
	Format document.Format

	// DryRun redacts in memory and writes nothing.
	DryRun bool

	// Stdin and Stdout default to os.Stdin and os.Stdout.
	Stdin  io.Reader
	Stdout io.Writer
}

// Run reads, redacts and writes one file.
//
// Returns a *document.ParseError when the input is not valid in its format
// and an *IOError when it cannot be read or the output cannot be written.
// On error the output is left untouched.
func (r *Redactor) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	logger := r.log(ctx)
	output := opts.Output
	if output == "" {
		output = opts.Input
	}

	data, mode, err := readInput(opts.Input, opts.Stdin)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format := opts.Format
	if format == "" {
		name := opts.Input
		if name == Stdio {
			name = ""
		}
		format = document.Detect(name, data)
	}

	logger.Debug(ctx, "parsing input",
		zap.String("input", opts.Input),
		zap.String("format", string(format)),
		zap.Int("bytes", len(data)),
	)

	doc, err := document.Parse(data, format)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := r.Redact(ctx, doc)
	if err != nil {
		return nil, err
	}
	result.Input = opts.Input
	result.Output = output
	result.DryRun = opts.DryRun

	if opts.DryRun {
		logger.Info(ctx, "dry run, nothing written", zap.String("output", output))
		return result, nil
	}

	out, err := result.Encode()
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", format, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if output == Stdio {
		if _, err := opts.Stdout.Write(out); err != nil {
			return nil, &IOError{Op: "write", Path: Stdio, Err: err}
		}
		return result, nil
	}

	if err := WriteFileAtomic(output, out, outputMode(output, mode)); err != nil {
		return nil, err
	}
	logger.Debug(ctx, "output written", zap.String("output", output), zap.Int("bytes", len(out)))

	return result, nil
}

// readInput returns the content and, for regular files, the permission bits.
func readInput(path string, stdin io.Reader) ([]byte, fs.FileMode, error) {
	if path == Stdio {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, 0, &IOError{Op: "read", Path: Stdio, Err: err}
		}
		return data, 0, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, &IOError{Op: "stat", Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, 0, &IOError{Op: "read", Path: path, Err: errors.New("is a directory")}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, &IOError{Op: "read", Path: path, Err: err}
	}
	return data, info.Mode().Perm(), nil
}

// outputMode keeps the mode of an existing target, else uses the input's.
func outputMode(path string, inputMode fs.FileMode) fs.FileMode {
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return info.Mode().Perm()
	}
	if inputMode != 0 {
		return inputMode
	}
	return 0o644
}

// WriteFileAtomic writes data to a temporary file in the target directory and
// renames it over path, so readers never see a partial file.
func WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

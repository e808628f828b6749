package redact

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShadowStrikeHQ/misconfig-configobfuscator/internal/document"
)

const (
	exampleInput  = `{"password": "abc123", "host": "localhost"}`
	exampleOutput = `{"password": "***REDACTED***", "host": "localhost"}`
)

func writeFile(t *testing.T, dir, name, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRun_OutputLeavesInputUntouched(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "app.json", exampleInput, 0o644)
	output := filepath.Join(dir, "app.redacted.json")

	res, err := newRedactor(t, nil).Run(context.Background(), Options{Input: input, Output: output})
	require.NoError(t, err)

	assert.Equal(t, exampleInput, readFile(t, input))
	assert.Equal(t, exampleOutput, readFile(t, output))
	assert.Equal(t, input, res.Input)
	assert.Equal(t, output, res.Output)
	assert.Equal(t, document.FormatJSON, res.Format)
}

func TestRun_OverwritesInput(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "settings.yaml", "db:\n  password: hunter2 # rotate monthly\n  host: localhost\n", 0o600)

	res, err := newRedactor(t, nil).Run(context.Background(), Options{Input: input})
	require.NoError(t, err)
	assert.Equal(t, input, res.Output)

	got := readFile(t, input)
	assert.NotContains(t, got, "hunter2")
	assert.Contains(t, got, "# rotate monthly")
	assert.Contains(t, got, "host: localhost")

	info, err := os.Stat(input)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "app.json", exampleInput, 0o644)
	output := filepath.Join(dir, "out.json")
	var stdout bytes.Buffer

	res, err := newRedactor(t, nil).Run(context.Background(), Options{
		Input:  input,
		Output: output,
		DryRun: true,
		Stdout: &stdout,
	})
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Len(t, res.Redactions, 1)
	assert.Equal(t, exampleInput, readFile(t, input))
	assert.NoFileExists(t, output)
	assert.Zero(t, stdout.Len())
}

func TestRun_Stdio(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		input  string
		output string
	}{
		{
			name:   "detects json",
			opts:   Options{Input: Stdio},
			input:  exampleInput,
			output: exampleOutput,
		},
		{
			name:   "sniffs dotenv",
			opts:   Options{Input: Stdio, Output: Stdio},
			input:  "DB_PASSWORD=abc\nDB_HOST=localhost\n",
			output: "DB_PASSWORD=***REDACTED***\nDB_HOST=localhost\n",
		},
		{
			name:   "forced format",
			opts:   Options{Input: Stdio, Format: document.FormatTOML},
			input:  "token = \"t\"\n",
			output: "token = \"***REDACTED***\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			tt.opts.Stdin = strings.NewReader(tt.input)
			tt.opts.Stdout = &stdout

			_, err := newRedactor(t, nil).Run(context.Background(), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.output, stdout.String())
		})
	}
}

func TestRun_ParseErrorLeavesOutputUntouched(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "broken.json", "{\"password\": \"abc\",\n  oops\n}", 0o644)
	output := writeFile(t, dir, "previous.json", "previous", 0o644)

	_, err := newRedactor(t, nil).Run(context.Background(), Options{Input: input, Output: output})

	var parseErr *document.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, document.FormatJSON, parseErr.Format)
	assert.Equal(t, "previous", readFile(t, output))
}

func TestRun_IOErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "app.json", exampleInput, 0o644)

	tests := []struct {
		name   string
		opts   Options
		wantOp string
	}{
		{
			name:   "missing input",
			opts:   Options{Input: filepath.Join(dir, "missing.json")},
			wantOp: "stat",
		},
		{
			name:   "input is a directory",
			opts:   Options{Input: dir},
			wantOp: "read",
		},
		{
			name:   "output directory missing",
			opts:   Options{Input: input, Output: filepath.Join(dir, "nope", "out.json")},
			wantOp: "write",
		},
		{
			name:   "stdin failure",
			opts:   Options{Input: Stdio, Stdin: failingReader{}},
			wantOp: "read",
		},
		{
			name:   "stdout failure",
			opts:   Options{Input: input, Output: Stdio, Stdout: failingWriter{}},
			wantOp: "write",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newRedactor(t, nil).Run(context.Background(), tt.opts)

			var ioErr *IOError
			require.ErrorAs(t, err, &ioErr)
			assert.Equal(t, tt.wantOp, ioErr.Op)
		})
	}

	assert.Equal(t, exampleInput, readFile(t, input))
}

func TestWriteFileAtomic_ReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "out.txt", "old", 0o600)

	require.NoError(t, WriteFileAtomic(path, []byte("new"), 0o640))

	assert.Equal(t, "new", readFile(t, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestIOError(t *testing.T) {
	err := &IOError{Op: "write", Path: "out.yaml", Err: os.ErrPermission}
	assert.Equal(t, "write out.yaml: permission denied", err.Error())
	assert.True(t, errors.Is(err, os.ErrPermission))
}

var errBroken = errors.New("broken pipe")

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errBroken }

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errBroken }

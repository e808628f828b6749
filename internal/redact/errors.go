package redact

import (
	"errors"
	"fmt"
)

// ErrNilRules is returned by New when no rule set is given.
var ErrNilRules = errors.New("redact: rule set is required")

// IOError reports a failure to read the input or write an output.
type IOError struct {
	Op   string // read, stat, write, rename
	Path string // "-" for stdin/stdout
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

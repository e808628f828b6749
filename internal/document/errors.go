package document

import (
	"errors"
	"fmt"
)

// ErrUnknownFormat indicates an unsupported format name.
var ErrUnknownFormat = errors.New("unknown format")

// ParseError reports input that is not valid in its format.
type ParseError struct {
	Format Format
	Line   int // 1-indexed, 0 if unknown
	Column int // 1-indexed, 0 if unknown
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("invalid %s at line %d, column %d: %v", e.Format, e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("invalid %s at line %d: %v", e.Format, e.Line, e.Err)
	default:
		return fmt.Sprintf("invalid %s: %v", e.Format, e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// position converts a byte offset into a 1-indexed line and column.
func position(data []byte, offset int) (line, column int) {
	if offset < 0 {
		return 0, 0
	}
	if offset > len(data) {
		offset = len(data)
	}
	line = 1
	lineStart := 0
	for i := 0; i < offset; i++ {
		if data[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, offset - lineStart + 1
}

package document

import (
	"fmt"
)

// Kind is the scalar type of an entry value as reported by the source format.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindNull
	KindDate
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Entry is one scalar value of a configuration document.
type Entry struct {
	// Path leads from the document root to the value.
	Path Path

	// Value is the decoded scalar (quotes and escapes removed).
	Value string

	// Kind is the scalar type.
	Kind Kind

	// Line and Column locate the value in the source (1-indexed, 0 if unknown).
	Line   int
	Column int

	// Stream is the index of the document inside a multi-document YAML stream.
	Stream int
}

// backend is implemented by each format codec.
type backend interface {
	// replace substitutes the value of entry i.
	replace(i int, value string) error

	// encode serializes the document with all replacements applied.
	encode() ([]byte, error)
}

// Document is a parsed configuration file.
type Document struct {
	format  Format
	entries []Entry
	backend backend
}

// Parse decodes data in the given format.
// Returns a *ParseError when data is not valid for the format.
func Parse(data []byte, format Format) (*Document, error) {
	var (
		doc *Document
		err error
	)

	switch format {
	case FormatYAML:
		doc, err = parseYAML(data)
	case FormatJSON:
		doc, err = parseJSON(data)
	case FormatTOML:
		doc, err = parseTOML(data)
	case FormatINI:
		doc, err = parseINI(data)
	case FormatEnv:
		doc, err = parseEnv(data)
	case FormatProperties:
		doc, err = parseProperties(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}

	doc.format = format
	return doc, nil
}

// Format returns the source format.
func (d *Document) Format() Format {
	return d.format
}

// Len returns the number of entries.
func (d *Document) Len() int {
	return len(d.entries)
}

// Entries returns a copy of the entries in document order.
func (d *Document) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Entry returns entry i.
func (d *Document) Entry(i int) Entry {
	return d.entries[i]
}

// Replace sets the value of entry i. The new value is always written as a
// string in the target format.
func (d *Document) Replace(i int, value string) error {
	if i < 0 || i >= len(d.entries) {
		return fmt.Errorf("entry index %d out of range [0,%d)", i, len(d.entries))
	}
	if err := d.backend.replace(i, value); err != nil {
		return fmt.Errorf("replace %s: %w", d.entries[i].Path, err)
	}
	d.entries[i].Value = value
	d.entries[i].Kind = KindString
	return nil
}

// Encode serializes the document in its source format.
func (d *Document) Encode() ([]byte, error) {
	return d.backend.encode()
}

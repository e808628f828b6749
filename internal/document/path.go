package document

import (
	"strconv"
	"strings"
)

// Segment is one step of a Path: a mapping key, or a sequence index when
// Index >= 0.
type Segment struct {
	Key   string
	Index int
}

// IsIndex reports whether the segment addresses a sequence element.
func (s Segment) IsIndex() bool {
	return s.Index >= 0
}

// Path addresses a value inside a document.
type Path []Segment

// Child returns a copy of p extended with a mapping key.
func (p Path) Child(key string) Path {
	return p.append(Segment{Key: key, Index: -1})
}

// Index returns a copy of p extended with a sequence index.
func (p Path) Index(i int) Path {
	return p.append(Segment{Index: i})
}

func (p Path) append(s Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, s)
}

// Key returns the nearest mapping key, skipping sequence indexes.
// Returns "" when the path holds no key (e.g. a top-level array element).
func (p Path) Key() string {
	for i := len(p) - 1; i >= 0; i-- {
		if !p[i].IsIndex() {
			return p[i].Key
		}
	}
	return ""
}

// Keys returns every mapping key of the path, outermost first.
func (p Path) Keys() []string {
	keys := make([]string, 0, len(p))
	for _, s := range p {
		if !s.IsIndex() {
			keys = append(keys, s.Key)
		}
	}
	return keys
}

// String renders the path as `a.b[0].c`. Keys that would be ambiguous in that
// notation are quoted: `a["b.c"]`.
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if s.IsIndex() {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.Index))
			b.WriteByte(']')
			continue
		}
		if needsQuoting(s.Key) {
			b.WriteByte('[')
			b.WriteString(strconv.Quote(s.Key))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.Key)
	}
	return b.String()
}

func needsQuoting(key string) bool {
	return key == "" || strings.ContainsAny(key, ".[]\" \t\n")
}

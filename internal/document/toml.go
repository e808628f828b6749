package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

func parseTOML(data []byte) (*Document, error) {
	// The unstable parser only checks syntax; Unmarshal also rejects
	// redefined keys and tables.
	var probe map[string]any
	if err := toml.Unmarshal(data, &probe); err != nil {
		return nil, tomlParseError(err)
	}

	b := newSpliceBackend(data, encodeTOMLString)
	doc := &Document{backend: b}
	w := &tomlWalker{
		data:    data,
		doc:     doc,
		backend: b,
		arrays:  make(map[string]int),
	}

	p := &w.parser
	p.Reset(data)
	for p.NextExpression() {
		e := p.Expression()
		switch e.Kind {
		case unstable.Table:
			w.table = w.resolve(e.Key(), false)
		case unstable.ArrayTable:
			w.table = w.resolve(e.Key(), true)
		case unstable.KeyValue:
			w.keyValue(e, w.table)
		}
	}
	if err := p.Error(); err != nil {
		return nil, &ParseError{Format: FormatTOML, Err: err}
	}
	return doc, nil
}

type tomlWalker struct {
	parser  unstable.Parser
	data    []byte
	doc     *Document
	backend *spliceBackend

	// table is the path of the current [table] or [[array table]] element.
	table Path

	// arrays counts the elements of each array table, keyed by resolved path.
	arrays map[string]int
}

// resolve turns a table header into a path, inserting the current element
// index of every array table it passes through.
func (w *tomlWalker) resolve(key unstable.Iterator, arrayTable bool) Path {
	var path Path
	for key.Next() {
		path = path.Child(string(key.Node().Data))
		last := key.IsLast()

		if last && arrayTable {
			id := path.String()
			w.arrays[id]++
			path = path.Index(w.arrays[id] - 1)
			continue
		}
		if n, ok := w.arrays[path.String()]; ok && n > 0 {
			path = path.Index(n - 1)
		}
	}
	return path
}

func (w *tomlWalker) keyValue(kv *unstable.Node, base Path) {
	path := base
	key := kv.Key()
	for key.Next() {
		path = path.Child(string(key.Node().Data))
	}
	w.value(kv.Value(), path)
}

func (w *tomlWalker) value(n *unstable.Node, path Path) {
	switch n.Kind {
	case unstable.Array:
		it := n.Children()
		for i := 0; it.Next(); i++ {
			w.value(it.Node(), path.Index(i))
		}
	case unstable.InlineTable:
		it := n.Children()
		for it.Next() {
			w.keyValue(it.Node(), path)
		}
	default:
		r := n.Raw
		if r.Length == 0 {
			r = w.parser.Range(n.Data)
		}
		start := int(r.Offset)
		end := start + int(r.Length)

		line, col := position(w.data, start)
		w.doc.entries = append(w.doc.entries, Entry{
			Path:   path,
			Value:  string(n.Data),
			Kind:   tomlKind(n.Kind),
			Line:   line,
			Column: col,
		})
		w.backend.add(span{start: start, end: end})
	}
}

func tomlKind(k unstable.Kind) Kind {
	switch k {
	case unstable.Bool:
		return KindBool
	case unstable.Integer, unstable.Float:
		return KindNumber
	case unstable.LocalDate, unstable.LocalTime, unstable.LocalDateTime, unstable.DateTime:
		return KindDate
	default:
		return KindString
	}
}

func tomlParseError(err error) error {
	perr := &ParseError{Format: FormatTOML, Err: err}
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		perr.Line, perr.Column = derr.Position()
	}
	return perr
}

// encodeTOMLString keeps a single-line literal string when the value fits in
// one and falls back to an escaped basic string otherwise.
func encodeTOMLString(raw []byte, value string) ([]byte, error) {
	literal := len(raw) > 0 && raw[0] == '\'' && !strings.HasPrefix(string(raw), "'''")
	if literal && fitsTOMLLiteral(value) {
		return []byte("'" + value + "'"), nil
	}
	return []byte(quoteTOML(value)), nil
}

func fitsTOMLLiteral(s string) bool {
	for _, r := range s {
		if r == '\'' || (r < 0x20 && r != '\t') || r == 0x7f {
			return false
		}
	}
	return true
}

func quoteTOML(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\t':
			sb.WriteString(`\t`)
		case '\n':
			sb.WriteString(`\n`)
		case '\f':
			sb.WriteString(`\f`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&sb, `\u%04X`, r)
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

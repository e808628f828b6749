package document

import (
	"errors"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

var errInvalidJSON = errors.New("malformed JSON")

func parseJSON(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, jsonParseError(data)
	}

	b := newSpliceBackend(data, func(_ []byte, value string) ([]byte, error) {
		return quoteJSON(value)
	})
	doc := &Document{backend: b}

	var walk func(r gjson.Result, path Path)
	walk = func(r gjson.Result, path Path) {
		switch {
		case r.IsObject():
			r.ForEach(func(key, value gjson.Result) bool {
				walk(value, path.Child(key.String()))
				return true
			})
		case r.IsArray():
			i := 0
			r.ForEach(func(_, value gjson.Result) bool {
				walk(value, path.Index(i))
				i++
				return true
			})
		default:
			line, col := position(data, r.Index)
			doc.entries = append(doc.entries, Entry{
				Path:   path,
				Value:  jsonScalar(r),
				Kind:   jsonKind(r.Type),
				Line:   line,
				Column: col,
			})
			b.add(span{start: r.Index, end: r.Index + len(r.Raw)})
		}
	}

	root := gjson.ParseBytes(data)
	if root.IsObject() || root.IsArray() {
		walk(root, nil)
	}
	return doc, nil
}

func jsonScalar(r gjson.Result) string {
	if r.Type == gjson.String {
		return r.Str
	}
	return r.Raw
}

func jsonKind(t gjson.Type) Kind {
	switch t {
	case gjson.Null:
		return KindNull
	case gjson.True, gjson.False:
		return KindBool
	case gjson.Number:
		return KindNumber
	default:
		return KindString
	}
}

// jsonParseError decodes data again to obtain the offset of the syntax error.
func jsonParseError(data []byte) error {
	var v any
	err := json.Unmarshal(data, &v)
	if err == nil {
		err = errInvalidJSON
	}

	perr := &ParseError{Format: FormatJSON, Err: err}
	var syntax *json.SyntaxError
	if errors.As(err, &syntax) {
		perr.Line, perr.Column = position(data, int(syntax.Offset))
	}
	return perr
}

// quoteJSON renders s as a JSON string without HTML escaping.
func quoteJSON(s string) ([]byte, error) {
	return json.MarshalWithOption(s, json.DisableHTMLEscape())
}

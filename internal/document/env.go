package document

import (
	"bytes"
	"errors"
	"strings"

	"github.com/subosito/gotenv"
)

var errUnterminatedQuote = errors.New("unterminated quoted value")

func parseEnv(data []byte) (*Document, error) {
	if _, err := gotenv.StrictParse(bytes.NewReader(data)); err != nil {
		return nil, &ParseError{Format: FormatEnv, Err: err}
	}

	b := newSpliceBackend(data, encodeEnvValue)
	doc := &Document{backend: b}

	for pos := 0; pos < len(data); {
		next, err := scanEnvLine(data, pos, func(key string, s span, value string) {
			line, col := position(data, s.start)
			doc.entries = append(doc.entries, Entry{
				Path:   Path{}.Child(key),
				Value:  value,
				Kind:   KindString,
				Line:   line,
				Column: col,
			})
			b.add(s)
		})
		if err != nil {
			line, _ := position(data, pos)
			return nil, &ParseError{Format: FormatEnv, Line: line, Err: err}
		}
		pos = next
	}
	return doc, nil
}

// scanEnvLine reads one assignment starting at pos and returns the offset of
// the next line. Quoted values may span several lines.
func scanEnvLine(data []byte, pos int, emit func(key string, s span, value string)) (int, error) {
	eol := lineEnd(data, pos)
	i := skipBlanks(data, pos, eol)
	if i == eol || data[i] == '#' {
		return nextLine(data, eol), nil
	}

	if rest := data[i:eol]; bytes.HasPrefix(rest, []byte("export ")) || bytes.HasPrefix(rest, []byte("export\t")) {
		i = skipBlanks(data, i+len("export"), eol)
	}

	delim := bytes.IndexAny(data[i:eol], "=:")
	if delim < 0 {
		// A bare "export NAME" line; gotenv already vetted it.
		return nextLine(data, eol), nil
	}
	key := strings.TrimSpace(string(data[i : i+delim]))
	start := skipBlanks(data, i+delim+1, eol)

	if start < len(data) && (data[start] == '"' || data[start] == '\'') {
		quote := data[start]
		end := closingQuote(data, start+1, quote)
		if end < 0 {
			return 0, errUnterminatedQuote
		}
		inner := string(data[start+1 : end])
		if quote == '"' {
			inner = unescapeEnv(inner)
		}
		emit(key, span{start: start, end: end + 1}, inner)
		return nextLine(data, lineEnd(data, end)), nil
	}

	end := inlineComment(data, start, eol)
	for end > start && (data[end-1] == ' ' || data[end-1] == '\t' || data[end-1] == '\r') {
		end--
	}
	emit(key, span{start: start, end: end}, string(data[start:end]))
	return nextLine(data, eol), nil
}

// inlineComment returns where a trailing comment begins in an unquoted value,
// or eol. A '#' only opens a comment after a blank; abc#def is one value.
func inlineComment(data []byte, start, eol int) int {
	for i := start; i < eol; i++ {
		if data[i] == '#' && i > 0 && (data[i-1] == ' ' || data[i-1] == '\t') {
			return i
		}
	}
	return eol
}

func lineEnd(data []byte, pos int) int {
	if i := bytes.IndexByte(data[pos:], '\n'); i >= 0 {
		return pos + i
	}
	return len(data)
}

func nextLine(data []byte, eol int) int {
	if eol < len(data) {
		return eol + 1
	}
	return len(data)
}

func skipBlanks(data []byte, i, limit int) int {
	for i < limit && (data[i] == ' ' || data[i] == '\t') {
		i++
	}
	return i
}

// closingQuote returns the offset of the quote ending a value that starts at
// i, or -1. Double quotes honour backslash escapes.
func closingQuote(data []byte, i int, quote byte) int {
	for ; i < len(data); i++ {
		switch data[i] {
		case '\\':
			if quote == '"' {
				i++
			}
		case quote:
			return i
		}
	}
	return -1
}

func unescapeEnv(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			sb.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// encodeEnvValue keeps the quoting style of the original value when the
// replacement can be expressed in it.
func encodeEnvValue(raw []byte, value string) ([]byte, error) {
	var quote byte
	if len(raw) > 0 {
		quote = raw[0]
	}

	switch {
	case quote == '\'' && !strings.ContainsAny(value, "'\n\r"):
		return []byte("'" + value + "'"), nil
	case quote != '"' && quote != '\'' && plainEnvValue(value):
		return []byte(value), nil
	}

	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range value {
		switch r {
		case '"', '\\', '$':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return []byte(sb.String()), nil
}

func plainEnvValue(s string) bool {
	if s == "" {
		return true
	}
	return !strings.ContainsAny(s, " \t\r\n#'\"\\$")
}

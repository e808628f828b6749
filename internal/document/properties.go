package document

import (
	"bytes"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/magiconair/properties"
)

type propertiesBackend struct {
	props *properties.Properties
	keys  []string
}

func parseProperties(data []byte) (*Document, error) {
	loader := properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadBytes(data)
	if err != nil {
		return nil, propertiesParseError(err)
	}

	b := &propertiesBackend{props: p}
	doc := &Document{backend: b}
	positions := propertiesPositions(data)
	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		var path Path
		for _, part := range strings.Split(key, ".") {
			path = path.Child(part)
		}
		pos := positions[key]
		doc.entries = append(doc.entries, Entry{
			Path:   path,
			Value:  value,
			Kind:   KindString,
			Line:   pos.line,
			Column: pos.column,
		})
		b.keys = append(b.keys, key)
	}
	return doc, nil
}

func (b *propertiesBackend) replace(i int, value string) error {
	_, _, err := b.props.Set(b.keys[i], value)
	return err
}

func (b *propertiesBackend) encode() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := b.props.WriteComment(&buf, "# ", properties.UTF8); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type sourcePos struct {
	line, column int
}

// propertiesPositions maps each key to where its value starts. The loader
// keeps no positions, so the source is scanned again line by line; a key
// defined twice reports its last definition, which is the one that wins.
func propertiesPositions(data []byte) map[string]sourcePos {
	out := make(map[string]sourcePos)
	lines := strings.Split(string(data), "\n")
	for n := 0; n < len(lines); n++ {
		line := strings.TrimRight(lines[n], "\r")
		start := len(line) - len(strings.TrimLeft(line, " \t\f"))
		if start == len(line) || line[start] == '#' || line[start] == '!' {
			continue
		}
		lineNo := n + 1
		for n < len(lines)-1 && continuesLine(strings.TrimRight(lines[n], "\r")) {
			n++
		}

		var key strings.Builder
		i := start
	scan:
		for ; i < len(line); i++ {
			switch c := line[i]; c {
			case '\\':
				if i+1 < len(line) {
					i++
					key.WriteByte(line[i])
				}
			case '=', ':', ' ', '\t', '\f':
				break scan
			default:
				key.WriteByte(c)
			}
		}
		for i < len(line) && (line[i] == ' ' || line[i] == '\t' || line[i] == '\f') {
			i++
		}
		if i < len(line) && (line[i] == '=' || line[i] == ':') {
			i++
			for i < len(line) && (line[i] == ' ' || line[i] == '\t' || line[i] == '\f') {
				i++
			}
		}
		out[key.String()] = sourcePos{line: lineNo, column: i + 1}
	}
	return out
}

// continuesLine reports whether line ends in an odd run of backslashes.
func continuesLine(line string) bool {
	n := 0
	for i := len(line) - 1; i >= 0 && line[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

var propertiesLinePattern = regexp.MustCompile(`^properties: Line (\d+): (.*)$`)

func propertiesParseError(err error) error {
	perr := &ParseError{Format: FormatProperties, Err: err}
	if m := propertiesLinePattern.FindStringSubmatch(err.Error()); m != nil {
		perr.Line, _ = strconv.Atoi(m[1])
		perr.Err = errors.New(m[2])
	}
	return perr
}

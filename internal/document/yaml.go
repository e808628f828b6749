package document

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultYAMLIndent = 2

// yamlBackend holds the node trees of every document in the stream.
type yamlBackend struct {
	docs   []*yaml.Node
	nodes  []*yaml.Node
	indent int

	// aliases maps an anchored scalar to the alias nodes that reference it.
	aliases map[*yaml.Node][]*yaml.Node
}

func parseYAML(data []byte) (*Document, error) {
	b := &yamlBackend{
		indent:  detectIndent(data),
		aliases: make(map[*yaml.Node][]*yaml.Node),
	}
	doc := &Document{backend: b}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	for stream := 0; ; stream++ {
		var root yaml.Node
		err := dec.Decode(&root)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, yamlParseError(err)
		}
		b.docs = append(b.docs, &root)
		b.walk(doc, &root, nil, stream)
	}
	return doc, nil
}

func (b *yamlBackend) walk(doc *Document, n *yaml.Node, path Path, stream int) {
	switch n.Kind {
	case yaml.DocumentNode:
		for _, c := range n.Content {
			b.walk(doc, c, path, stream)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				continue
			}
			b.walk(doc, value, path.Child(key.Value), stream)
		}
	case yaml.SequenceNode:
		for i, c := range n.Content {
			b.walk(doc, c, path.Index(i), stream)
		}
	case yaml.ScalarNode:
		doc.entries = append(doc.entries, Entry{
			Path:   path,
			Value:  n.Value,
			Kind:   yamlKind(n),
			Line:   n.Line,
			Column: n.Column,
			Stream: stream,
		})
		b.nodes = append(b.nodes, n)
	case yaml.AliasNode:
		// Aliases of collections share the anchored nodes, which are
		// visited where they are defined.
		target := n.Alias
		if target == nil || target.Kind != yaml.ScalarNode {
			return
		}
		doc.entries = append(doc.entries, Entry{
			Path:   path,
			Value:  target.Value,
			Kind:   yamlKind(target),
			Line:   n.Line,
			Column: n.Column,
			Stream: stream,
		})
		b.nodes = append(b.nodes, n)
		b.aliases[target] = append(b.aliases[target], n)
	}
}

func yamlKind(n *yaml.Node) Kind {
	switch n.ShortTag() {
	case "!!null":
		return KindNull
	case "!!bool":
		return KindBool
	case "!!int", "!!float":
		return KindNumber
	case "!!timestamp":
		return KindDate
	default:
		return KindString
	}
}

// replace rewrites entry i. An alias becomes a plain scalar. An anchored
// scalar first hands its old value to the aliases still pointing at it, so
// those keep reading the same value.
func (b *yamlBackend) replace(i int, value string) error {
	n := b.nodes[i]
	if n.Kind == yaml.AliasNode {
		n.Kind = yaml.ScalarNode
		n.Alias = nil
		n.Style = 0
	} else {
		for _, a := range b.aliases[n] {
			if a.Kind != yaml.AliasNode {
				continue
			}
			a.Kind = yaml.ScalarNode
			a.Alias = nil
			a.Value = n.Value
			a.Tag = n.Tag
			a.Style = n.Style
		}
		delete(b.aliases, n)
	}

	n.Value = value
	n.Tag = "!!str"
	// Block scalars and explicit tags make no sense for a placeholder; the
	// encoder quotes the value when a plain scalar would not read back as a string.
	n.Style &^= yaml.LiteralStyle | yaml.FoldedStyle | yaml.TaggedStyle
	return nil
}

func (b *yamlBackend) encode() ([]byte, error) {
	var buf bytes.Buffer
	if len(b.docs) == 0 {
		return buf.Bytes(), nil
	}

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(b.indent)
	for _, d := range b.docs {
		if err := enc.Encode(d); err != nil {
			return nil, err
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var yamlLinePattern = regexp.MustCompile(`^yaml: line (\d+): (.*)$`)

func yamlParseError(err error) error {
	perr := &ParseError{Format: FormatYAML, Err: err}
	if m := yamlLinePattern.FindStringSubmatch(err.Error()); m != nil {
		perr.Line, _ = strconv.Atoi(m[1])
		perr.Err = errors.New(m[2])
	}
	return perr
}

// detectIndent returns the smallest non-zero indentation of a mapping line,
// so re-encoded output keeps the author's indent width.
func detectIndent(data []byte) int {
	indent := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "- ") {
			continue
		}
		n := len(line) - len(trimmed)
		if n > 0 && (indent == 0 || n < indent) {
			indent = n
		}
	}
	if indent < 2 || indent > 8 {
		return defaultYAMLIndent
	}
	return indent
}

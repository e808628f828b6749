package document

import (
	"bytes"
	"sort"
)

// span is the byte range [start, end) of a raw value in the source.
type span struct {
	start, end int
}

// edit replaces a span with new raw bytes.
type edit struct {
	span
	raw []byte
}

// spliceBackend keeps the source bytes and rewrites only replaced spans, so
// everything else survives byte for byte.
type spliceBackend struct {
	src   []byte
	spans []span
	edits map[int]edit

	// encodeValue renders a replacement for entry i given its original raw bytes.
	encodeValue func(raw []byte, value string) ([]byte, error)
}

func newSpliceBackend(src []byte, encodeValue func(raw []byte, value string) ([]byte, error)) *spliceBackend {
	return &spliceBackend{
		src:         src,
		edits:       make(map[int]edit),
		encodeValue: encodeValue,
	}
}

// add registers the span of the next entry.
func (b *spliceBackend) add(s span) {
	b.spans = append(b.spans, s)
}

func (b *spliceBackend) replace(i int, value string) error {
	s := b.spans[i]
	raw, err := b.encodeValue(b.src[s.start:s.end], value)
	if err != nil {
		return err
	}
	b.edits[i] = edit{span: s, raw: raw}
	return nil
}

func (b *spliceBackend) encode() ([]byte, error) {
	if len(b.edits) == 0 {
		return bytes.Clone(b.src), nil
	}

	edits := make([]edit, 0, len(b.edits))
	for _, e := range b.edits {
		edits = append(edits, e)
	}
	// Spans never overlap; apply in source order.
	sort.Slice(edits, func(i, j int) bool {
		return edits[i].start < edits[j].start
	})

	var out bytes.Buffer
	out.Grow(len(b.src))
	last := 0
	for _, e := range edits {
		out.Write(b.src[last:e.start])
		out.Write(e.raw)
		last = e.end
	}
	out.Write(b.src[last:])
	return out.Bytes(), nil
}

package document

import (
	"bytes"

	"gopkg.in/ini.v1"
)

type iniBackend struct {
	file *ini.File
	keys []*ini.Key
}

func parseINI(data []byte) (*Document, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		AllowBooleanKeys:           true,
		AllowPythonMultilineValues: true,
		SpaceBeforeInlineComment:   true,
	}, data)
	if err != nil {
		return nil, &ParseError{Format: FormatINI, Err: err}
	}

	b := &iniBackend{file: f}
	doc := &Document{backend: b}
	for _, s := range f.Sections() {
		var base Path
		if s.Name() != ini.DefaultSection {
			base = base.Child(s.Name())
		}
		for _, k := range s.Keys() {
			doc.entries = append(doc.entries, Entry{
				Path:  base.Child(k.Name()),
				Value: k.Value(),
				Kind:  KindString,
			})
			b.keys = append(b.keys, k)
		}
	}
	return doc, nil
}

func (b *iniBackend) replace(i int, value string) error {
	b.keys[i].SetValue(value)
	return nil
}

func (b *iniBackend) encode() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := b.file.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

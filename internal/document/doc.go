// Package document parses configuration files into an ordered list of
// key-path/value entries and writes them back in their original format.
//
// Every supported format (YAML, JSON, TOML, INI, dotenv, Java properties)
// produces the same flat view: one Entry per scalar value, in document order,
// with the path of mapping keys and sequence indexes that leads to it.
// Callers replace values through Document.Replace and serialize with
// Document.Encode; everything that was not replaced is written back as it was
// read, including comments where the underlying codec keeps them.
//
// Usage:
//
//	doc, err := document.Parse(data, document.FormatJSON)
//	if err != nil {
//	    return err
//	}
//	for i, e := range doc.Entries() {
//	    if e.Path.Key() == "password" {
//	        _ = doc.Replace(i, "***REDACTED***")
//	    }
//	}
//	out, err := doc.Encode()
package document

package document

import (
	"bufio"
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// Format identifies a configuration file syntax.
type Format string

const (
	FormatYAML       Format = "yaml"
	FormatJSON       Format = "json"
	FormatTOML       Format = "toml"
	FormatINI        Format = "ini"
	FormatEnv        Format = "env"
	FormatProperties Format = "properties"
)

// Formats lists every supported format.
var Formats = []Format{FormatYAML, FormatJSON, FormatTOML, FormatINI, FormatEnv, FormatProperties}

var extensions = map[string]Format{
	".yaml":       FormatYAML,
	".yml":        FormatYAML,
	".json":       FormatJSON,
	".toml":       FormatTOML,
	".ini":        FormatINI,
	".cfg":        FormatINI,
	".conf":       FormatINI,
	".cnf":        FormatINI,
	".env":        FormatEnv,
	".properties": FormatProperties,
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "yml":
		return FormatYAML, nil
	case "dotenv":
		return FormatEnv, nil
	}
	for _, f := range Formats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnknownFormat, s, formatList())
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// FormatFromName infers the format from a file name alone.
func FormatFromName(name string) (Format, bool) {
	base := strings.ToLower(filepath.Base(name))
	if base == ".env" || strings.HasPrefix(base, ".env.") {
		return FormatEnv, true
	}
	f, ok := extensions[filepath.Ext(base)]
	return f, ok
}

// Detect infers the format from the file name, falling back to the content.
// Content sniffing picks JSON for valid objects and arrays, dotenv when every
// line is an assignment, and YAML otherwise.
func Detect(name string, data []byte) Format {
	if f, ok := FormatFromName(name); ok {
		return f
	}
	return sniff(data)
}

var envLine = regexp.MustCompile(`^\s*(?:export\s+)?[A-Za-z_][A-Za-z0-9_.]*\s*=`)

func sniff(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') && gjson.ValidBytes(trimmed) {
		return FormatJSON
	}

	assignments := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !envLine.MatchString(line) {
			return FormatYAML
		}
		assignments++
	}
	if assignments > 0 {
		return FormatEnv
	}
	return FormatYAML
}

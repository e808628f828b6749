package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
)

// ProjectAllowlistFile is looked up next to the scanned file.
const ProjectAllowlistFile = ".gitleaks.toml"

// Allowlist contains value patterns and stop words that suppress findings.
type Allowlist struct {
	Regexes   []string // Content regex patterns to ignore
	StopWords []string // Substrings that mark a match as a known placeholder
}

// Empty reports whether the allow-list has no entries.
func (a *Allowlist) Empty() bool {
	return a == nil || (len(a.Regexes) == 0 && len(a.StopWords) == 0)
}

// merge appends other to a (union).
func (a *Allowlist) merge(other *Allowlist) {
	a.Regexes = append(a.Regexes, other.Regexes...)
	a.StopWords = append(a.StopWords, other.StopWords...)
}

// LoadAllowlists loads .gitleaks.toml from dir and the file at userPath and
// merges them. Empty arguments and missing files are skipped; unreadable,
// invalid TOML or invalid regex patterns are errors.
func LoadAllowlists(dir, userPath string) (*Allowlist, error) {
	merged := &Allowlist{
		Regexes:   []string{},
		StopWords: []string{},
	}

	var files []string
	if dir != "" {
		files = append(files, filepath.Join(dir, ProjectAllowlistFile))
	}
	if userPath != "" {
		files = append(files, userPath)
	}

	for _, path := range files {
		list, err := loadAllowlistFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		merged.merge(list)
	}

	return merged, nil
}

// allowlistFile mirrors the [allowlist] table of a gitleaks config. Paths are
// read so that gitleaks files parse, but values have no path to match.
type allowlistFile struct {
	Allowlist struct {
		Paths     []string `toml:"paths"`
		Regexes   []string `toml:"regexes"`
		StopWords []string `toml:"stopwords"`
	} `toml:"allowlist"`
}

func loadAllowlistFile(path string) (*Allowlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file allowlistFile
	if _, err := toml.Decode(string(data), &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTOML, path, err)
	}

	for _, pattern := range file.Allowlist.Regexes {
		if _, err := regexp.Compile(pattern); err != nil {
			return nil, fmt.Errorf("%w: invalid pattern '%s' in %s: %v",
				ErrInvalidRegex, pattern, path, err)
		}
	}

	return &Allowlist{
		Regexes:   file.Allowlist.Regexes,
		StopWords: file.Allowlist.StopWords,
	}, nil
}

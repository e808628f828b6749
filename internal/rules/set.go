package rules

import (
	"regexp"

	"github.com/ShadowStrikeHQ/misconfig-configobfuscator/internal/document"
)

// Match describes the rule that flagged a value.
type Match struct {
	RuleID      string
	Description string
	Severity    string
	Target      Target
}

// Set is a compiled, read-only rule set. It is safe for concurrent use.
type Set struct {
	keyRules   []*compiledRule
	valueRules []*compiledRule
	allowKeys  []*regexp.Regexp
	scope      Scope
}

// New compiles cfg into a Set. If cfg is nil, DefaultConfig() is used.
func New(cfg *Config) (*Set, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	c, err := compile(cfg)
	if err != nil {
		return nil, err
	}

	return &Set{
		keyRules:   c.keyRules,
		valueRules: c.valueRules,
		allowKeys:  c.allowKeys,
		scope:      c.scope,
	}, nil
}

// MustNew creates a Set, panicking on error.
func MustNew(cfg *Config) *Set {
	s, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return s
}

// Scope returns the configured scope.
func (s *Set) Scope() Scope {
	return s.scope
}

// Len returns the number of key and value rules.
func (s *Set) Len() int {
	return len(s.keyRules) + len(s.valueRules)
}

// MatchKey reports whether the value at path sits under a sensitive key.
// In leaf scope only the nearest key is tested; in subtree scope every key
// of the path is, innermost first. An allowed nearest key always wins.
func (s *Set) MatchKey(path document.Path) (Match, bool) {
	leaf := path.Key()
	if leaf == "" || s.allowed(leaf) {
		return Match{}, false
	}
	if m, ok := s.matchKeyName(leaf); ok {
		return m, true
	}
	if s.scope != ScopeSubtree {
		return Match{}, false
	}

	keys := path.Keys()
	for i := len(keys) - 2; i >= 0; i-- {
		if s.allowed(keys[i]) {
			continue
		}
		if m, ok := s.matchKeyName(keys[i]); ok {
			return m, true
		}
	}
	return Match{}, false
}

// MatchValue reports whether value itself looks like a credential.
func (s *Set) MatchValue(value string) (Match, bool) {
	if value == "" {
		return Match{}, false
	}
	for _, rule := range s.valueRules {
		if rule.matches(value) {
			return rule.match(), true
		}
	}
	return Match{}, false
}

func (s *Set) matchKeyName(key string) (Match, bool) {
	for _, rule := range s.keyRules {
		if rule.matches(key) {
			return rule.match(), true
		}
	}
	return Match{}, false
}

func (s *Set) allowed(key string) bool {
	for _, re := range s.allowKeys {
		if re.MatchString(key) {
			return true
		}
	}
	return false
}

func (r *compiledRule) matches(text string) bool {
	if len(r.keywords) > 0 {
		hasKeyword := false
		for _, kw := range r.keywords {
			if kw.MatchString(text) {
				hasKeyword = true
				break
			}
		}
		if !hasKeyword {
			return false
		}
	}
	return r.pattern.MatchString(text)
}

func (r *compiledRule) match() Match {
	return Match{
		RuleID:      r.ID,
		Description: r.Description,
		Severity:    r.Severity,
		Target:      r.Target,
	}
}

package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MaxPatternLength bounds user-supplied patterns.
const MaxPatternLength = 1000

// ErrInvalidRule is wrapped by every validation failure.
var ErrInvalidRule = errors.New("invalid rule")

// Target selects what a rule is matched against.
type Target string

const (
	// TargetKey matches mapping key names.
	TargetKey Target = "key"
	// TargetValue matches scalar values.
	TargetValue Target = "value"
)

// Scope controls how a sensitive key applies to values nested below it.
type Scope string

const (
	// ScopeLeaf judges every value by its nearest key only. Nested mappings
	// under a sensitive key are walked and their own keys decide.
	ScopeLeaf Scope = "leaf"
	// ScopeSubtree treats every value below a sensitive key as sensitive.
	ScopeSubtree Scope = "subtree"
)

// ParseScope validates a scope name.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeLeaf:
		return ScopeLeaf, nil
	case ScopeSubtree:
		return ScopeSubtree, nil
	default:
		return "", fmt.Errorf("%w: unknown scope %q (want leaf or subtree)", ErrInvalidRule, s)
	}
}

// Config configures a rule Set.
type Config struct {
	// Rules defines the detection rules
	Rules []Rule `koanf:"rules"`

	// AllowKeys are key patterns that are never treated as sensitive
	AllowKeys []string `koanf:"allow_keys"`

	// Scope is "leaf" (default) or "subtree"
	Scope Scope `koanf:"scope"`
}

// Rule defines a sensitivity rule.
type Rule struct {
	// ID is the unique identifier for this rule
	ID string `koanf:"id"`

	// Description explains what this rule detects
	Description string `koanf:"description"`

	// Pattern is the regex searched for in the key or value
	Pattern string `koanf:"pattern"`

	// Keywords are optional case-insensitive keywords, one of which must be
	// present for the rule to apply
	Keywords []string `koanf:"keywords"`

	// Severity indicates the importance (high, medium, low)
	Severity string `koanf:"severity"`

	// Target is "key" (default) or "value"
	Target Target `koanf:"target"`
}

// compiledRule holds a compiled rule.
type compiledRule struct {
	Rule
	pattern  *regexp.Regexp
	keywords []*regexp.Regexp
}

// DefaultConfig returns the built-in key rules, value rules and allow-keys.
func DefaultConfig() *Config {
	return &Config{
		Rules:     append(DefaultKeyRules(), DefaultValueRules()...),
		AllowKeys: DefaultAllowKeys(),
		Scope:     ScopeLeaf,
	}
}

// KeyRule builds a custom key rule from a bare pattern.
func KeyRule(id, pattern string) Rule {
	return Rule{
		ID:          id,
		Description: "Custom key pattern",
		Pattern:     pattern,
		Severity:    "high",
		Target:      TargetKey,
	}
}

// Validate checks the configuration and compiles it.
func (c *Config) Validate() error {
	_, err := compile(c)
	return err
}

type compiled struct {
	keyRules   []*compiledRule
	valueRules []*compiledRule
	allowKeys  []*regexp.Regexp
	scope      Scope
}

func compile(c *Config) (*compiled, error) {
	scope, err := ParseScope(string(c.Scope))
	if err != nil {
		return nil, err
	}
	out := &compiled{scope: scope}

	seen := make(map[string]bool, len(c.Rules))
	for i, rule := range c.Rules {
		cr, err := compileRule(i, rule)
		if err != nil {
			return nil, err
		}
		if seen[cr.ID] {
			return nil, fmt.Errorf("%w: rule %s: duplicate ID", ErrInvalidRule, cr.ID)
		}
		seen[cr.ID] = true

		if cr.Target == TargetValue {
			out.valueRules = append(out.valueRules, cr)
		} else {
			out.keyRules = append(out.keyRules, cr)
		}
	}

	out.allowKeys = make([]*regexp.Regexp, 0, len(c.AllowKeys))
	for i, pattern := range c.AllowKeys {
		re, err := compilePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: allow_keys %d: %w", ErrInvalidRule, i, err)
		}
		out.allowKeys = append(out.allowKeys, re)
	}

	return out, nil
}

func compileRule(i int, rule Rule) (*compiledRule, error) {
	if rule.ID == "" {
		return nil, fmt.Errorf("%w: rule %d: ID is required", ErrInvalidRule, i)
	}
	if rule.Pattern == "" {
		return nil, fmt.Errorf("%w: rule %s: pattern is required", ErrInvalidRule, rule.ID)
	}

	switch rule.Target {
	case "":
		rule.Target = TargetKey
	case TargetKey, TargetValue:
	default:
		return nil, fmt.Errorf("%w: rule %s: unknown target %q", ErrInvalidRule, rule.ID, rule.Target)
	}

	switch rule.Severity {
	case "":
		rule.Severity = "high"
	case "high", "medium", "low":
	default:
		return nil, fmt.Errorf("%w: rule %s: unknown severity %q", ErrInvalidRule, rule.ID, rule.Severity)
	}

	pattern, err := compilePattern(rule.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: rule %s: %w", ErrInvalidRule, rule.ID, err)
	}

	cr := &compiledRule{
		Rule:     rule,
		pattern:  pattern,
		keywords: make([]*regexp.Regexp, 0, len(rule.Keywords)),
	}
	for _, kw := range rule.Keywords {
		cr.keywords = append(cr.keywords, regexp.MustCompile("(?i)"+regexp.QuoteMeta(kw)))
	}
	return cr, nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if len(pattern) > MaxPatternLength {
		return nil, fmt.Errorf("pattern exceeds %d characters", MaxPatternLength)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	return re, nil
}

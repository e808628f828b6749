// Package config loads configobfuscator settings.
//
// Settings are layered: built-in defaults, then an optional YAML file, then
// CONFIGOBFUSCATOR_* environment variables. Command-line flags are applied
// on top by the caller.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ShadowStrikeHQ/misconfig-configobfuscator/internal/rules"
)

// DefaultPlaceholder replaces every sensitive value unless overridden.
const DefaultPlaceholder = "***REDACTED***"

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the complete configobfuscator configuration.
type Config struct {
	Placeholder string       `koanf:"placeholder"`
	Format      string       `koanf:"format"`
	Rules       RulesConfig  `koanf:"rules"`
	Scan        ScanConfig   `koanf:"scan"`
	Log         LogConfig    `koanf:"log"`
	Output      OutputConfig `koanf:"output"`
}

// RulesConfig selects the sensitivity rules.
type RulesConfig struct {
	// KeyPatterns are extra key regexes, one rule each.
	KeyPatterns []string `koanf:"key_patterns"`

	// AllowKeys are key regexes never treated as sensitive. They are added
	// to the built-in allow-keys unless NoDefaults is set.
	AllowKeys []string `koanf:"allow_keys"`

	// Scope is "leaf" or "subtree".
	Scope string `koanf:"scope"`

	// NoDefaults drops the built-in key rules, value rules and allow-keys.
	NoDefaults bool `koanf:"no_defaults"`

	// Custom are fully specified rules.
	Custom []rules.Rule `koanf:"custom"`
}

// ScanConfig controls the gitleaks value scan.
type ScanConfig struct {
	Deep      bool   `koanf:"deep"`
	Allowlist string `koanf:"allowlist"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// OutputConfig names the optional report files.
type OutputConfig struct {
	Audit       string `koanf:"audit"`
	MetricsFile string `koanf:"metrics_file"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// RuleConfig builds the rule set configuration.
func (c *Config) RuleConfig() *rules.Config {
	out := &rules.Config{Scope: rules.Scope(c.Rules.Scope)}
	if !c.Rules.NoDefaults {
		def := rules.DefaultConfig()
		out.Rules = def.Rules
		out.AllowKeys = def.AllowKeys
	}
	out.AllowKeys = append(out.AllowKeys, c.Rules.AllowKeys...)
	out.Rules = append(out.Rules, c.Rules.Custom...)
	for i, pattern := range c.Rules.KeyPatterns {
		out.Rules = append(out.Rules, rules.KeyRule(fmt.Sprintf("custom-key-%d", i+1), pattern))
	}
	return out
}

// Validate checks the configuration, including every rule pattern.
func (c *Config) Validate() error {
	if c.Placeholder == "" {
		return fmt.Errorf("%w: placeholder cannot be empty", ErrInvalidConfig)
	}
	if strings.ContainsAny(c.Placeholder, "\n\r") {
		return fmt.Errorf("%w: placeholder cannot contain line breaks", ErrInvalidConfig)
	}

	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log.format must be console or json, got %q", ErrInvalidConfig, c.Log.Format)
	}
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log.level %q", ErrInvalidConfig, c.Log.Level)
	}

	if err := c.RuleConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Placeholder == "" {
		cfg.Placeholder = DefaultPlaceholder
	}
	if cfg.Rules.Scope == "" {
		cfg.Rules.Scope = string(rules.ScopeLeaf)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

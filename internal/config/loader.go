package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// EnvPrefix starts every environment override.
	EnvPrefix = "CONFIGOBFUSCATOR_"
)

// topLevelKeys have no section.
var topLevelKeys = map[string]bool{
	"placeholder": true,
	"format":      true,
}

// listKeys are split on commas when read from the environment.
var listKeys = map[string]bool{
	"rules.key_patterns": true,
	"rules.allow_keys":   true,
}

// Load loads configuration from a YAML file, then overrides with environment
// variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (CONFIGOBFUSCATOR_SCAN_DEEP, CONFIGOBFUSCATOR_PLACEHOLDER, ...)
//  2. YAML config file
//  3. Hardcoded defaults
//
// An explicit configPath must exist. When configPath is empty the default
// path (~/.config/configobfuscator/config.yaml) is used if present.
//
// Environment variables map to keys by splitting on the first underscore
// after the prefix:
//
//	CONFIGOBFUSCATOR_SCAN_DEEP         -> scan.deep
//	CONFIGOBFUSCATOR_RULES_KEY_PATTERNS -> rules.key_patterns (comma separated)
//	CONFIGOBFUSCATOR_PLACEHOLDER       -> placeholder
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultPath()
	}

	if configPath != "" {
		content, err := readConfigFile(configPath)
		switch {
		case err == nil:
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return nil, err
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// DefaultPath returns ~/.config/configobfuscator/config.yaml, or "" when the
// home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "configobfuscator", "config.yaml")
}

// envKey maps CONFIGOBFUSCATOR_SECTION_FIELD_NAME to section.field_name.
func envKey(name, value string) (string, any) {
	lower := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	if lower == "" {
		return "", nil
	}

	key := lower
	if !topLevelKeys[lower] {
		if section, field, ok := strings.Cut(lower, "_"); ok {
			key = section + "." + field
		}
	}

	if listKeys[key] {
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return key, items
	}
	return key, value
}

// readConfigFile opens the file once and validates it through the open
// descriptor.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := validateConfigFileProperties(info); err != nil {
		return nil, fmt.Errorf("config file validation failed: %w", err)
	}

	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if len(content) > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large (max %d bytes)", maxConfigFileSize)
	}
	return content, nil
}

func validateConfigFileProperties(info os.FileInfo) error {
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", info.Name())
	}
	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	return nil
}

package secrets

import (
	"fmt"
	"regexp"
	"sync"

	gitleaksConfig "github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
	gitleaksRegexp "github.com/zricethezav/gitleaks/v8/regexp"
)

// Finding identifies a gitleaks rule that matched a value. The secret itself
// is never retained.
type Finding struct {
	RuleID   string // Gitleaks rule ID (e.g., "github-pat")
	RuleDesc string // Human-readable description
	StartCol int    // Start column within the scanned fragment
	EndCol   int    // End column within the scanned fragment
}

// Detector scans configuration values with the gitleaks default rule pack.
// Building the rule pack is expensive, so one Detector is reused for a
// whole document.
type Detector struct {
	mu       sync.Mutex
	detector *detect.Detector
}

// NewDetector loads the gitleaks default config and merges allowlist into it.
// A nil allowlist is allowed.
func NewDetector(allowlist *Allowlist) (*Detector, error) {
	d, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("loading gitleaks rules: %w", err)
	}

	if !allowlist.Empty() {
		if err := applyAllowlist(&d.Config, allowlist); err != nil {
			return nil, err
		}
	}

	return &Detector{detector: d}, nil
}

// Scan checks one value. The key is included in the scanned fragment so that
// gitleaks rules which need an assignment context ("api_key = ...") can fire.
func (d *Detector) Scan(key, value string) []Finding {
	if value == "" {
		return nil
	}

	fragment := value
	if key != "" {
		fragment = fmt.Sprintf("%s = %q", key, value)
	}

	d.mu.Lock()
	found := d.detector.DetectString(fragment)
	d.mu.Unlock()

	result := make([]Finding, 0, len(found))
	for _, f := range found {
		result = append(result, Finding{
			RuleID:   f.RuleID,
			RuleDesc: f.Description,
			StartCol: f.StartColumn,
			EndCol:   f.EndColumn,
		})
	}
	return result
}

// applyAllowlist adds a global allow-list entry to the gitleaks config.
func applyAllowlist(cfg *gitleaksConfig.Config, allowlist *Allowlist) error {
	global := &gitleaksConfig.Allowlist{
		Description: "configobfuscator allow-list",
		StopWords:   append([]string(nil), allowlist.StopWords...),
	}

	for _, pattern := range allowlist.Regexes {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidRegex, pattern, err)
		}
		global.Regexes = append(global.Regexes, (*gitleaksRegexp.Regexp)(re))
	}

	cfg.Allowlists = append(cfg.Allowlists, global)
	return nil
}

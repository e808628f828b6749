package redact

import (
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/ShadowStrikeHQ/misconfig-configobfuscator/internal/document"
)

// Reason tells which check flagged a value.
type Reason string

const (
	// ReasonKey means the key (or, in subtree scope, an ancestor key) matched a key rule.
	ReasonKey Reason = "key"
	// ReasonValue means the value matched a value rule.
	ReasonValue Reason = "value"
	// ReasonDeep means the gitleaks scan found a secret in the value.
	ReasonDeep Reason = "deep"
)

// Redaction represents a single value that was replaced.
// It never stores the value itself, only metadata for auditing.
type Redaction struct {
	Path        string `json:"path"`             // e.g., "db.users[0].password"
	Line        int    `json:"line,omitempty"`   // 1-indexed, omitted if unknown
	Column      int    `json:"column,omitempty"` // 1-indexed, omitted if unknown
	Stream      int    `json:"stream,omitempty"` // YAML document index
	RuleID      string `json:"rule_id"`
	RuleDesc    string `json:"rule_desc,omitempty"`
	Severity    string `json:"severity,omitempty"`
	Reason      Reason `json:"reason"`
	OriginalLen int    `json:"original_len"` // length of the replaced value
}

// Summary provides aggregate statistics about a run.
type Summary struct {
	EntriesScanned   int            `json:"entries_scanned"`
	EntriesSkipped   int            `json:"entries_skipped"` // null, empty or already redacted
	TotalRedactions  int            `json:"total_redactions"`
	UniqueRules      int            `json:"unique_rules"`
	RuleCounts       map[string]int `json:"rule_counts"`
	ReasonCounts     map[Reason]int `json:"reason_counts"`
	ProcessingTimeMs int64          `json:"processing_time_ms"`
}

// Result is the outcome of redacting one document. It doubles as the audit
// report written by --audit.
type Result struct {
	RunID      string          `json:"run_id"`
	Timestamp  time.Time       `json:"timestamp"`
	Input      string          `json:"input,omitempty"`
	Output     string          `json:"output,omitempty"`
	Format     document.Format `json:"format"`
	DryRun     bool            `json:"dry_run,omitempty"`
	Redactions []Redaction     `json:"redactions"`
	Summary    Summary         `json:"summary"`

	// Document holds the redacted document.
	Document *document.Document `json:"-"`

	// Duration is the time spent redacting.
	Duration time.Duration `json:"-"`
}

func newResult(runID string, doc *document.Document) *Result {
	return &Result{
		RunID:      runID,
		Timestamp:  time.Now().UTC(),
		Format:     doc.Format(),
		Redactions: []Redaction{},
		Summary: Summary{
			RuleCounts:   make(map[string]int),
			ReasonCounts: make(map[Reason]int),
		},
		Document: doc,
	}
}

func (r *Result) add(red Redaction) {
	r.Redactions = append(r.Redactions, red)
	r.Summary.TotalRedactions++
	r.Summary.RuleCounts[red.RuleID]++
	r.Summary.ReasonCounts[red.Reason]++
	r.Summary.UniqueRules = len(r.Summary.RuleCounts)
}

func (r *Result) finish(d time.Duration) {
	r.Duration = d
	r.Summary.ProcessingTimeMs = d.Milliseconds()
}

// HasRedactions returns true if any value was replaced.
func (r *Result) HasRedactions() bool {
	return len(r.Redactions) > 0
}

// Rules returns the IDs of the rules that fired, sorted.
func (r *Result) Rules() []string {
	ids := make([]string, 0, len(r.Summary.RuleCounts))
	for id := range r.Summary.RuleCounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Encode serializes the redacted document in its source format.
func (r *Result) Encode() ([]byte, error) {
	return r.Document.Encode()
}

// JSON returns the audit report as indented JSON.
func (r *Result) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

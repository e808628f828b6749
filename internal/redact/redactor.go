package redact

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShadowStrikeHQ/misconfig-configobfuscator/internal/config"
	"github.com/ShadowStrikeHQ/misconfig-configobfuscator/internal/document"
	"github.com/ShadowStrikeHQ/misconfig-configobfuscator/internal/logging"
	"github.com/ShadowStrikeHQ/misconfig-configobfuscator/internal/rules"
	"github.com/ShadowStrikeHQ/misconfig-configobfuscator/pkg/secrets"
)

// Redactor replaces sensitive values in documents. A Redactor is safe for
// concurrent use when its Detector is.
type Redactor struct {
	rules       *rules.Set
	placeholder string
	detector    *secrets.Detector
	logger      *logging.Logger
}

// Option configures a Redactor.
type Option func(*Redactor)

// WithPlaceholder sets the replacement text.
func WithPlaceholder(placeholder string) Option {
	return func(r *Redactor) {
		r.placeholder = placeholder
	}
}

// WithDetector enables the gitleaks value scan.
func WithDetector(d *secrets.Detector) Option {
	return func(r *Redactor) {
		r.detector = d
	}
}

// WithLogger sets the logger. Without it the logger stored in the context
// is used.
func WithLogger(l *logging.Logger) Option {
	return func(r *Redactor) {
		r.logger = l
	}
}

// New creates a Redactor over set.
func New(set *rules.Set, opts ...Option) (*Redactor, error) {
	if set == nil {
		return nil, ErrNilRules
	}

	r := &Redactor{
		rules:       set,
		placeholder: config.DefaultPlaceholder,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.placeholder == "" {
		return nil, fmt.Errorf("redact: placeholder cannot be empty")
	}
	return r, nil
}

// Placeholder returns the replacement text.
func (r *Redactor) Placeholder() string {
	return r.placeholder
}

// Redact replaces every sensitive value of doc in place.
//
// Null values, empty strings and values already equal to the placeholder are
// skipped, so redacting a redacted document changes nothing.
func (r *Redactor) Redact(ctx context.Context, doc *document.Document) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := r.log(ctx)
	start := time.Now()
	runID := logging.RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.NewString()
	}
	result := newResult(runID, doc)

	for i := 0; i < doc.Len(); i++ {
		entry := doc.Entry(i)
		result.Summary.EntriesScanned++

		if r.skip(entry) {
			result.Summary.EntriesSkipped++
			continue
		}

		red, ok := r.classify(entry)
		if !ok {
			logger.Trace(ctx, "entry kept", zap.Stringer("path", entry.Path))
			continue
		}

		if err := doc.Replace(i, r.placeholder); err != nil {
			return nil, err
		}
		result.add(red)

		logger.Debug(ctx, "value redacted",
			zap.String("path", red.Path),
			zap.Int("line", red.Line),
			zap.String("rule", red.RuleID),
			zap.String("reason", string(red.Reason)),
		)
	}

	result.finish(time.Since(start))

	logger.Info(ctx, "document redacted",
		zap.String("format", string(doc.Format())),
		zap.Int("entries", result.Summary.EntriesScanned),
		zap.Int("redactions", result.Summary.TotalRedactions),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}

func (r *Redactor) log(ctx context.Context) *logging.Logger {
	if r.logger != nil {
		return r.logger
	}
	return logging.FromContext(ctx)
}

func (r *Redactor) skip(e document.Entry) bool {
	return e.Kind == document.KindNull || e.Value == "" || e.Value == r.placeholder
}

// classify runs the key rules, then the value rules, then the deep scan.
// Value checks only apply to strings.
func (r *Redactor) classify(e document.Entry) (Redaction, bool) {
	red := Redaction{
		Path:        e.Path.String(),
		Line:        e.Line,
		Column:      e.Column,
		Stream:      e.Stream,
		OriginalLen: len(e.Value),
	}

	if m, ok := r.rules.MatchKey(e.Path); ok {
		red.Reason = ReasonKey
		red.RuleID, red.RuleDesc, red.Severity = m.RuleID, m.Description, m.Severity
		return red, true
	}

	if e.Kind != document.KindString {
		return red, false
	}

	if m, ok := r.rules.MatchValue(e.Value); ok {
		red.Reason = ReasonValue
		red.RuleID, red.RuleDesc, red.Severity = m.RuleID, m.Description, m.Severity
		return red, true
	}

	if r.detector != nil {
		if findings := r.detector.Scan(e.Path.Key(), e.Value); len(findings) > 0 {
			red.Reason = ReasonDeep
			red.RuleID, red.RuleDesc, red.Severity = findings[0].RuleID, findings[0].RuleDesc, "high"
			return red, true
		}
	}

	return red, false
}

// Package metrics records run statistics as Prometheus metrics and writes
// them in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ShadowStrikeHQ/misconfig-configobfuscator/internal/redact"
)

// Run statuses.
const (
	StatusOK         = "ok"
	StatusParseError = "parse_error"
	StatusIOError    = "io_error"
	StatusError      = "error"
)

// Metrics holds Prometheus metrics for one process.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal        *prometheus.CounterVec
	EntriesScanned   prometheus.Counter
	EntriesSkipped   prometheus.Counter
	RedactionsTotal  *prometheus.CounterVec
	RunDuration      *prometheus.HistogramVec
	LastRunTimestamp prometheus.Gauge
}

// New creates metrics on a dedicated registry.
//
// All metrics are prefixed with "configobfuscator_" for namespacing.
//
// Metrics:
//   - configobfuscator_runs_total{format,status} - Count of runs
//   - configobfuscator_entries_scanned_total - Count of values inspected
//   - configobfuscator_entries_skipped_total - Count of null, empty or already redacted values
//   - configobfuscator_redactions_total{reason,rule} - Count of values replaced
//   - configobfuscator_run_duration_seconds{format} - Histogram of redaction times
//   - configobfuscator_last_run_timestamp_seconds - Unix time of the last run
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "configobfuscator_runs_total",
				Help: "Total number of redaction runs",
			},
			[]string{"format", "status"},
		),

		EntriesScanned: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "configobfuscator_entries_scanned_total",
				Help: "Total number of configuration values inspected",
			},
		),

		EntriesSkipped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "configobfuscator_entries_skipped_total",
				Help: "Total number of null, empty or already redacted values",
			},
		),

		RedactionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "configobfuscator_redactions_total",
				Help: "Total number of values replaced by the placeholder",
			},
			[]string{"reason", "rule"},
		),

		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "configobfuscator_run_duration_seconds",
				Help:    "Duration of document redaction in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
			},
			[]string{"format"},
		),

		LastRunTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "configobfuscator_last_run_timestamp_seconds",
				Help: "Unix time of the last run",
			},
		),
	}
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordResult records a successful run.
func (m *Metrics) RecordResult(res *redact.Result) {
	format := string(res.Format)

	m.RunsTotal.WithLabelValues(format, StatusOK).Inc()
	m.EntriesScanned.Add(float64(res.Summary.EntriesScanned))
	m.EntriesSkipped.Add(float64(res.Summary.EntriesSkipped))
	for _, red := range res.Redactions {
		m.RedactionsTotal.WithLabelValues(string(red.Reason), red.RuleID).Inc()
	}
	m.RunDuration.WithLabelValues(format).Observe(res.Duration.Seconds())
	m.LastRunTimestamp.Set(float64(res.Timestamp.Unix()))
}

// RecordFailure records a failed run. format may be empty when the input
// was never parsed.
func (m *Metrics) RecordFailure(format, status string) {
	if format == "" {
		format = "unknown"
	}
	m.RunsTotal.WithLabelValues(format, status).Inc()
	m.LastRunTimestamp.Set(float64(time.Now().Unix()))
}

// WriteTextfile writes all metrics to path for the node_exporter textfile
// collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ShadowStrikeHQ/misconfig-configobfuscator/internal/config"
	"github.com/ShadowStrikeHQ/misconfig-configobfuscator/internal/document"
	"github.com/ShadowStrikeHQ/misconfig-configobfuscator/internal/logging"
	"github.com/ShadowStrikeHQ/misconfig-configobfuscator/internal/metrics"
	"github.com/ShadowStrikeHQ/misconfig-configobfuscator/internal/redact"
	"github.com/ShadowStrikeHQ/misconfig-configobfuscator/internal/rules"
	"github.com/ShadowStrikeHQ/misconfig-configobfuscator/pkg/secrets"
)

// flags holds the raw command-line values. Only flags the user set override
// the loaded configuration.
type flags struct {
	output         string
	placeholder    string
	debug          bool
	keyPatterns    []string
	noDefaultRules bool
	format         string
	scope          string
	deep           bool
	allowlist      string
	dryRun         bool
	audit          string
	metricsFile    string
	configPath     string
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "configobfuscator [flags] <file|->",
		Short: "Replace sensitive values in configuration files",
		Long: `configobfuscator scans a configuration file (YAML, JSON, TOML, INI, dotenv or
Java properties), replaces passwords, API keys, tokens and other secrets with a
placeholder, and writes the result so the file can be shared safely.

Keys, structure and non-sensitive values are left as they are. Without -o the
input file is overwritten.

Examples:
  # Redact in place
  configobfuscator config.yaml

  # Write to a new file
  configobfuscator -o config.redacted.json config.json

  # Read stdin, write stdout
  cat .env | configobfuscator -

  # Extra key pattern and a gitleaks scan of the remaining values
  configobfuscator -k '(?i)^pin$' --deep settings.toml`,
		Version:       fmt.Sprintf("%s (commit %s)", version, gitCommit),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRedact(cmd, f, args[0], stdin, stdout, stderr)
		},
	}

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "", `output path; default overwrites the input, "-" writes to stdout`)
	fl.StringVarP(&f.placeholder, "placeholder", "p", config.DefaultPlaceholder, "replacement for sensitive values")
	fl.BoolVarP(&f.debug, "debug", "d", false, "enable debug logging")
	fl.StringArrayVarP(&f.keyPatterns, "key-pattern", "k", nil, "extra sensitive key regex (repeatable)")
	fl.BoolVar(&f.noDefaultRules, "no-default-rules", false, "only use rules from flags and configuration")
	fl.StringVar(&f.format, "format", "", "force the input format ("+formatNames()+")")
	fl.StringVar(&f.scope, "scope", string(rules.ScopeLeaf), "how sensitive keys apply to nested values (leaf|subtree)")
	fl.BoolVar(&f.deep, "deep", false, "scan remaining values with the gitleaks rule pack")
	fl.StringVar(&f.allowlist, "allowlist", "", "user gitleaks allow-list file (TOML)")
	fl.BoolVar(&f.dryRun, "dry-run", false, "report what would be redacted; write nothing")
	fl.StringVar(&f.audit, "audit", "", `write the redaction report as JSON ("-" for stdout)`)
	fl.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus textfile metrics")
	fl.StringVar(&f.configPath, "config", "", "configuration file (default ~/.config/configobfuscator/config.yaml)")

	return cmd
}

func formatNames() string {
	names := make([]string, len(document.Formats))
	for i, f := range document.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, "|")
}

// loadConfig layers explicitly set flags over the file and environment.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("placeholder") {
		cfg.Placeholder = f.placeholder
	}
	if changed("format") {
		cfg.Format = f.format
	}
	if changed("key-pattern") {
		cfg.Rules.KeyPatterns = append(cfg.Rules.KeyPatterns, f.keyPatterns...)
	}
	if changed("no-default-rules") {
		cfg.Rules.NoDefaults = f.noDefaultRules
	}
	if changed("scope") {
		cfg.Rules.Scope = f.scope
	}
	if changed("deep") {
		cfg.Scan.Deep = f.deep
	}
	if changed("allowlist") {
		cfg.Scan.Allowlist = f.allowlist
	}
	if changed("audit") {
		cfg.Output.Audit = f.audit
	}
	if changed("metrics-file") {
		cfg.Output.MetricsFile = f.metricsFile
	}
	if f.debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, stderr io.Writer) (*logging.Logger, error) {
	lc := logging.NewDefaultConfig()
	level, err := logging.LevelFromString(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	lc.Level = level
	lc.Format = strings.ToLower(cfg.Log.Format)
	lc.Output = stderr
	return logging.NewLogger(lc)
}

func runRedact(cmd *cobra.Command, f *flags, input string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	var format document.Format
	if cfg.Format != "" {
		if format, err = document.ParseFormat(cfg.Format); err != nil {
			return err
		}
	}

	output := f.output
	writesStdout := !f.dryRun && (output == redact.Stdio || (output == "" && input == redact.Stdio))
	if cfg.Output.Audit == redact.Stdio && writesStdout {
		return errors.New("--audit - cannot be combined with output on stdout")
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := logging.WithRunID(cmd.Context(), uuid.NewString())
	ctx = logging.WithFile(ctx, input)
	ctx = logging.WithLogger(ctx, logger)

	set, err := rules.New(cfg.RuleConfig())
	if err != nil {
		return err
	}

	opts := []redact.Option{redact.WithPlaceholder(cfg.Placeholder)}
	if cfg.Scan.Deep {
		detector, err := newDetector(ctx, logger, input, cfg.Scan.Allowlist)
		if err != nil {
			return err
		}
		opts = append(opts, redact.WithDetector(detector))
	}

	r, err := redact.New(set, opts...)
	if err != nil {
		return err
	}

	logger.Debug(ctx, "starting run",
		zap.Int("rules", set.Len()),
		zap.String("scope", string(set.Scope())),
		zap.Bool("deep", cfg.Scan.Deep),
		zap.Bool("dry_run", f.dryRun),
	)

	result, runErr := r.Run(ctx, redact.Options{
		Input:  input,
		Output: output,
		Format: format,
		DryRun: f.dryRun,
		Stdin:  stdin,
		Stdout: stdout,
	})

	if cfg.Output.MetricsFile != "" {
		if err := writeMetrics(cfg.Output.MetricsFile, format, result, runErr); err != nil {
			logger.Warn(ctx, "metrics not written", zap.Error(err))
			if runErr == nil {
				runErr = err
			}
		}
	}
	if runErr != nil {
		return runErr
	}

	if f.dryRun {
		printDryRun(stdout, result, cfg.Output.Audit == redact.Stdio)
	}

	if cfg.Output.Audit != "" {
		if err := writeAudit(cfg.Output.Audit, result, stdout); err != nil {
			return err
		}
	}

	return nil
}

func newDetector(ctx context.Context, logger *logging.Logger, input, userAllowlist string) (*secrets.Detector, error) {
	dir := "."
	if input != redact.Stdio {
		dir = filepath.Dir(input)
	}

	allowlist, err := secrets.LoadAllowlists(dir, userAllowlist)
	if err != nil {
		return nil, err
	}
	logger.Debug(ctx, "gitleaks allow-list loaded",
		zap.Int("regexes", len(allowlist.Regexes)),
		zap.Int("stopwords", len(allowlist.StopWords)),
	)

	return secrets.NewDetector(allowlist)
}

func writeMetrics(path string, format document.Format, result *redact.Result, runErr error) error {
	m := metrics.New()

	var parseErr *document.ParseError
	switch {
	case runErr == nil:
		m.RecordResult(result)
	case errors.As(runErr, &parseErr):
		m.RecordFailure(string(parseErr.Format), metrics.StatusParseError)
	default:
		status := metrics.StatusError
		var ioErr *redact.IOError
		if errors.As(runErr, &ioErr) {
			status = metrics.StatusIOError
		}
		m.RecordFailure(string(format), status)
	}

	if err := m.WriteTextfile(path); err != nil {
		return &redact.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

func writeAudit(path string, result *redact.Result, stdout io.Writer) error {
	data, err := result.JSON()
	if err != nil {
		return fmt.Errorf("encoding audit report: %w", err)
	}
	if path == redact.Stdio {
		if _, err := stdout.Write(data); err != nil {
			return &redact.IOError{Op: "write", Path: redact.Stdio, Err: err}
		}
		return nil
	}
	return redact.WriteFileAtomic(path, data, 0o600)
}

// printDryRun lists the values that would be redacted. The listing is
// skipped when the JSON report already goes to stdout.
func printDryRun(w io.Writer, result *redact.Result, auditOnStdout bool) {
	if auditOnStdout {
		return
	}
	for _, red := range result.Redactions {
		loc := ""
		if red.Line > 0 {
			loc = fmt.Sprintf(" (line %d)", red.Line)
		}
		fmt.Fprintf(w, "would redact %s%s: %s [%s]\n", red.Path, loc, red.RuleID, red.Reason)
	}
	fmt.Fprintf(w, "%d of %d values would be redacted\n", result.Summary.TotalRedactions, result.Summary.EntriesScanned)
}

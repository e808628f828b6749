// Package logging provides structured logging for the configobfuscator CLI.
//
// Logging wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - Output on stderr, so redacted documents can be streamed on stdout
//   - Automatic context fields (run.id, file)
//   - Field-level redaction of anything named like a credential
//   - Level-aware sampling (errors never sampled)
//
// # Usage
//
//	cfg := logging.NewDefaultConfig()
//	cfg.Level = zapcore.DebugLevel
//	logger, err := logging.NewLogger(cfg)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithRunID(ctx, runID)
//	logger.Info(ctx, "document redacted", zap.Int("redactions", n))
//
// Redacted values must never reach a log line. Log key paths, rule IDs and
// lengths; use RedactedString when a value-shaped field is unavoidable.
//
// # Testing
//
//	tl := logging.NewTestLogger()
//	tl.Info(ctx, "test message", zap.String("key", "value"))
//	tl.AssertLogged(t, zapcore.InfoLevel, "test message")
//	tl.AssertNotContains(t, "hunter2")
package logging

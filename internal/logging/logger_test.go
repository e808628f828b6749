package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := NewDefaultConfig()
	cfg.Output = &buf
	cfg.Level = zapcore.InfoLevel

	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info(context.Background(), "hello", zap.Int("entries", 3))
	require.NoError(t, logger.Sync())
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "info")
}

func TestNewLogger_InvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Format = "xml"

	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestLogger_ContextAwareMethods(t *testing.T) {
	tl := NewTestLogger()
	ctx := WithRunID(context.Background(), "run-1")

	tests := []struct {
		name    string
		logFunc func()
		level   zapcore.Level
		message string
	}{
		{
			name:    "trace",
			logFunc: func() { tl.Trace(ctx, "trace message") },
			level:   TraceLevel,
			message: "trace message",
		},
		{
			name:    "debug",
			logFunc: func() { tl.Debug(ctx, "debug message") },
			level:   zapcore.DebugLevel,
			message: "debug message",
		},
		{
			name:    "info",
			logFunc: func() { tl.Info(ctx, "info message") },
			level:   zapcore.InfoLevel,
			message: "info message",
		},
		{
			name:    "warn",
			logFunc: func() { tl.Warn(ctx, "warn message") },
			level:   zapcore.WarnLevel,
			message: "warn message",
		},
		{
			name:    "error",
			logFunc: func() { tl.Error(ctx, "error message") },
			level:   zapcore.ErrorLevel,
			message: "error message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl.Reset()
			tt.logFunc()

			logs := tl.All()
			require.Len(t, logs, 1)
			assert.Equal(t, tt.level, logs[0].Level)
			assert.Equal(t, tt.message, logs[0].Message)
			tl.AssertField(t, tt.message, "run.id", "run-1")
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	cfg := NewDefaultConfig()
	cfg.Output = &buf

	logger, err := NewLogger(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	logger.Info(ctx, "hidden")
	logger.Warn(ctx, "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.False(t, logger.Enabled(zapcore.DebugLevel))
}

func TestLogger_TraceLevelName(t *testing.T) {
	var buf bytes.Buffer
	cfg := NewDefaultConfig()
	cfg.Output = &buf
	cfg.Format = "json"
	cfg.Level = TraceLevel

	logger, err := NewLogger(cfg)
	require.NoError(t, err)

	logger.Trace(context.Background(), "walk entry")
	assert.Contains(t, buf.String(), `"level":"trace"`)
}

func TestLogger_With(t *testing.T) {
	tl := NewTestLogger()
	child := tl.With(zap.String("format", "yaml"))

	child.Info(context.Background(), "child message")

	logs := tl.All()
	require.Len(t, logs, 1)
	tl.AssertField(t, "child message", "format", "yaml")
}

func TestLogger_StaticFieldsInKeyOrder(t *testing.T) {
	var buf bytes.Buffer
	cfg := NewDefaultConfig()
	cfg.Output = &buf
	cfg.Format = "json"
	cfg.Level = zapcore.InfoLevel
	cfg.Fields = map[string]string{"service": "configobfuscator", "env": "ci"}

	logger, err := NewLogger(cfg)
	require.NoError(t, err)

	logger.Info(context.Background(), "started")
	out := buf.String()
	assert.Contains(t, out, `"env":"ci","service":"configobfuscator"`)
}

func TestLogger_DisabledLevelWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	cfg := NewDefaultConfig()
	cfg.Output = &buf

	logger, err := NewLogger(cfg)
	require.NoError(t, err)

	ctx := WithRunID(context.Background(), "abc")
	logger.Debug(ctx, "hidden")
	logger.Info(ctx, "hidden")
	logger.Warn(ctx, "shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()), "missing logger yields a nop logger")

	tl := NewTestLogger()
	ctx := WithLogger(context.Background(), tl.Logger)
	FromContext(ctx).Info(ctx, "via context")
	tl.AssertLogged(t, zapcore.InfoLevel, "via context")
}

func TestContextFields(t *testing.T) {
	assert.Empty(t, ContextFields(context.Background()))

	ctx := WithFile(WithRunID(context.Background(), "abc"), "/etc/app.yaml")
	fields := ContextFields(ctx)
	require.Len(t, fields, 2)
	assert.Equal(t, "run.id", fields[0].Key)
	assert.Equal(t, "abc", fields[0].String)
	assert.Equal(t, "file", fields[1].Key)
	assert.Equal(t, "/etc/app.yaml", fields[1].String)
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{in: "trace", want: TraceLevel},
		{in: "DEBUG", want: zapcore.DebugLevel},
		{in: " info ", want: zapcore.InfoLevel},
		{in: "warn", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
		{in: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := LevelFromString(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

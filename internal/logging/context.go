package logging

import (
	"context"

	"go.uber.org/zap"
)

type runIDCtxKey struct{}
type fileCtxKey struct{}
type loggerCtxKey struct{}

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 2)

	if id := RunIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("run.id", id))
	}
	if file := FileFromContext(ctx); file != "" {
		fields = append(fields, zap.String("file", file))
	}

	return fields
}

// WithRunID tags every log entry of one invocation.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDCtxKey{}, id)
}

// RunIDFromContext extracts the run ID from context.
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runIDCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// WithFile records the input file being processed.
func WithFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, fileCtxKey{}, path)
}

// FileFromContext extracts the input file from context.
func FileFromContext(ctx context.Context) string {
	if f, ok := ctx.Value(fileCtxKey{}).(string); ok {
		return f
	}
	return ""
}

// WithLogger stores logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves logger from context.
// Returns a nop logger if not found.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return NewNop()
}

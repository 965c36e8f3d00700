package slog

import (
	"context"
	"log/slog"
)

type logLevelKey struct{}

// WithLogLevel returns a context that overrides filtering with a plain
// minimum level for all records produced within it. The override takes
// precedence over the threshold filter; use it as an escape hatch when a
// code path needs forced verbosity regardless of context data.
func WithLogLevel(ctx context.Context, level slog.Level) context.Context {
	return context.WithValue(ctx, logLevelKey{}, level)
}

// LogLevelFromContext returns the log level override from the context, if any.
func LogLevelFromContext(ctx context.Context) (slog.Level, bool) {
	level, ok := ctx.Value(logLevelKey{}).(slog.Level)
	return level, ok
}

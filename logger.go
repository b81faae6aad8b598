package quantvec

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with consistent field names for segment
// operations.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. If handler is
// nil, a text handler to stderr at info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))}
}

// LogOpen logs a segment open.
func (l *Logger) LogOpen(ctx context.Context, path string, mappedBytes int64, fields int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "segment open failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "segment opened",
			"path", path,
			"mapped_bytes", mappedBytes,
			"fields", fields,
		)
	}
}

// LogWarm logs a segment warmup.
func (l *Logger) LogWarm(ctx context.Context, path string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "segment warmup failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "segment warmed",
			"path", path,
		)
	}
}

// LogClose logs the release of a segment's last reference.
func (l *Logger) LogClose(path string) {
	l.Debug("segment closed", "path", path)
}

// Package logging wraps log/slog with descriptor-store specific helpers so
// every component logs with consistent field names.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with facevec-specific context.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that writes JSON-formatted logs to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that writes human-readable text logs to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// New builds a Logger from textual level and format settings, as found in
// configuration files and CLI flags.
func New(w io.Writer, level, format string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case "", "text":
		return NewTextLogger(w, lvl), nil
	case "json":
		return NewJSONLogger(w, lvl), nil
	default:
		return nil, fmt.Errorf("logging: unknown format %q", format)
	}
}

// ParseLevel maps debug|info|warn|error to a slog.Level. Empty means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", level)
	}
}

// WithBackend adds the persistence backend name to the logger.
func (l *Logger) WithBackend(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("backend", name),
	}
}

// LogAdd logs an add operation.
func (l *Logger) LogAdd(ctx context.Context, index uint64, dimension int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "add failed",
			"dimension", dimension,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "add completed",
		"index", index,
		"dimension", dimension,
	)
}

// LogCompare logs a compare operation. matched is false when no entry fell
// within the threshold.
func (l *Logger) LogCompare(ctx context.Context, index uint64, matched bool, distance float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "compare failed",
			"error", err,
		)
		return
	}
	if !matched {
		l.DebugContext(ctx, "compare completed",
			"matched", false,
		)
		return
	}
	l.DebugContext(ctx, "compare completed",
		"matched", true,
		"index", index,
		"distance", distance,
	)
}

// LogLoad logs loading a persisted table at startup.
func (l *Logger) LogLoad(ctx context.Context, count, dimension int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"loaded", count,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "table loaded",
		"count", count,
		"dimension", dimension,
	)
}

// LogSnapshot logs an export or import of a snapshot.
func (l *Logger) LogSnapshot(ctx context.Context, op string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"op", op,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot completed",
		"op", op,
		"count", count,
	)
}

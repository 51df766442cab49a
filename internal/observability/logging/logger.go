// Package logging provides structured logging utilities using the standard library's log/slog package.
// It offers helper functions for creating loggers with consistent configuration and context propagation.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level returns the log level selected by the LOG_LEVEL environment variable.
// Supported levels: debug, info, warn, error
// Default level: info
func Level() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns the logger selected by the LOG_FORMAT environment variable:
// "text" selects NewTextLogger, anything else the JSON logger.
func New(w io.Writer) *slog.Logger {
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "text") {
		return NewTextLogger(w)
	}
	return NewLogger(w)
}

// NewLogger creates a new structured logger with JSON output written to w.
// The CLI passes os.Stderr so that command output on stdout stays machine readable.
func NewLogger(w io.Writer) *slog.Logger {
	logLevel := Level()
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: logLevel,
		// Add source code location at debug level
		AddSource: logLevel <= slog.LevelDebug,
	})
	return slog.New(handler)
}

// NewTextLogger creates a new structured logger with human-readable text output.
// This is useful for local development and debugging.
func NewTextLogger(w io.Writer) *slog.Logger {
	logLevel := Level()
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel <= slog.LevelDebug,
	})
	return slog.New(handler)
}

// WithOperation returns a logger tagged with the repository backend and operation.
func WithOperation(logger *slog.Logger, backend, operation string) *slog.Logger {
	return logger.With(slog.String("backend", backend), slog.String("operation", operation))
}

// WithFields returns a new logger with additional structured fields.
// Fields are provided as key-value pairs.
func WithFields(logger *slog.Logger, fields map[string]interface{}) *slog.Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return logger.With(args...)
}

// FromContext retrieves the logger from the context, or returns the default logger if not found.
// This enables passing loggers through the application via context.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

type contextKey string

const loggerContextKey contextKey = "logger"

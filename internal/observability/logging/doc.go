// Package logging provides structured logging utilities with context propagation.
//
// Key features:
//   - JSON and text output formats
//   - Context-aware logging
//   - Configurable log levels (LOG_LEVEL)
//
// Example usage:
//
//	logger := logging.NewLogger(os.Stderr)
//	ctx = logging.WithLogger(ctx, logger)
//	logging.FromContext(ctx).Info("seed finished", slog.Int("articles", 6))
package logging

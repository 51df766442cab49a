// Package observability groups logging, metrics and tracing for newsdesk.
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics for repository operations and loading
//   - tracing: OpenTelemetry tracer for repository spans
package observability

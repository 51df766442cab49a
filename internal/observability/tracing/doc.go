// Package tracing provides the OpenTelemetry tracer used for repository spans.
//
// No exporter is configured here; the process installs a TracerProvider via
// otel.SetTracerProvider when traces should leave the process.
package tracing

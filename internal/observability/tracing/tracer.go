package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans created by newsdesk.
const TracerName = "newsdesk"

// GetTracer returns the tracer for creating spans. It is resolved from the
// global provider on each call so that a provider installed after start-up
// (or by a test) takes effect.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "operation-name")
//	defer span.End()
func GetTracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

package instrumented_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/infra/adapter/persistence/instrumented"
	"newsdesk/internal/infra/adapter/persistence/memory"
	"newsdesk/internal/observability/metrics"
	"newsdesk/internal/repository"
	"newsdesk/internal/repository/repotest"
)

func installExporter(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return exporter, tp
}

// histogramCount returns the number of duration samples recorded for backend and op.
func histogramCount(t *testing.T, backend, op string) uint64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "repository_operation_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["backend"] == backend && labels["operation"] == op {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func TestRepo_Conformance(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.Repository {
		return instrumented.New(memory.NewRepo(), "memory-conformance")
	})
}

func TestRepo_OneSpanAndSamplePerCall(t *testing.T) {
	exporter, tp := installExporter(t)
	repo := instrumented.New(memory.NewRepo(), "memory-span")
	ctx := context.Background()

	success := metrics.RepositoryOperationsTotal.WithLabelValues("memory-span", "GetTags", metrics.StatusSuccess)
	before := testutil.ToFloat64(success)
	samples := histogramCount(t, "memory-span", "GetTags")

	_, err := repo.GetTags(ctx)
	require.NoError(t, err)
	_ = tp.ForceFlush(ctx)

	assert.Equal(t, before+1, testutil.ToFloat64(success))
	assert.Equal(t, samples+1, histogramCount(t, "memory-span", "GetTags"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "repository.GetTags", spans[0].Name)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	assert.Equal(t, "memory-span", attrs["repository.backend"])
	assert.Equal(t, "GetTags", attrs["repository.operation"])
}

func TestRepo_IntegrityViolationIsRecorded(t *testing.T) {
	exporter, tp := installExporter(t)
	repo := instrumented.New(memory.NewRepo(), "memory-integrity")
	ctx := context.Background()

	require.NoError(t, repo.AddUser(ctx, entity.NewUser("dave", "hash")))
	err := repo.AddUser(ctx, entity.NewUser("dave", "hash"))
	require.ErrorIs(t, err, repository.ErrIntegrity)
	_ = tp.ForceFlush(ctx)

	violations := metrics.RepositoryOperationsTotal.WithLabelValues("memory-integrity", "AddUser", metrics.StatusIntegrity)
	assert.Equal(t, float64(1), testutil.ToFloat64(violations))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
	assert.NotEmpty(t, spans[1].Events, "error must be recorded on the span")
}

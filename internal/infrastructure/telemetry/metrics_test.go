package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/bibbank/scoring-service/internal/domain/port"
)

var _ port.Metrics = (*Metrics)(nil)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumByAttr(t *testing.T, m metricdata.Metrics, key string) map[string]int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	out := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key(key))
		out[v.AsString()] += dp.Value
	}
	return out
}

func TestMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetrics(provider)
	require.NoError(t, err)

	ctx := context.Background()
	m.ScoreRecorded(ctx, "faible", 3*time.Millisecond)
	m.ScoreRecorded(ctx, "faible", 5*time.Millisecond)
	m.ScoreRecorded(ctx, "eleve", 4*time.Millisecond)
	m.ExplanationUnavailable(ctx, "tree_shapley")
	m.ScenariosSimulated(ctx, 3, 1)
	m.ScenariosSimulated(ctx, 0, 0)
	m.CacheLookup(ctx, true)
	m.CacheLookup(ctx, false)
	m.CacheLookup(ctx, false)

	metrics := collect(t, reader)

	assert.Equal(t, map[string]int64{"faible": 2, "eleve": 1}, sumByAttr(t, metrics["scoring.scores"], "category"))
	assert.Equal(t, map[string]int64{"tree_shapley": 1}, sumByAttr(t, metrics["scoring.explanations.unavailable"], "method"))
	assert.Equal(t, map[string]int64{"succeeded": 3, "failed": 1}, sumByAttr(t, metrics["scoring.scenarios"], "outcome"))
	assert.Equal(t, map[string]int64{"hit": 1, "miss": 2}, sumByAttr(t, metrics["scoring.cache.lookups"], "result"))

	hist, ok := metrics["scoring.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}

package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/bibbank/scoring-service"

// Metrics implements port.Metrics with OpenTelemetry instruments.
type Metrics struct {
	scores       metric.Int64Counter
	latency      metric.Float64Histogram
	unavailable  metric.Int64Counter
	scenarios    metric.Int64Counter
	cacheLookups metric.Int64Counter
}

// NewMetrics registers the scoring instruments on provider.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(meterName)

	scores, err := meter.Int64Counter("scoring.scores",
		metric.WithDescription("Applications scored, by risk category."))
	if err != nil {
		return nil, fmt.Errorf("create scores counter: %w", err)
	}
	latency, err := meter.Float64Histogram("scoring.duration",
		metric.WithDescription("Time spent scoring one application."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}
	unavailable, err := meter.Int64Counter("scoring.explanations.unavailable",
		metric.WithDescription("Explanations that could not be computed, by method."))
	if err != nil {
		return nil, fmt.Errorf("create explanation counter: %w", err)
	}
	scenarios, err := meter.Int64Counter("scoring.scenarios",
		metric.WithDescription("Simulated scenarios, by outcome."))
	if err != nil {
		return nil, fmt.Errorf("create scenarios counter: %w", err)
	}
	cacheLookups, err := meter.Int64Counter("scoring.cache.lookups",
		metric.WithDescription("Score cache lookups, by result."))
	if err != nil {
		return nil, fmt.Errorf("create cache counter: %w", err)
	}

	return &Metrics{
		scores:       scores,
		latency:      latency,
		unavailable:  unavailable,
		scenarios:    scenarios,
		cacheLookups: cacheLookups,
	}, nil
}

// ScoreRecorded counts one scoring and records its latency.
func (m *Metrics) ScoreRecorded(ctx context.Context, category string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("category", category))
	m.scores.Add(ctx, 1, attrs)
	m.latency.Record(ctx, elapsed.Seconds(), attrs)
}

// ExplanationUnavailable counts one failed explanation.
func (m *Metrics) ExplanationUnavailable(ctx context.Context, method string) {
	m.unavailable.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
}

// ScenariosSimulated counts scenario outcomes.
func (m *Metrics) ScenariosSimulated(ctx context.Context, succeeded, failed int) {
	if succeeded > 0 {
		m.scenarios.Add(ctx, int64(succeeded), metric.WithAttributes(attribute.String("outcome", "succeeded")))
	}
	if failed > 0 {
		m.scenarios.Add(ctx, int64(failed), metric.WithAttributes(attribute.String("outcome", "failed")))
	}
}

// CacheLookup counts one cache hit or miss.
func (m *Metrics) CacheLookup(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

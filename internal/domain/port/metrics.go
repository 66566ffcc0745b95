package port

import (
	"context"
	"time"
)

// Metrics records scoring telemetry.
type Metrics interface {
	ScoreRecorded(ctx context.Context, category string, elapsed time.Duration)
	ExplanationUnavailable(ctx context.Context, method string)
	ScenariosSimulated(ctx context.Context, succeeded, failed int)
	CacheLookup(ctx context.Context, hit bool)
}

// NopMetrics discards all telemetry.
type NopMetrics struct{}

func (NopMetrics) ScoreRecorded(context.Context, string, time.Duration) {}
func (NopMetrics) ExplanationUnavailable(context.Context, string)       {}
func (NopMetrics) ScenariosSimulated(context.Context, int, int)         {}
func (NopMetrics) CacheLookup(context.Context, bool)                    {}

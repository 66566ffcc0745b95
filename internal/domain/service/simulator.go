package service

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/bibbank/scoring-service/internal/domain/model"
)

// RecordScorer scores one applicant and loan pair.
type RecordScorer interface {
	Score(applicant model.ApplicantRecord, loan model.LoanRequest) (model.ScoreResult, error)
}

// ExplainingScorer scores one pair and attributes the prediction.
type ExplainingScorer interface {
	ScoreWithExplanation(applicant model.ApplicantRecord, loan model.LoanRequest) (model.ScoreResult, model.Explanation, error)
}

// SimulateOption configures one simulation.
type SimulateOption func(*simulateOptions)

type simulateOptions struct {
	explain bool
}

// WithScenarioExplanations attaches an explanation to every successful
// scenario. It has no effect when the scorer cannot explain.
func WithScenarioExplanations(enabled bool) SimulateOption {
	return func(o *simulateOptions) { o.explain = enabled }
}

// Simulator re-scores a base pair under named parameter overrides and
// compares the outcomes.
type Simulator struct {
	scorer      RecordScorer
	concurrency int
}

// NewSimulator creates a Simulator. concurrency bounds the number of
// scenarios scored in parallel; values below 1 use GOMAXPROCS.
func NewSimulator(scorer RecordScorer, concurrency int) *Simulator {
	if concurrency < 1 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &Simulator{scorer: scorer, concurrency: concurrency}
}

// Simulate scores the base pair and every scenario. A scenario that cannot
// be applied or scored is kept in the report with its error; only a failure
// to score the base pair fails the call. Outcomes follow input order.
func (s *Simulator) Simulate(
	ctx context.Context,
	applicant model.ApplicantRecord,
	loan model.LoanRequest,
	scenarios []model.ScenarioDefinition,
	opts ...SimulateOption,
) (model.SimulationReport, error) {
	var o simulateOptions
	for _, opt := range opts {
		opt(&o)
	}

	base, err := s.scorer.Score(applicant, loan)
	if err != nil {
		return model.SimulationReport{}, fmt.Errorf("score base scenario: %w", err)
	}

	outcomes := make([]model.ScenarioOutcome, len(scenarios))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, sc := range scenarios {
		g.Go(func() error {
			outcomes[i] = s.run(ctx, i, sc, applicant, loan, base, o)
			return nil
		})
	}
	_ = g.Wait()

	report := model.SimulationReport{Base: base, Outcomes: outcomes}
	report.Best, report.Worst, report.Spread = compare(outcomes)
	return report, nil
}

func (s *Simulator) run(
	ctx context.Context,
	index int,
	sc model.ScenarioDefinition,
	applicant model.ApplicantRecord,
	loan model.LoanRequest,
	base model.ScoreResult,
	o simulateOptions,
) (out model.ScenarioOutcome) {
	name := sc.Name
	if name == "" {
		name = fmt.Sprintf("Scénario %d", index+1)
	}
	out = model.ScenarioOutcome{
		Index:       index,
		Name:        name,
		Description: sc.Description,
		Overrides:   sc.Overrides,
	}

	// A panic in a worker goroutine would take the process down with it.
	defer func() {
		if r := recover(); r != nil {
			out.Result = nil
			out.Explanation = nil
			out.Delta = 0
			out.Err = fmt.Errorf("scenario %q: %w: scoring panicked: %v", name, model.ErrModelState, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}

	a, l, err := ApplyOverrides(applicant, loan, sc.Overrides)
	if err != nil {
		out.Err = fmt.Errorf("scenario %q: %w", name, err)
		return out
	}

	var result model.ScoreResult
	explainer, canExplain := s.scorer.(ExplainingScorer)
	if o.explain && canExplain {
		var explanation model.Explanation
		result, explanation, err = explainer.ScoreWithExplanation(a, l)
		out.Explanation = &explanation
	} else {
		result, err = s.scorer.Score(a, l)
	}
	if err != nil {
		out.Explanation = nil
		out.Err = fmt.Errorf("scenario %q: %w", name, err)
		return out
	}

	out.Result = &result
	out.Delta = math.Round((result.Score-base.Score)*10) / 10
	return out
}

// compare picks the lowest and highest scoring successful outcomes. Strict
// comparisons keep the first occurrence on ties.
func compare(outcomes []model.ScenarioOutcome) (best, worst *model.ScenarioOutcome, spread float64) {
	for i := range outcomes {
		o := outcomes[i]
		if !o.Succeeded() {
			continue
		}
		if best == nil || o.Result.Score < best.Result.Score {
			b := o
			best = &b
		}
		if worst == nil || o.Result.Score > worst.Result.Score {
			w := o
			worst = &w
		}
	}
	if best == nil {
		return nil, nil, 0
	}
	return best, worst, math.Round((worst.Result.Score-best.Result.Score)*10) / 10
}

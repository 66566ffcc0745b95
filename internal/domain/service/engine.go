package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/bibbank/scoring-service/internal/domain/model"
)

// Engine chains feature preparation, inference, categorization and
// explanation. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	preparer    *FeaturePreparer
	wrapper     *ModelWrapper
	categorizer *Categorizer
	explainer   *Explainer
	simulator   *Simulator
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	simulationConcurrency int
}

// WithSimulationConcurrency bounds the number of scenarios scored in parallel.
func WithSimulationConcurrency(n int) EngineOption {
	return func(o *engineOptions) { o.simulationConcurrency = n }
}

// NewEngine assembles an Engine. When the wrapper holds a model, its input
// width and, if recorded, its schema version and feature names must match
// the preparer's schema.
func NewEngine(
	preparer *FeaturePreparer,
	wrapper *ModelWrapper,
	categorizer *Categorizer,
	explainer *Explainer,
	opts ...EngineOption,
) (*Engine, error) {
	if preparer == nil {
		return nil, fmt.Errorf("engine: feature preparer is required")
	}
	if wrapper == nil {
		wrapper = NewModelWrapper(nil)
	}
	if categorizer == nil {
		categorizer = NewDefaultCategorizer()
	}
	if explainer == nil {
		explainer = NewExplainer(wrapper, nil, nil)
	}

	if err := checkCompatibility(preparer.Schema(), wrapper); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{
		preparer:    preparer,
		wrapper:     wrapper,
		categorizer: categorizer,
		explainer:   explainer,
	}
	e.simulator = NewSimulator(e, o.simulationConcurrency)
	return e, nil
}

func checkCompatibility(schema FeatureSchema, wrapper *ModelWrapper) error {
	if !wrapper.Loaded() {
		return nil
	}
	if n := wrapper.NumFeatures(); n != schema.Len() {
		return &model.FeatureShapeMismatchError{Expected: n, Got: schema.Len()}
	}
	info, ok := wrapper.Info()
	if !ok {
		return nil
	}
	if info.SchemaVersion != "" && info.SchemaVersion != schema.Version {
		return fmt.Errorf("%w: model trained on schema %s, preparer uses %s",
			model.ErrModelState, info.SchemaVersion, schema.Version)
	}
	if len(info.FeatureNames) > 0 && !slices.Equal(info.FeatureNames, schema.Names()) {
		return fmt.Errorf("%w: model feature order differs from schema %s", model.ErrModelState, schema.Version)
	}
	return nil
}

// Schema returns the feature schema in use.
func (e *Engine) Schema() FeatureSchema {
	return e.preparer.Schema()
}

// ExplanationMethod returns the name of the attribution strategy.
func (e *Engine) ExplanationMethod() string {
	return e.explainer.Method()
}

// Prepare builds the feature vector for a pair.
func (e *Engine) Prepare(applicant model.ApplicantRecord, loan model.LoanRequest) (model.FeatureVector, error) {
	return e.preparer.Prepare(applicant, loan)
}

// Score prepares, predicts and categorizes one pair.
func (e *Engine) Score(applicant model.ApplicantRecord, loan model.LoanRequest) (model.ScoreResult, error) {
	result, _, err := e.score(applicant, loan)
	return result, err
}

// ScoreWithExplanation scores one pair and attributes the prediction. The
// explanation may be unavailable; that never fails the call.
func (e *Engine) ScoreWithExplanation(
	applicant model.ApplicantRecord,
	loan model.LoanRequest,
) (model.ScoreResult, model.Explanation, error) {
	result, vector, err := e.score(applicant, loan)
	if err != nil {
		return model.ScoreResult{}, model.Explanation{}, err
	}
	explanation := e.explainer.Explain(vector, e.preparer.RawFields(applicant, loan))
	return result, explanation, nil
}

// Explain attributes the prediction for a pair without categorizing it.
func (e *Engine) Explain(applicant model.ApplicantRecord, loan model.LoanRequest) (model.Explanation, error) {
	vector, err := e.preparer.Prepare(applicant, loan)
	if err != nil {
		return model.Explanation{}, err
	}
	return e.explainer.Explain(vector, e.preparer.RawFields(applicant, loan)), nil
}

func (e *Engine) score(applicant model.ApplicantRecord, loan model.LoanRequest) (model.ScoreResult, model.FeatureVector, error) {
	vector, err := e.preparer.Prepare(applicant, loan)
	if err != nil {
		return model.ScoreResult{}, model.FeatureVector{}, err
	}
	p, err := e.wrapper.PredictProbability(vector)
	if err != nil {
		return model.ScoreResult{}, model.FeatureVector{}, err
	}
	return e.categorizer.Categorize(p), vector, nil
}

// Simulate compares scenarios against the base pair.
func (e *Engine) Simulate(
	ctx context.Context,
	applicant model.ApplicantRecord,
	loan model.LoanRequest,
	scenarios []model.ScenarioDefinition,
	opts ...SimulateOption,
) (model.SimulationReport, error) {
	return e.simulator.Simulate(ctx, applicant, loan, scenarios, opts...)
}

// ModelInfo describes the loaded model. Classifiers without metadata are
// described from the schema alone.
func (e *Engine) ModelInfo() (model.ModelInfo, error) {
	if !e.wrapper.Loaded() {
		return model.ModelInfo{}, model.ErrModelNotLoaded
	}
	if info, ok := e.wrapper.Info(); ok {
		return info, nil
	}
	return model.ModelInfo{
		Algorithm:     "unknown",
		SchemaVersion: e.Schema().Version,
		FeatureNames:  e.Schema().Names(),
	}, nil
}

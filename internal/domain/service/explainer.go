package service

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/bibbank/scoring-service/internal/domain/model"
	"github.com/bibbank/scoring-service/internal/domain/port"
)

const (
	// DefaultTopK is the number of key factors surfaced on each side.
	DefaultTopK = 5

	// AdditivityTolerance bounds |baseline + sum(impacts) - output|.
	AdditivityTolerance = 1e-3
)

// Explainer turns raw attributions into ranked, described factor lists.
// It never fails: any attribution problem yields an unavailable explanation.
type Explainer struct {
	wrapper    *ModelWrapper
	attributor port.Attributor
	topK       int
	tolerance  float64
	logger     *slog.Logger
}

// ExplainerOption configures an Explainer.
type ExplainerOption func(*Explainer)

// WithTopK sets the number of key factors per side. Non-positive values are ignored.
func WithTopK(k int) ExplainerOption {
	return func(e *Explainer) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithAdditivityTolerance overrides AdditivityTolerance.
func WithAdditivityTolerance(tol float64) ExplainerOption {
	return func(e *Explainer) {
		if tol > 0 {
			e.tolerance = tol
		}
	}
}

// NewExplainer creates an Explainer that attributes predictions of the
// wrapped model with attributor.
func NewExplainer(wrapper *ModelWrapper, attributor port.Attributor, logger *slog.Logger, opts ...ExplainerOption) *Explainer {
	e := &Explainer{
		wrapper:    wrapper,
		attributor: attributor,
		topK:       DefaultTopK,
		tolerance:  AdditivityTolerance,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Method returns the name of the attribution strategy, or "".
func (e *Explainer) Method() string {
	if e.attributor == nil {
		return ""
	}
	return e.attributor.Name()
}

// TopK returns the configured number of key factors per side.
func (e *Explainer) TopK() int {
	return e.topK
}

// Explain attributes the prediction for vector. raw holds the business value
// of each feature keyed by feature name and may be nil.
func (e *Explainer) Explain(vector model.FeatureVector, raw map[string]string) (explanation model.Explanation) {
	defer func() {
		if r := recover(); r != nil {
			explanation = e.unavailable(fmt.Sprintf("attribution panicked: %v", r))
		}
	}()

	if e.attributor == nil {
		return e.unavailable("no attribution method configured")
	}
	if !e.wrapper.Loaded() {
		return e.unavailable(model.ErrModelNotLoaded.Error())
	}
	clf := e.wrapper.Classifier()
	if vector.Len() != clf.NumFeatures() {
		return e.unavailable((&model.FeatureShapeMismatchError{Expected: clf.NumFeatures(), Got: vector.Len()}).Error())
	}

	attr, err := e.attributor.Attribute(clf, vector.Values())
	if err != nil {
		return e.unavailable(fmt.Sprintf("%s attribution failed: %v", e.attributor.Name(), err))
	}
	if len(attr.Values) != vector.Len() {
		return e.unavailable(fmt.Sprintf("%s returned %d attributions for %d features",
			e.attributor.Name(), len(attr.Values), vector.Len()))
	}

	sum := 0.0
	for _, v := range attr.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return e.unavailable(fmt.Sprintf("%s returned a non-finite attribution", e.attributor.Name()))
		}
		sum += v
	}
	if gap := math.Abs(attr.Baseline + sum - attr.Output); math.IsNaN(gap) || gap > e.tolerance {
		return e.unavailable(fmt.Sprintf("%s attributions are not additive: gap %.6f", e.attributor.Name(), gap))
	}

	contributions := make([]model.FactorContribution, vector.Len())
	for i := range contributions {
		name := vector.Name(i)
		contributions[i] = model.FactorContribution{
			FeatureName:  name,
			FeatureValue: vector.At(i),
			RawValue:     raw[name],
			Impact:       attr.Values[i],
			Description:  DescribeFeature(name),
		}
	}

	favorable, unfavorable := splitByImpact(contributions)

	return model.ExplanationAvailable(model.Attributions{
		Method:        e.attributor.Name(),
		Baseline:      attr.Baseline,
		Output:        attr.Output,
		Contributions: contributions,
		Favorable:     favorable,
		Unfavorable:   unfavorable,
		TopK:          e.topK,
	})
}

func (e *Explainer) unavailable(reason string) model.Explanation {
	if e.logger != nil {
		e.logger.Warn("explanation unavailable", "method", e.Method(), "reason", reason)
	}
	return model.ExplanationUnavailable(reason)
}

// splitByImpact partitions contributions into favorable (negative impact)
// and unfavorable (positive impact) lists, each sorted by absolute impact
// with ties kept in schema order. Zero impacts belong to neither list.
func splitByImpact(contributions []model.FactorContribution) (favorable, unfavorable []model.FactorContribution) {
	favorable = make([]model.FactorContribution, 0, len(contributions))
	unfavorable = make([]model.FactorContribution, 0, len(contributions))
	for _, c := range contributions {
		switch {
		case c.Impact < 0:
			favorable = append(favorable, c)
		case c.Impact > 0:
			unfavorable = append(unfavorable, c)
		}
	}
	byMagnitude := func(s []model.FactorContribution) {
		sort.SliceStable(s, func(i, j int) bool {
			return math.Abs(s[i].Impact) > math.Abs(s[j].Impact)
		})
	}
	byMagnitude(favorable)
	byMagnitude(unfavorable)
	return favorable, unfavorable
}

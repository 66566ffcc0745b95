package service

import (
	"fmt"
	"math"

	"github.com/bibbank/scoring-service/internal/domain/model"
	"github.com/bibbank/scoring-service/internal/domain/port"
)

// ModelWrapper owns a loaded classifier and exposes default probabilities.
// It knows nothing about categorization policy.
type ModelWrapper struct {
	clf port.Classifier
}

// NewModelWrapper wraps clf. A nil clf is accepted; every prediction then
// fails with model.ErrModelNotLoaded.
func NewModelWrapper(clf port.Classifier) *ModelWrapper {
	return &ModelWrapper{clf: clf}
}

// Loaded reports whether a classifier is available.
func (w *ModelWrapper) Loaded() bool {
	return w != nil && w.clf != nil
}

// Classifier returns the wrapped classifier, or nil.
func (w *ModelWrapper) Classifier() port.Classifier {
	if w == nil {
		return nil
	}
	return w.clf
}

// NumFeatures returns the model input width, or 0 when no model is loaded.
func (w *ModelWrapper) NumFeatures() int {
	if !w.Loaded() {
		return 0
	}
	return w.clf.NumFeatures()
}

// PredictProbability returns the probability of default for vector.
func (w *ModelWrapper) PredictProbability(vector model.FeatureVector) (float64, error) {
	if !w.Loaded() {
		return 0, model.ErrModelNotLoaded
	}
	if expected := w.clf.NumFeatures(); vector.Len() != expected {
		return 0, &model.FeatureShapeMismatchError{Expected: expected, Got: vector.Len()}
	}

	p, err := w.clf.PredictProba(vector.Values())
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 || p > 1 {
		return 0, fmt.Errorf("%w: classifier returned probability %v outside [0,1]", model.ErrModelState, p)
	}
	return p, nil
}

// Info returns artifact metadata when the classifier carries any.
func (w *ModelWrapper) Info() (model.ModelInfo, bool) {
	if !w.Loaded() {
		return model.ModelInfo{}, false
	}
	d, ok := w.clf.(port.ModelDescriber)
	if !ok {
		return model.ModelInfo{}, false
	}
	return d.Info(), true
}

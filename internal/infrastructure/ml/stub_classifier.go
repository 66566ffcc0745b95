package ml

import (
	"log/slog"

	"github.com/bibbank/scoring-service/internal/domain/model"
)

// StubModelPath is the model path that selects a StubClassifier instead of
// a forest artifact.
const StubModelPath = "stub"

// StubProbability is the default probability returned by the stub model.
const StubProbability = 0.1

// StubClassifier implements port.Classifier with a fixed probability.
// Selecting MODEL_PATH=stub lets the service start in development without a
// trained artifact.
type StubClassifier struct {
	probability float64
	names       []string
	logger      *slog.Logger
}

// NewStubClassifier creates a stub classifier for the given feature names.
func NewStubClassifier(probability float64, names []string, logger *slog.Logger) *StubClassifier {
	return &StubClassifier{
		probability: probability,
		names:       append([]string(nil), names...),
		logger:      logger,
	}
}

// PredictProba returns the configured probability.
func (c *StubClassifier) PredictProba(features []float64) (float64, error) {
	if len(features) != len(c.names) {
		return 0, &model.FeatureShapeMismatchError{Expected: len(c.names), Got: len(features)}
	}
	c.logger.Debug("stub model prediction requested",
		slog.Int("feature_count", len(features)),
	)
	return c.probability, nil
}

// NumFeatures returns the configured width.
func (c *StubClassifier) NumFeatures() int { return len(c.names) }

// Info describes the stub so that compatibility checks can run against it.
func (c *StubClassifier) Info() model.ModelInfo {
	return model.ModelInfo{
		Algorithm:    "stub",
		Version:      "0.0.0",
		FeatureNames: append([]string(nil), c.names...),
		Estimators:   0,
	}
}

package port

import "github.com/bibbank/scoring-service/internal/domain/model"

// Classifier is a loaded, read-only binary classifier.
type Classifier interface {
	// PredictProba returns the probability of the positive (default) class.
	PredictProba(features []float64) (float64, error)

	// NumFeatures returns the input width the classifier was trained on.
	NumFeatures() int
}

// ModelDescriber is implemented by classifiers that carry artifact metadata.
type ModelDescriber interface {
	Info() model.ModelInfo
}

// Attribution is the raw output of an attribution strategy.
// Baseline + sum(Values) equals Output.
type Attribution struct {
	Baseline float64
	Values   []float64
	Output   float64
}

// Attributor computes additive per-feature attributions for one prediction.
type Attributor interface {
	Name() string
	Attribute(clf Classifier, features []float64) (Attribution, error)
}

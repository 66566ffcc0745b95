package ml

import (
	"fmt"
	"log/slog"

	"github.com/bibbank/scoring-service/internal/domain/port"
	"github.com/bibbank/scoring-service/internal/domain/service"
)

// EngineConfig selects the model artifact and explanation settings of an engine.
type EngineConfig struct {
	Schema            service.FeatureSchema
	ModelPath         string // empty leaves the engine without a model; StubModelPath uses a stub
	Method            string
	TopK              int
	MaxFeatures       int
	SimulationWorkers int
}

// NewAttributor returns the attributor whose Name is method. "none" and ""
// return nil, which disables explanations.
func NewAttributor(method string, schema service.FeatureSchema, maxFeatures int) (port.Attributor, error) {
	switch method {
	case "tree_path":
		return NewPathAttributor(), nil
	case "tree_shapley":
		return NewTreeShapley(maxFeatures), nil
	case "baseline_shapley":
		return NewBaselineShapley(schema.References(), maxFeatures), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown explanation method %q", method)
	}
}

// BuildEngine loads the configured forest and assembles a scoring engine
// around it.
func BuildEngine(cfg EngineConfig, logger *slog.Logger) (*service.Engine, error) {
	if len(cfg.Schema.Features) == 0 {
		cfg.Schema = service.DefaultFeatureSchema()
	}
	preparer, err := service.NewFeaturePreparer(cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to build feature preparer: %w", err)
	}

	var clf port.Classifier
	switch cfg.ModelPath {
	case "":
		logger.Warn("no model configured, scoring requests will fail")
	case StubModelPath:
		clf = NewStubClassifier(StubProbability, cfg.Schema.Names(), logger)
		logger.Warn("using stub model, every application gets the same score",
			slog.Float64("probability", StubProbability),
		)
	default:
		forest, err := LoadForest(cfg.ModelPath)
		if err != nil {
			return nil, err
		}
		clf = forest
		logger.Info("model loaded",
			slog.String("path", cfg.ModelPath),
			slog.String("version", forest.Info().Version),
			slog.Int("estimators", forest.Trees()),
		)
	}

	attributor, err := NewAttributor(cfg.Method, cfg.Schema, cfg.MaxFeatures)
	if err != nil {
		return nil, err
	}

	wrapper := service.NewModelWrapper(clf)
	engine, err := service.NewEngine(
		preparer,
		wrapper,
		service.NewDefaultCategorizer(),
		service.NewExplainer(wrapper, attributor, logger, service.WithTopK(cfg.TopK)),
		service.WithSimulationConcurrency(cfg.SimulationWorkers),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}
	return engine, nil
}

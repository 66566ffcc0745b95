package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bibbank/scoring-service/internal/infrastructure/ml"
	"github.com/bibbank/scoring-service/internal/infrastructure/schema"
	"github.com/bibbank/scoring-service/pkg/observability"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	app := &cliApp{}

	cmd := &cobra.Command{
		Use:   "scorectl",
		Short: "Score credit applications offline",
		Long: `Score, explain and simulate credit applications against a model
artifact without the scoring daemon.

Input files are JSON documents holding a "demandeur" and a "credit" object,
using the same field names as the RiskScoringService API. Use "-" to read
from stdin.

Examples:
  scorectl score application.json
  scorectl explain --format texte application.json
  scorectl simulate --scenarios scenarios.yaml application.json
  scorectl model-info --model models/forest_v1.json`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd)
		},
	}

	f := cmd.PersistentFlags()
	f.String("config", "", "config file (default: ./scorectl.yaml)")
	f.String("model", "", "model artifact path")
	f.String("schema", "", "feature schema YAML (default: built-in credit-risk-v1)")
	f.Int("workers", 0, "concurrent scenario workers (0 = GOMAXPROCS)")
	f.String("method", "", "explanation method: tree_path, tree_shapley, baseline_shapley or none")
	f.Int("top-k", 0, "key factors per side")
	f.Int("max-features", 0, "feature cap for exact Shapley attribution")
	f.String("log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(
		newScoreCmd(app),
		newExplainCmd(app),
		newSimulateCmd(app),
		newModelInfoCmd(app),
	)
	return cmd
}

func (a *cliApp) init(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = observability.InitLogger(cfg.logging(cmd.ErrOrStderr()))

	featureSchema, err := schema.Load(cfg.Model.SchemaPath)
	if err != nil {
		return err
	}
	a.engine, err = ml.BuildEngine(ml.EngineConfig{
		Schema:            featureSchema,
		ModelPath:         cfg.Model.Path,
		Method:            cfg.Explanation.Method,
		TopK:              cfg.Explanation.TopK,
		MaxFeatures:       cfg.Explanation.MaxFeatures,
		SimulationWorkers: cfg.Model.Workers,
	}, a.logger)
	return err
}

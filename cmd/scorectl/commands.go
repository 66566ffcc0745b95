package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bibbank/scoring-service/internal/application/dto"
	"github.com/bibbank/scoring-service/internal/application/usecase"
)

func newScoreCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "score <application.json>",
		Short: "Score an application and print its key factors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readApplication(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := usecase.NewPredictDirect(app.engine, app.logger).Execute(cmd.Context(), dto.PredictRequest{
				Applicant: *in.Applicant,
				Loan:      *in.Loan,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd, resp)
		},
	}
}

func newExplainCmd(app *cliApp) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "explain <application.json>",
		Short: "Explain the score of an application",
		Long: `Explain the score of an application.

Formats:
  texte      narrative summary, printed as plain text
  graphique  waterfall chart series
  complet    both, plus the raw per-feature contributions`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readApplication(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := usecase.NewExplainAssessment(app.engine, nil, app.logger).Execute(cmd.Context(), dto.ExplainRequest{
				Applicant: *in.Applicant,
				Loan:      *in.Loan,
				Format:    format,
			})
			if err != nil {
				return err
			}
			if resp.Format == "texte" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
				return err
			}
			return writeJSON(cmd, resp)
		},
	}
	cmd.Flags().StringVar(&format, "format", "complet", "output format: texte, graphique or complet")
	return cmd
}

func newSimulateCmd(app *cliApp) *cobra.Command {
	var (
		scenariosPath string
		explain       bool
	)

	cmd := &cobra.Command{
		Use:   "simulate <application.json>",
		Short: "Score what-if scenarios against an application",
		Long: `Score what-if scenarios against an application.

Scenarios come from the "scenarios" array of the input file, or from a
YAML file given with --scenarios:

  - nom: Revenu relevé
    parametres:
      revenu_mensuel: 6000
  - nom: Sans incident
    parametres:
      defauts_paiement: 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readApplication(cmd, args[0])
			if err != nil {
				return err
			}
			scenarios := in.Scenarios
			if scenariosPath != "" {
				if scenarios, err = readScenarios(scenariosPath); err != nil {
					return err
				}
			}
			resp, err := usecase.NewSimulateScenarios(app.engine, nil, app.logger).Execute(cmd.Context(), dto.SimulateRequest{
				Applicant:           *in.Applicant,
				Loan:                *in.Loan,
				Scenarios:           scenarios,
				IncludeExplanations: explain,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd, resp)
		},
	}
	cmd.Flags().StringVar(&scenariosPath, "scenarios", "", "YAML file of scenario definitions")
	cmd.Flags().BoolVar(&explain, "explain", false, "attach key factors to every scenario")
	return cmd
}

func newModelInfoCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "model-info",
		Short: "Print metadata of the loaded model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := usecase.NewGetModelInfo(app.engine).Execute(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd, resp)
		},
	}
}

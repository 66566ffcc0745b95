package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bibbank/scoring-service/internal/domain/model"
	"github.com/bibbank/scoring-service/internal/domain/service"
)

// cliApp carries state built once per invocation by the root command.
type cliApp struct {
	cfg    *cliConfig
	logger *slog.Logger
	engine *service.Engine
}

// applicationFile is the JSON input accepted by score, explain and simulate.
type applicationFile struct {
	Applicant *model.ApplicantRecord     `json:"demandeur"`
	Loan      *model.LoanRequest         `json:"credit"`
	Scenarios []model.ScenarioDefinition `json:"scenarios"`
}

func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

func readApplication(cmd *cobra.Command, path string) (applicationFile, error) {
	r, err := openInput(cmd, path)
	if err != nil {
		return applicationFile{}, err
	}
	defer r.Close()

	dec := json.NewDecoder(r)
	dec.UseNumber()
	dec.DisallowUnknownFields()

	var app applicationFile
	if err := dec.Decode(&app); err != nil {
		return applicationFile{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if app.Applicant == nil {
		return applicationFile{}, fmt.Errorf("%s: demandeur is required", path)
	}
	if app.Loan == nil {
		return applicationFile{}, fmt.Errorf("%s: credit is required", path)
	}
	return app, nil
}

// readScenarios reads a YAML (or JSON) list of scenario definitions.
func readScenarios(path string) ([]model.ScenarioDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenarios: %w", err)
	}
	defer f.Close()

	var scenarios []model.ScenarioDefinition
	if err := yaml.NewDecoder(f).Decode(&scenarios); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return scenarios, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

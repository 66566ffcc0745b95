package dto

import "github.com/bibbank/scoring-service/internal/domain/model"

// SimulateRequest is the input DTO for the SimulateScenarios use case.
// IncludeExplanations attaches key factors to every successful scenario.
type SimulateRequest struct {
	Applicant           model.ApplicantRecord      `json:"demandeur"`
	Loan                model.LoanRequest          `json:"credit"`
	Scenarios           []model.ScenarioDefinition `json:"scenarios"`
	IncludeExplanations bool                       `json:"inclure_explications"`
}

// ScenarioResultDTO is the outcome of one scenario. Either Result or Error
// is set. Index is 1-based.
type ScenarioResultDTO struct {
	Result      *ScoreDTO              `json:"resultat,omitempty"`
	Explanation *ExplanationSummaryDTO `json:"explications,omitempty"`
	Parameters  map[string]any         `json:"parametres"`
	Changed     []string               `json:"parametres_modifies"`
	Name        string                 `json:"scenario_nom"`
	Description string                 `json:"description"`
	Error       string                 `json:"erreur,omitempty"`
	Index       int                    `json:"scenario_id"`
	Delta       float64                `json:"variation_score"`
}

// ScenarioRefDTO points at one scenario of the comparison.
type ScenarioRefDTO struct {
	Name  string  `json:"nom"`
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// ComparisonDTO summarizes the successful scenarios.
type ComparisonDTO struct {
	Best   ScenarioRefDTO `json:"meilleur_scenario"`
	Worst  ScenarioRefDTO `json:"pire_scenario"`
	Spread float64        `json:"ecart_scores"`
}

// SimulateResponse compares every scenario with the base records.
// Comparison is nil when no scenario succeeded.
type SimulateResponse struct {
	Comparison *ComparisonDTO      `json:"analyse_comparative,omitempty"`
	Base       ScoreDTO            `json:"resultat_base"`
	Scenarios  []ScenarioResultDTO `json:"simulations"`
	Failed     int                 `json:"echecs"`
}

// FromSimulationReport maps a simulation report to its DTO.
func FromSimulationReport(r model.SimulationReport) SimulateResponse {
	resp := SimulateResponse{
		Base:      FromScoreResult(r.Base),
		Scenarios: make([]ScenarioResultDTO, 0, len(r.Outcomes)),
	}
	for _, o := range r.Outcomes {
		item := ScenarioResultDTO{
			Index:       o.Index + 1,
			Name:        o.Name,
			Description: o.Description,
			Parameters:  o.Overrides,
			Changed:     o.ChangedParameters(),
		}
		if o.Succeeded() {
			score := FromScoreResult(*o.Result)
			item.Result = &score
			item.Delta = o.Delta
			if o.Explanation != nil {
				item.Explanation = FromExplanation(*o.Explanation)
			}
		} else {
			item.Error = o.Err.Error()
			resp.Failed++
		}
		resp.Scenarios = append(resp.Scenarios, item)
	}
	if r.Best != nil && r.Worst != nil {
		resp.Comparison = &ComparisonDTO{
			Best:   scenarioRef(*r.Best),
			Worst:  scenarioRef(*r.Worst),
			Spread: r.Spread,
		}
	}
	return resp
}

func scenarioRef(o model.ScenarioOutcome) ScenarioRefDTO {
	return ScenarioRefDTO{Index: o.Index + 1, Name: o.Name, Score: o.Result.Score}
}

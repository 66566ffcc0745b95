package model

import "sort"

// ScenarioDefinition describes a hypothetical variant of the base records.
type ScenarioDefinition struct {
	Name        string         `json:"nom" yaml:"nom"`
	Description string         `json:"description" yaml:"description"`
	Overrides   map[string]any `json:"parametres" yaml:"parametres"`
}

// ScenarioOutcome is the result of one scenario. Exactly one of Result and
// Err is set.
type ScenarioOutcome struct {
	Index       int
	Name        string
	Description string
	Overrides   map[string]any
	Result      *ScoreResult
	// Explanation is set only when explanations were requested.
	Explanation *Explanation
	// Delta is Result.Score minus the base score.
	Delta float64
	Err   error
}

// Succeeded reports whether the scenario produced a score.
func (o ScenarioOutcome) Succeeded() bool { return o.Err == nil && o.Result != nil }

// ChangedParameters returns the overridden parameter names, sorted.
func (o ScenarioOutcome) ChangedParameters() []string {
	names := make([]string, 0, len(o.Overrides))
	for name := range o.Overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SimulationReport compares every scenario with the base records.
type SimulationReport struct {
	Base     ScoreResult
	Outcomes []ScenarioOutcome
	// Best and Worst are nil when no scenario succeeded.
	Best   *ScenarioOutcome
	Worst  *ScenarioOutcome
	Spread float64
}

// Failed returns the outcomes that carry an error, in input order.
func (r SimulationReport) Failed() []ScenarioOutcome {
	var out []ScenarioOutcome
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			out = append(out, o)
		}
	}
	return out
}

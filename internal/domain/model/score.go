package model

import "github.com/bibbank/scoring-service/internal/domain/valueobject"

// ScoreResult is the categorized outcome of one prediction.
type ScoreResult struct {
	Probability    float64                    `json:"probabilite_defaut"`
	Score          float64                    `json:"score"`
	Category       valueobject.RiskCategory   `json:"categorie_risque"`
	Recommendation valueobject.Recommendation `json:"recommandation"`
}

// Justification returns the standard wording for the recommendation.
func (r ScoreResult) Justification() string {
	return r.Recommendation.Justification()
}

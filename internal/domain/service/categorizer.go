package service

import (
	"fmt"
	"math"

	"github.com/bibbank/scoring-service/internal/domain/model"
	"github.com/bibbank/scoring-service/internal/domain/valueobject"
)

// ScoreBand assigns Category to every score at or above MinScore, down to
// the next band's lower bound.
type ScoreBand struct {
	MinScore float64
	Category valueobject.RiskCategory
}

// CategoryPolicy is the table that maps scores to categories and categories
// to recommendations.
type CategoryPolicy struct {
	// Bands are ordered by MinScore, highest first; the last band starts at 0.
	Bands           []ScoreBand
	Recommendations map[valueobject.RiskCategory]valueobject.Recommendation
}

// DefaultCategoryPolicy returns the production thresholds: below 30 faible,
// 30 to below 60 modere, 60 and above eleve.
func DefaultCategoryPolicy() CategoryPolicy {
	return CategoryPolicy{
		Bands: []ScoreBand{
			{MinScore: 60, Category: valueobject.RiskCategoryEleve},
			{MinScore: 30, Category: valueobject.RiskCategoryModere},
			{MinScore: 0, Category: valueobject.RiskCategoryFaible},
		},
		Recommendations: map[valueobject.RiskCategory]valueobject.Recommendation{
			valueobject.RiskCategoryFaible: valueobject.RecommendationApprobation,
			valueobject.RiskCategoryModere: valueobject.RecommendationRevision,
			valueobject.RiskCategoryEleve:  valueobject.RecommendationRejet,
		},
	}
}

// Validate checks that the bands cover [0,100] in descending order and that
// every category in use has a recommendation.
func (p CategoryPolicy) Validate() error {
	if len(p.Bands) == 0 {
		return fmt.Errorf("category policy: no bands")
	}
	for i, b := range p.Bands {
		if b.Category.IsZero() {
			return fmt.Errorf("category policy: band %d has no category", i)
		}
		if b.MinScore < 0 || b.MinScore > 100 {
			return fmt.Errorf("category policy: band %s lower bound %v outside [0,100]", b.Category, b.MinScore)
		}
		if i > 0 && b.MinScore >= p.Bands[i-1].MinScore {
			return fmt.Errorf("category policy: bands must be strictly descending, %s (%v) after %s (%v)",
				b.Category, b.MinScore, p.Bands[i-1].Category, p.Bands[i-1].MinScore)
		}
		if i > 0 && b.Category.Severity() > p.Bands[i-1].Category.Severity() {
			return fmt.Errorf("category policy: band %s is more severe than the band above it", b.Category)
		}
		rec, ok := p.Recommendations[b.Category]
		if !ok || rec.IsZero() {
			return fmt.Errorf("category policy: no recommendation for category %s", b.Category)
		}
	}
	if last := p.Bands[len(p.Bands)-1]; last.MinScore != 0 {
		return fmt.Errorf("category policy: lowest band must start at 0, got %v", last.MinScore)
	}
	return nil
}

// Categorizer maps default probabilities to score results.
type Categorizer struct {
	policy CategoryPolicy
}

// NewCategorizer validates policy and returns a Categorizer using it.
func NewCategorizer(policy CategoryPolicy) (*Categorizer, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Categorizer{policy: policy}, nil
}

// NewDefaultCategorizer returns a Categorizer with DefaultCategoryPolicy.
func NewDefaultCategorizer() *Categorizer {
	return &Categorizer{policy: DefaultCategoryPolicy()}
}

// Policy returns the active policy.
func (c *Categorizer) Policy() CategoryPolicy {
	return c.policy
}

// RiskScore converts a probability to a 0-100 score rounded to one decimal.
// Out-of-range probabilities are clamped; NaN maps to 100.
func RiskScore(probability float64) float64 {
	switch {
	case math.IsNaN(probability):
		return 100
	case probability < 0:
		probability = 0
	case probability > 1:
		probability = 1
	}
	return math.Round(probability*1000) / 10
}

// Categorize maps probability to a score, a category and a recommendation.
func (c *Categorizer) Categorize(probability float64) model.ScoreResult {
	score := RiskScore(probability)
	if math.IsNaN(probability) {
		probability = 1
	}
	probability = math.Min(math.Max(probability, 0), 1)

	category := c.policy.Bands[len(c.policy.Bands)-1].Category
	for _, b := range c.policy.Bands {
		if score >= b.MinScore {
			category = b.Category
			break
		}
	}

	return model.ScoreResult{
		Probability:    probability,
		Score:          score,
		Category:       category,
		Recommendation: c.policy.Recommendations[category],
	}
}

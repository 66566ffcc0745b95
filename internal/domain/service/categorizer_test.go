package service_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/scoring-service/internal/domain/service"
	"github.com/bibbank/scoring-service/internal/domain/valueobject"
)

func TestCategorizer_Categorize(t *testing.T) {
	c := service.NewDefaultCategorizer()

	tests := []struct {
		name           string
		probability    float64
		score          float64
		category       valueobject.RiskCategory
		recommendation valueobject.Recommendation
	}{
		{"zero", 0, 0, valueobject.RiskCategoryFaible, valueobject.RecommendationApprobation},
		{"low", 0.10, 10, valueobject.RiskCategoryFaible, valueobject.RecommendationApprobation},
		{"just below moderate", 0.299, 29.9, valueobject.RiskCategoryFaible, valueobject.RecommendationApprobation},
		{"rounds up into moderate", 0.2999, 30, valueobject.RiskCategoryModere, valueobject.RecommendationRevision},
		{"moderate lower bound", 0.30, 30, valueobject.RiskCategoryModere, valueobject.RecommendationRevision},
		{"just below high", 0.599, 59.9, valueobject.RiskCategoryModere, valueobject.RecommendationRevision},
		{"high lower bound", 0.60, 60, valueobject.RiskCategoryEleve, valueobject.RecommendationRejet},
		{"certain default", 1, 100, valueobject.RiskCategoryEleve, valueobject.RecommendationRejet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Categorize(tt.probability)

			assert.InDelta(t, tt.score, result.Score, 1e-9)
			assert.Equal(t, tt.category, result.Category)
			assert.Equal(t, tt.recommendation, result.Recommendation)
			assert.InDelta(t, tt.probability, result.Probability, 1e-12)
		})
	}
}

func TestCategorizer_ClampsProbability(t *testing.T) {
	c := service.NewDefaultCategorizer()

	below := c.Categorize(-0.2)
	assert.Equal(t, 0.0, below.Probability)
	assert.Equal(t, 0.0, below.Score)
	assert.Equal(t, valueobject.RiskCategoryFaible, below.Category)

	above := c.Categorize(1.7)
	assert.Equal(t, 1.0, above.Probability)
	assert.Equal(t, 100.0, above.Score)
	assert.Equal(t, valueobject.RiskCategoryEleve, above.Category)

	nan := c.Categorize(math.NaN())
	assert.Equal(t, 100.0, nan.Score)
	assert.Equal(t, valueobject.RiskCategoryEleve, nan.Category)
	assert.Equal(t, valueobject.RecommendationRejet, nan.Recommendation)
}

func TestCategorizer_Monotonic(t *testing.T) {
	c := service.NewDefaultCategorizer()

	prev := c.Categorize(0)
	for i := 1; i <= 1000; i++ {
		cur := c.Categorize(float64(i) / 1000)
		require.GreaterOrEqual(t, cur.Score, prev.Score, "p=%v", float64(i)/1000)
		require.GreaterOrEqual(t, cur.Category.Severity(), prev.Category.Severity(), "p=%v", float64(i)/1000)
		require.GreaterOrEqual(t, cur.Recommendation.Severity(), prev.Recommendation.Severity())
		prev = cur
	}
}

func TestRiskScore_Rounding(t *testing.T) {
	assert.Equal(t, 12.3, service.RiskScore(0.12345))
	assert.Equal(t, 52.3, service.RiskScore((0.85+0.60+0.12)/3))
}

func TestNewCategorizer_CustomPolicy(t *testing.T) {
	policy := service.CategoryPolicy{
		Bands: []service.ScoreBand{
			{MinScore: 50, Category: valueobject.RiskCategoryEleve},
			{MinScore: 0, Category: valueobject.RiskCategoryFaible},
		},
		Recommendations: map[valueobject.RiskCategory]valueobject.Recommendation{
			valueobject.RiskCategoryFaible: valueobject.RecommendationApprobation,
			valueobject.RiskCategoryEleve:  valueobject.RecommendationRevision,
		},
	}

	c, err := service.NewCategorizer(policy)
	require.NoError(t, err)
	assert.Equal(t, policy, c.Policy())

	assert.Equal(t, valueobject.RiskCategoryFaible, c.Categorize(0.49).Category)
	result := c.Categorize(0.5)
	assert.Equal(t, valueobject.RiskCategoryEleve, result.Category)
	assert.Equal(t, valueobject.RecommendationRevision, result.Recommendation)
}

func TestCategoryPolicy_Validate(t *testing.T) {
	recs := service.DefaultCategoryPolicy().Recommendations

	tests := []struct {
		name   string
		policy service.CategoryPolicy
	}{
		{
			name:   "no bands",
			policy: service.CategoryPolicy{Recommendations: recs},
		},
		{
			name: "ascending bands",
			policy: service.CategoryPolicy{Recommendations: recs, Bands: []service.ScoreBand{
				{MinScore: 0, Category: valueobject.RiskCategoryFaible},
				{MinScore: 60, Category: valueobject.RiskCategoryEleve},
			}},
		},
		{
			name: "lowest band above zero",
			policy: service.CategoryPolicy{Recommendations: recs, Bands: []service.ScoreBand{
				{MinScore: 60, Category: valueobject.RiskCategoryEleve},
				{MinScore: 10, Category: valueobject.RiskCategoryFaible},
			}},
		},
		{
			name: "severity inverted",
			policy: service.CategoryPolicy{Recommendations: recs, Bands: []service.ScoreBand{
				{MinScore: 60, Category: valueobject.RiskCategoryFaible},
				{MinScore: 0, Category: valueobject.RiskCategoryEleve},
			}},
		},
		{
			name: "missing recommendation",
			policy: service.CategoryPolicy{
				Recommendations: map[valueobject.RiskCategory]valueobject.Recommendation{
					valueobject.RiskCategoryFaible: valueobject.RecommendationApprobation,
				},
				Bands: []service.ScoreBand{
					{MinScore: 60, Category: valueobject.RiskCategoryEleve},
					{MinScore: 0, Category: valueobject.RiskCategoryFaible},
				},
			},
		},
		{
			name: "bound out of range",
			policy: service.CategoryPolicy{Recommendations: recs, Bands: []service.ScoreBand{
				{MinScore: 120, Category: valueobject.RiskCategoryEleve},
				{MinScore: 0, Category: valueobject.RiskCategoryFaible},
			}},
		},
		{
			name: "zero category",
			policy: service.CategoryPolicy{Recommendations: recs, Bands: []service.ScoreBand{
				{MinScore: 0},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.NewCategorizer(tt.policy)
			assert.Error(t, err)
		})
	}

	assert.NoError(t, service.DefaultCategoryPolicy().Validate())
}

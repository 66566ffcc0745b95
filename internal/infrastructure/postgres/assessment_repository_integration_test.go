//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/scoring-service/internal/domain/model"
	"github.com/bibbank/scoring-service/internal/domain/valueobject"
	pgutil "github.com/bibbank/scoring-service/pkg/postgres"
	"github.com/bibbank/scoring-service/pkg/testutil"
)

func TestAssessmentRepository_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Cleanup(t)
	require.Equal(t, uint(1), pc.RunMigrations(t, "../../../migrations"))

	repo := NewAssessmentRepository(pc.Pool)

	first, err := model.NewAssessment(testutil.TestApplicationID1, testutil.TestClientID, "1.0.0", "credit-risk-v1")
	require.NoError(t, err)
	explanation := model.ExplanationAvailable(model.Attributions{
		Method:   "tree_path",
		Baseline: 0.24,
		Output:   0.72,
		Unfavorable: []model.FactorContribution{
			{FeatureName: "defauts_paiement", FeatureValue: 3, RawValue: "3", Impact: 0.31, Description: "Antécédents de défaut"},
		},
		TopK: 5,
	})
	require.NoError(t, first.Record(model.ScoreResult{
		Probability:    0.72,
		Score:          72,
		Category:       valueobject.RiskCategoryEleve,
		Recommendation: valueobject.RecommendationRejet,
	}, &explanation))
	require.NoError(t, repo.Save(ctx, first))

	second, err := model.NewAssessment(testutil.TestApplicationID2, testutil.TestClientID, "1.0.0", "credit-risk-v1")
	require.NoError(t, err)
	require.NoError(t, second.Record(model.ScoreResult{
		Probability:    0.1,
		Score:          10,
		Category:       valueobject.RiskCategoryFaible,
		Recommendation: valueobject.RecommendationApprobation,
	}, nil))
	require.NoError(t, repo.Save(ctx, second))

	t.Run("find by id restores factors", func(t *testing.T) {
		got, err := repo.FindByID(ctx, first.ID())
		require.NoError(t, err)
		assert.Equal(t, first.ApplicationID(), got.ApplicationID())
		assert.Equal(t, valueobject.RiskCategoryEleve, got.Category())
		assert.Equal(t, model.ExplanationStatusComputed, got.ExplanationStatus())
		require.Len(t, got.Factors(), 1)
		assert.Equal(t, "defauts_paiement", got.Factors()[0].FeatureName)
	})

	t.Run("latest by application", func(t *testing.T) {
		got, err := repo.FindLatestByApplicationID(ctx, testutil.TestApplicationID2)
		require.NoError(t, err)
		assert.Equal(t, second.ID(), got.ID())
		assert.Empty(t, got.Factors())
	})

	t.Run("list by client", func(t *testing.T) {
		got, err := repo.ListByClientID(ctx, testutil.TestClientID, 10, 0)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("missing assessment", func(t *testing.T) {
		_, err := repo.FindByID(ctx, testutil.TestClientID)
		testutil.AssertErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("migrations roll back", func(t *testing.T) {
		require.NoError(t, pgutil.RunMigrationsDown(pc.DSN, "../../../migrations"))

		var exists bool
		require.NoError(t, pc.Pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'assessments')").Scan(&exists))
		assert.False(t, exists)
	})
}

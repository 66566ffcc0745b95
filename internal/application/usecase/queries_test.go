package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/scoring-service/internal/application/dto"
	"github.com/bibbank/scoring-service/internal/application/usecase"
	"github.com/bibbank/scoring-service/internal/domain/model"
	"github.com/bibbank/scoring-service/internal/domain/service"
	"github.com/bibbank/scoring-service/internal/infrastructure/ml"
)

func TestPredictDirect_Execute(t *testing.T) {
	uc := usecase.NewPredictDirect(newEngine(t, ml.NewTreeShapley(0)), discardLogger())

	resp, err := uc.Execute(context.Background(), dto.PredictRequest{
		Applicant: lowRiskApplicant(),
		Loan:      mortgage(),
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.10, resp.Result.Probability, 1e-9)
	assert.Equal(t, "faible", resp.Result.Category)
	assert.Equal(t, "1.0.0", resp.ModelVersion)
	require.NotNil(t, resp.Explanation)
	assert.Equal(t, model.ExplanationStatusComputed, resp.Explanation.Status)
	assert.Equal(t, "tree_shapley", resp.Explanation.Method)
}

func TestPredictDirect_ModelNotLoaded(t *testing.T) {
	preparer, err := service.NewFeaturePreparer(service.DefaultFeatureSchema())
	require.NoError(t, err)
	engine, err := service.NewEngine(preparer, nil, nil, nil)
	require.NoError(t, err)

	_, err = usecase.NewPredictDirect(engine, discardLogger()).Execute(context.Background(), dto.PredictRequest{
		Applicant: lowRiskApplicant(),
		Loan:      mortgage(),
	})
	assert.ErrorIs(t, err, model.ErrModelNotLoaded)

	_, err = usecase.NewGetModelInfo(engine).Execute(context.Background())
	assert.ErrorIs(t, err, model.ErrModelState)
}

func TestGetModelInfo_Execute(t *testing.T) {
	uc := usecase.NewGetModelInfo(newEngine(t, ml.NewPathAttributor()))

	resp, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.True(t, resp.Loaded)
	assert.Equal(t, "random_forest", resp.Algorithm)
	assert.Equal(t, "1.0.0", resp.Version)
	assert.Equal(t, "credit-risk-v1", resp.SchemaVersion)
	assert.Equal(t, "tree_path", resp.ExplanationMethod)
	assert.Len(t, resp.Features, 18)
	assert.NotEmpty(t, resp.Importances)
}

func TestGetAssessment_Execute(t *testing.T) {
	applicationID := uuid.New()
	clientID := uuid.New()
	stored := storedAssessment(applicationID, clientID)

	t.Run("by assessment ID", func(t *testing.T) {
		repo := &mockAssessmentRepository{
			findByIDFunc: func(_ context.Context, id uuid.UUID) (*model.Assessment, error) {
				assert.Equal(t, stored.ID(), id)
				return stored, nil
			},
		}
		resp, err := usecase.NewGetAssessment(repo).Execute(context.Background(), dto.GetAssessmentRequest{
			AssessmentID:  stored.ID(),
			ApplicationID: uuid.New(),
		})
		require.NoError(t, err)
		assert.Equal(t, stored.ID(), resp.ID)
		assert.Zero(t, repo.findLatestCalls)
	})

	t.Run("by application ID", func(t *testing.T) {
		repo := &mockAssessmentRepository{
			findLatestFunc: func(context.Context, uuid.UUID) (*model.Assessment, error) { return stored, nil },
		}
		resp, err := usecase.NewGetAssessment(repo).Execute(context.Background(), dto.GetAssessmentRequest{
			ApplicationID: applicationID,
		})
		require.NoError(t, err)
		assert.Equal(t, applicationID, resp.ApplicationID)
		assert.Equal(t, "modere", resp.Result.Category)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := usecase.NewGetAssessment(&mockAssessmentRepository{}).Execute(context.Background(),
			dto.GetAssessmentRequest{ApplicationID: applicationID})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("requires an identifier", func(t *testing.T) {
		_, err := usecase.NewGetAssessment(&mockAssessmentRepository{}).Execute(context.Background(),
			dto.GetAssessmentRequest{})
		assert.ErrorIs(t, err, model.ErrInput)
	})
}

func TestListAssessments_Execute(t *testing.T) {
	clientID := uuid.New()

	t.Run("applies the default page size", func(t *testing.T) {
		repo := &mockAssessmentRepository{
			listByClientIDFunc: func(_ context.Context, id uuid.UUID, limit, offset int) ([]*model.Assessment, error) {
				assert.Equal(t, clientID, id)
				assert.Equal(t, usecase.DefaultPageSize, limit)
				assert.Zero(t, offset)
				return []*model.Assessment{
					storedAssessment(uuid.New(), clientID),
					storedAssessment(uuid.New(), clientID),
				}, nil
			},
		}
		resp, err := usecase.NewListAssessments(repo).Execute(context.Background(), dto.ListAssessmentsRequest{
			ClientID: clientID,
			Offset:   -3,
		})
		require.NoError(t, err)
		assert.Len(t, resp.Assessments, 2)
	})

	t.Run("repository failure", func(t *testing.T) {
		boom := errors.New("timeout")
		repo := &mockAssessmentRepository{
			listByClientIDFunc: func(context.Context, uuid.UUID, int, int) ([]*model.Assessment, error) {
				return nil, fmt.Errorf("query: %w", boom)
			},
		}
		_, err := usecase.NewListAssessments(repo).Execute(context.Background(), dto.ListAssessmentsRequest{ClientID: clientID})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("requires a client", func(t *testing.T) {
		_, err := usecase.NewListAssessments(&mockAssessmentRepository{}).Execute(context.Background(), dto.ListAssessmentsRequest{})
		assert.ErrorIs(t, err, model.ErrInput)
	})
}

package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bibbank/scoring-service/internal/application/dto"
	"github.com/bibbank/scoring-service/internal/domain/model"
	"github.com/bibbank/scoring-service/internal/domain/port"
)

// GetAssessment is the use case for retrieving an existing assessment.
type GetAssessment struct {
	repo port.AssessmentRepository
}

// NewGetAssessment creates a new GetAssessment use case.
func NewGetAssessment(repo port.AssessmentRepository) *GetAssessment {
	return &GetAssessment{repo: repo}
}

// Execute retrieves an assessment by ID, or the latest one of an application.
func (uc *GetAssessment) Execute(ctx context.Context, req dto.GetAssessmentRequest) (dto.AssessmentResponse, error) {
	var (
		assessment *model.Assessment
		err        error
	)
	switch {
	case req.AssessmentID != uuid.Nil:
		assessment, err = uc.repo.FindByID(ctx, req.AssessmentID)
	case req.ApplicationID != uuid.Nil:
		assessment, err = uc.repo.FindLatestByApplicationID(ctx, req.ApplicationID)
	default:
		return dto.AssessmentResponse{}, fmt.Errorf("%w: assessment or application ID is required", model.ErrInput)
	}
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to find assessment: %w", err)
	}

	return dto.FromModel(assessment), nil
}

// ListAssessments is the use case for a client's score history.
type ListAssessments struct {
	repo port.AssessmentRepository
}

// NewListAssessments creates a new ListAssessments use case.
func NewListAssessments(repo port.AssessmentRepository) *ListAssessments {
	return &ListAssessments{repo: repo}
}

// DefaultPageSize applies when a list request sets no limit.
const DefaultPageSize = 20

// Execute lists a client's assessments, newest first.
func (uc *ListAssessments) Execute(ctx context.Context, req dto.ListAssessmentsRequest) (dto.ListAssessmentsResponse, error) {
	if req.ClientID == uuid.Nil {
		return dto.ListAssessmentsResponse{}, fmt.Errorf("%w: client ID is required", model.ErrInput)
	}
	if req.Limit <= 0 {
		req.Limit = DefaultPageSize
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	assessments, err := uc.repo.ListByClientID(ctx, req.ClientID, req.Limit, req.Offset)
	if err != nil {
		return dto.ListAssessmentsResponse{}, fmt.Errorf("failed to list assessments: %w", err)
	}

	resp := dto.ListAssessmentsResponse{Assessments: make([]dto.AssessmentResponse, 0, len(assessments))}
	for _, a := range assessments {
		resp.Assessments = append(resp.Assessments, dto.FromModel(a))
	}
	return resp, nil
}

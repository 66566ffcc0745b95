package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/scoring-service/internal/application/dto"
	"github.com/bibbank/scoring-service/internal/application/usecase"
	"github.com/bibbank/scoring-service/internal/domain/model"
)

// Compile-time assertion that RiskScoringHandler implements RiskScoringServiceServer.
var _ RiskScoringServiceServer = (*RiskScoringHandler)(nil)

// UseCases groups the application use cases served over gRPC.
type UseCases struct {
	Assess   *usecase.AssessApplication
	Get      *usecase.GetAssessment
	List     *usecase.ListAssessments
	Explain  *usecase.ExplainAssessment
	Simulate *usecase.SimulateScenarios
	Predict  *usecase.PredictDirect
	Model    *usecase.GetModelInfo
}

// RiskScoringHandler implements the gRPC RiskScoringServiceServer interface.
type RiskScoringHandler struct {
	UnimplementedRiskScoringServiceServer
	uc     UseCases
	logger *slog.Logger
}

// NewRiskScoringHandler creates a new gRPC handler.
func NewRiskScoringHandler(uc UseCases, logger *slog.Logger) *RiskScoringHandler {
	return &RiskScoringHandler{uc: uc, logger: logger}
}

// toStatus maps application errors to gRPC status codes. Unclassified
// errors are logged and hidden behind a generic message.
func (h *RiskScoringHandler) toStatus(method string, err error) error {
	switch {
	case errors.Is(err, model.ErrInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, model.ErrModelState):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	h.logger.Error("request failed",
		slog.String("method", method),
		slog.String("error", err.Error()),
	)
	return status.Error(codes.Internal, "internal error")
}

// AssessApplication handles an application scoring request.
func (h *RiskScoringHandler) AssessApplication(ctx context.Context, req *AssessApplicationRequest) (*AssessApplicationResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	applicationID, err := parseUUID("application_id", req.ApplicationID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	clientID, err := parseUUID("client_id", req.ClientID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	applicant, loan, err := recordsFromMsg(req.Demandeur, req.Credit)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	h.logger.Info("assessing application",
		slog.String("application_id", applicationID.String()),
		slog.Bool("force_recalcul", req.ForceRecalcul),
	)

	result, err := h.uc.Assess.Execute(ctx, dto.AssessRequest{
		ApplicationID:       applicationID,
		ClientID:            clientID,
		Applicant:           applicant,
		Loan:                loan,
		ForceRecalculation:  req.ForceRecalcul,
		IncludeExplanations: req.InclureExplications,
	})
	if err != nil {
		return nil, h.toStatus("AssessApplication", err)
	}

	return &AssessApplicationResponse{Assessment: &result}, nil
}

// GetAssessment handles a get assessment request.
func (h *RiskScoringHandler) GetAssessment(ctx context.Context, req *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	var query dto.GetAssessmentRequest
	var err error
	switch {
	case req.ID != "":
		query.AssessmentID, err = parseUUID("id", req.ID)
	case req.ApplicationID != "":
		query.ApplicationID, err = parseUUID("application_id", req.ApplicationID)
	default:
		return nil, status.Error(codes.InvalidArgument, "id or application_id is required")
	}
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	result, err := h.uc.Get.Execute(ctx, query)
	if err != nil {
		return nil, h.toStatus("GetAssessment", err)
	}

	return &GetAssessmentResponse{Assessment: &result}, nil
}

// ListAssessments handles a client history request.
func (h *RiskScoringHandler) ListAssessments(ctx context.Context, req *ListAssessmentsRequest) (*ListAssessmentsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	clientID, err := parseUUID("client_id", req.ClientID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	result, err := h.uc.List.Execute(ctx, dto.ListAssessmentsRequest{
		ClientID: clientID,
		Limit:    int(req.PageSize),
		Offset:   int(req.Offset),
	})
	if err != nil {
		return nil, h.toStatus("ListAssessments", err)
	}

	return &ListAssessmentsResponse{Assessments: result.Assessments}, nil
}

// ExplainScore handles an explanation request.
func (h *RiskScoringHandler) ExplainScore(ctx context.Context, req *ExplainScoreRequest) (*ExplainScoreResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	applicant, loan, err := recordsFromMsg(req.Demandeur, req.Credit)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	result, err := h.uc.Explain.Execute(ctx, dto.ExplainRequest{
		Applicant: applicant,
		Loan:      loan,
		Format:    req.Format,
	})
	if err != nil {
		return nil, h.toStatus("ExplainScore", err)
	}

	return &ExplainScoreResponse{Explanation: &result}, nil
}

// SimulateScenarios handles a what-if request.
func (h *RiskScoringHandler) SimulateScenarios(ctx context.Context, req *SimulateScenariosRequest) (*SimulateScenariosResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	applicant, loan, err := recordsFromMsg(req.Demandeur, req.Credit)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	scenarios := make([]model.ScenarioDefinition, 0, len(req.Scenarios))
	for _, s := range req.Scenarios {
		scenarios = append(scenarios, model.ScenarioDefinition{
			Name:        s.Nom,
			Description: s.Description,
			Overrides:   s.Parametres,
		})
	}

	result, err := h.uc.Simulate.Execute(ctx, dto.SimulateRequest{
		Applicant:           applicant,
		Loan:                loan,
		Scenarios:           scenarios,
		IncludeExplanations: req.InclureExplications,
	})
	if err != nil {
		return nil, h.toStatus("SimulateScenarios", err)
	}

	return &SimulateScenariosResponse{Simulation: &result}, nil
}

// PredictDirect handles a prediction request that bypasses storage.
func (h *RiskScoringHandler) PredictDirect(ctx context.Context, req *PredictDirectRequest) (*PredictDirectResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	applicant, loan, err := recordsFromMsg(req.Demandeur, req.Credit)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	result, err := h.uc.Predict.Execute(ctx, dto.PredictRequest{Applicant: applicant, Loan: loan})
	if err != nil {
		return nil, h.toStatus("PredictDirect", err)
	}

	return &PredictDirectResponse{Prediction: &result}, nil
}

// GetModelInfo handles a model metadata request.
func (h *RiskScoringHandler) GetModelInfo(ctx context.Context, _ *GetModelInfoRequest) (*GetModelInfoResponse, error) {
	result, err := h.uc.Model.Execute(ctx)
	if err != nil {
		return nil, h.toStatus("GetModelInfo", err)
	}
	return &GetModelInfoResponse{Model: &result}, nil
}

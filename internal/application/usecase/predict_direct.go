package usecase

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/scoring-service/internal/application/dto"
	"github.com/bibbank/scoring-service/internal/domain/service"
)

// PredictDirect scores records without persisting anything. It is meant
// for testing the model.
type PredictDirect struct {
	engine *service.Engine
	logger *slog.Logger
	tracer trace.Tracer
}

// NewPredictDirect creates a new PredictDirect use case.
func NewPredictDirect(engine *service.Engine, logger *slog.Logger) *PredictDirect {
	return &PredictDirect{engine: engine, logger: logger, tracer: tracer()}
}

// Execute scores and explains the records.
func (uc *PredictDirect) Execute(ctx context.Context, req dto.PredictRequest) (dto.PredictResponse, error) {
	_, span := uc.tracer.Start(ctx, "PredictDirect.Execute")
	defer span.End()

	info, err := uc.engine.ModelInfo()
	if err != nil {
		return dto.PredictResponse{}, fail(span, err)
	}

	result, explanation, err := uc.engine.ScoreWithExplanation(req.Applicant, req.Loan)
	if err != nil {
		return dto.PredictResponse{}, fail(span, err)
	}

	uc.logger.Debug("direct prediction",
		slog.Float64("score", result.Score),
		slog.String("categorie", result.Category.String()),
	)

	return dto.PredictResponse{
		Result:       dto.FromScoreResult(result),
		ModelVersion: info.Version,
		Explanation:  dto.FromExplanation(explanation),
	}, nil
}

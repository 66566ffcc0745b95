package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/scoring-service/internal/application/dto"
	"github.com/bibbank/scoring-service/internal/domain/model"
	"github.com/bibbank/scoring-service/internal/domain/port"
	"github.com/bibbank/scoring-service/internal/domain/service"
)

// AssessApplication is the use case for scoring a credit application.
type AssessApplication struct {
	engine    *service.Engine
	repo      port.AssessmentRepository
	cache     port.ScoreCache
	publisher port.EventPublisher
	metrics   port.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewAssessApplication creates a new AssessApplication use case. cache and
// metrics may be nil.
func NewAssessApplication(
	engine *service.Engine,
	repo port.AssessmentRepository,
	cache port.ScoreCache,
	publisher port.EventPublisher,
	metrics port.Metrics,
	logger *slog.Logger,
) *AssessApplication {
	if metrics == nil {
		metrics = port.NopMetrics{}
	}
	return &AssessApplication{
		engine:    engine,
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		tracer:    tracer(),
	}
}

// Execute returns the existing score of the application unless a
// recalculation is forced. Otherwise it scores the records, persists the
// assessment, refreshes the cache and publishes the domain events.
func (uc *AssessApplication) Execute(ctx context.Context, req dto.AssessRequest) (dto.AssessmentResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "AssessApplication.Execute", trace.WithAttributes(
		attribute.String("application.id", req.ApplicationID.String()),
		attribute.Bool("scoring.force_recalculation", req.ForceRecalculation),
	))
	defer span.End()

	if req.ApplicationID == uuid.Nil || req.ClientID == uuid.Nil {
		return dto.AssessmentResponse{}, fail(span, fmt.Errorf("%w: application and client IDs are required", model.ErrInput))
	}

	// 1. Reuse an existing score unless asked not to.
	if !req.ForceRecalculation {
		resp, found, err := uc.existing(ctx, req.ApplicationID)
		if err != nil {
			return dto.AssessmentResponse{}, fail(span, err)
		}
		if found {
			span.SetAttributes(attribute.Bool("scoring.reused", true))
			return resp, nil
		}
	}

	info, err := uc.engine.ModelInfo()
	if err != nil {
		return dto.AssessmentResponse{}, fail(span, err)
	}

	// 2. Score, and explain when requested.
	start := time.Now()
	var (
		result      model.ScoreResult
		explanation *model.Explanation
	)
	if req.IncludeExplanations {
		r, e, err := uc.engine.ScoreWithExplanation(req.Applicant, req.Loan)
		if err != nil {
			return dto.AssessmentResponse{}, fail(span, err)
		}
		result, explanation = r, &e
		if !e.Available() {
			uc.metrics.ExplanationUnavailable(ctx, uc.engine.ExplanationMethod())
			uc.logger.Warn("explanation unavailable",
				slog.String("application_id", req.ApplicationID.String()),
				slog.String("reason", e.UnavailableReason()),
			)
		}
	} else {
		result, err = uc.engine.Score(req.Applicant, req.Loan)
		if err != nil {
			return dto.AssessmentResponse{}, fail(span, err)
		}
	}
	uc.metrics.ScoreRecorded(ctx, result.Category.String(), time.Since(start))
	span.SetAttributes(
		attribute.Float64("scoring.score", result.Score),
		attribute.String("scoring.category", result.Category.String()),
	)

	// 3. Build the aggregate.
	assessment, err := model.NewAssessment(req.ApplicationID, req.ClientID, info.Version, uc.engine.Schema().Version)
	if err != nil {
		return dto.AssessmentResponse{}, fail(span, fmt.Errorf("failed to create assessment: %w", err))
	}
	if err := assessment.Record(result, explanation); err != nil {
		return dto.AssessmentResponse{}, fail(span, fmt.Errorf("failed to record score: %w", err))
	}

	// 4. Persist the assessment.
	if err := uc.repo.Save(ctx, assessment); err != nil {
		return dto.AssessmentResponse{}, fail(span, fmt.Errorf("failed to save assessment: %w", err))
	}

	// 5. Refresh the cache. A cache failure only costs a later lookup.
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, assessment.Snapshot()); err != nil {
			uc.logger.Warn("failed to cache score",
				slog.String("application_id", req.ApplicationID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	// 6. Publish domain events.
	events := assessment.DomainEvents()
	if len(events) > 0 {
		if err := uc.publisher.Publish(ctx, events...); err != nil {
			return dto.AssessmentResponse{}, fail(span, fmt.Errorf("failed to publish events: %w", err))
		}
	}

	uc.logger.Info("application scored",
		slog.String("application_id", req.ApplicationID.String()),
		slog.String("assessment_id", assessment.ID().String()),
		slog.Float64("score", result.Score),
		slog.String("categorie", result.Category.String()),
		slog.String("recommandation", result.Recommendation.String()),
	)

	resp := dto.FromModel(assessment)
	if explanation != nil {
		resp.Explanation = dto.FromExplanation(*explanation)
	}
	return resp, nil
}

// existing looks for a stored score, cache first.
func (uc *AssessApplication) existing(ctx context.Context, applicationID uuid.UUID) (dto.AssessmentResponse, bool, error) {
	if uc.cache != nil {
		snapshot, err := uc.cache.Get(ctx, applicationID)
		switch {
		case err == nil:
			uc.metrics.CacheLookup(ctx, true)
			return dto.FromSnapshot(snapshot), true, nil
		case errors.Is(err, model.ErrNotFound):
			uc.metrics.CacheLookup(ctx, false)
		default:
			uc.logger.Warn("score cache lookup failed",
				slog.String("application_id", applicationID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	assessment, err := uc.repo.FindLatestByApplicationID(ctx, applicationID)
	if errors.Is(err, model.ErrNotFound) {
		return dto.AssessmentResponse{}, false, nil
	}
	if err != nil {
		return dto.AssessmentResponse{}, false, fmt.Errorf("failed to find assessment: %w", err)
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, assessment.Snapshot()); err != nil {
			uc.logger.Warn("failed to cache score",
				slog.String("application_id", applicationID.String()),
				slog.String("error", err.Error()),
			)
		}
	}
	return dto.FromModel(assessment), true, nil
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/scoring-service/internal/application/dto"
	"github.com/bibbank/scoring-service/internal/domain/model"
	"github.com/bibbank/scoring-service/internal/domain/port"
	"github.com/bibbank/scoring-service/internal/domain/service"
)

// SimulateScenarios is the use case for what-if analysis on an application.
type SimulateScenarios struct {
	engine  *service.Engine
	metrics port.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewSimulateScenarios creates a new SimulateScenarios use case.
func NewSimulateScenarios(engine *service.Engine, metrics port.Metrics, logger *slog.Logger) *SimulateScenarios {
	if metrics == nil {
		metrics = port.NopMetrics{}
	}
	return &SimulateScenarios{engine: engine, metrics: metrics, logger: logger, tracer: tracer()}
}

// Execute scores every scenario against the base records. Failed scenarios
// are reported individually; only a base failure fails the call.
func (uc *SimulateScenarios) Execute(ctx context.Context, req dto.SimulateRequest) (dto.SimulateResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "SimulateScenarios.Execute",
		trace.WithAttributes(attribute.Int("scoring.scenarios", len(req.Scenarios))))
	defer span.End()

	if len(req.Scenarios) == 0 {
		return dto.SimulateResponse{}, fail(span, fmt.Errorf("%w: at least one scenario is required", model.ErrInput))
	}

	report, err := uc.engine.Simulate(ctx, req.Applicant, req.Loan, req.Scenarios,
		service.WithScenarioExplanations(req.IncludeExplanations))
	if err != nil {
		return dto.SimulateResponse{}, fail(span, err)
	}

	failed := len(report.Failed())
	uc.metrics.ScenariosSimulated(ctx, len(report.Outcomes)-failed, failed)
	if failed > 0 {
		uc.logger.Warn("some scenarios failed",
			slog.Int("failed", failed),
			slog.Int("total", len(report.Outcomes)),
		)
	}

	return dto.FromSimulationReport(report), nil
}

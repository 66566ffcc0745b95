package usecase

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/scoring-service/internal/application/dto"
	"github.com/bibbank/scoring-service/internal/domain/model"
	"github.com/bibbank/scoring-service/internal/domain/port"
	"github.com/bibbank/scoring-service/internal/domain/service"
	"github.com/bibbank/scoring-service/internal/domain/valueobject"
)

const (
	// MaxWaterfallBars is the number of factors drawn individually; the
	// rest are merged into one remainder bar.
	MaxWaterfallBars = 15

	textSummaryFactors  = 3
	textDetailedFactors = 2
)

// ExplainAssessment is the use case for explaining a score in a given format.
type ExplainAssessment struct {
	engine  *service.Engine
	metrics port.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewExplainAssessment creates a new ExplainAssessment use case.
func NewExplainAssessment(engine *service.Engine, metrics port.Metrics, logger *slog.Logger) *ExplainAssessment {
	if metrics == nil {
		metrics = port.NopMetrics{}
	}
	return &ExplainAssessment{engine: engine, metrics: metrics, logger: logger, tracer: tracer()}
}

// Execute scores the records and renders their explanation. texte yields
// the narrative, graphique the waterfall series, complet both plus every
// contribution. An unavailable explanation is reported in the response,
// not as an error.
func (uc *ExplainAssessment) Execute(ctx context.Context, req dto.ExplainRequest) (dto.ExplainResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "ExplainAssessment.Execute",
		trace.WithAttributes(attribute.String("scoring.explanation_format", req.Format)))
	defer span.End()

	format, err := valueobject.ExplanationFormatFromString(req.Format)
	if err != nil {
		return dto.ExplainResponse{}, fail(span, fmt.Errorf("%w: %v", model.ErrInput, err))
	}

	result, explanation, err := uc.engine.ScoreWithExplanation(req.Applicant, req.Loan)
	if err != nil {
		return dto.ExplainResponse{}, fail(span, err)
	}

	resp := dto.ExplainResponse{
		Result:      dto.FromScoreResult(result),
		Format:      format.String(),
		Favorable:   []dto.FactorDTO{},
		Unfavorable: []dto.FactorDTO{},
	}

	attr, ok := explanation.Attributions()
	if !ok {
		uc.metrics.ExplanationUnavailable(ctx, uc.engine.ExplanationMethod())
		uc.logger.Warn("explanation unavailable", slog.String("reason", explanation.UnavailableReason()))
		resp.Status = model.ExplanationStatusUnavailable
		resp.Reason = explanation.UnavailableReason()
	} else {
		resp.Status = model.ExplanationStatusComputed
		resp.Method = attr.Method
		resp.Favorable = dto.FromFactors(attr.KeyFavorable())
		resp.Unfavorable = dto.FromFactors(attr.KeyUnfavorable())
	}

	if format.IncludesText() {
		resp.Text = RenderExplanationText(result, explanation)
	}
	if format.IncludesChart() && ok {
		chart := BuildWaterfall(attr, MaxWaterfallBars)
		resp.Chart = &chart
	}
	if format.Equal(valueobject.FormatComplet) && ok {
		resp.Contributions = dto.FromFactors(attr.Contributions)
	}

	return resp, nil
}

// RenderExplanationText writes the narrative shown to credit officers.
func RenderExplanationText(result model.ScoreResult, explanation model.Explanation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Score de risque: %.1f%%\n", result.Score)
	fmt.Fprintf(&b, "Catégorie: %s\n", result.Category.Label())
	fmt.Fprintf(&b, "Recommandation: %s\n", result.Recommendation.String())
	fmt.Fprintf(&b, "%s\n", result.Justification())

	attr, ok := explanation.Attributions()
	if !ok {
		fmt.Fprintf(&b, "\nExplications indisponibles: %s\n", explanation.UnavailableReason())
		return b.String()
	}

	favorable := attr.KeyFavorable()
	unfavorable := attr.KeyUnfavorable()

	if len(favorable) > 0 {
		b.WriteString("\nFacteurs réduisant le risque:\n")
		for i, f := range firstN(favorable, textSummaryFactors) {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, f.Description)
		}
	}
	if len(unfavorable) > 0 {
		b.WriteString("\nFacteurs augmentant le risque:\n")
		for i, f := range firstN(unfavorable, textSummaryFactors) {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, f.Description)
		}
	}

	if len(favorable) == 0 && len(unfavorable) == 0 {
		return b.String()
	}

	fmt.Fprintf(&b, "\nAnalyse détaillée (%s):\n", attr.Method)
	if len(favorable) > 0 {
		b.WriteString("Principaux contributeurs positifs:\n")
		for _, f := range firstN(favorable, textDetailedFactors) {
			fmt.Fprintf(&b, "  - %s (impact: %.4f)\n", f.Description, f.Impact)
		}
	}
	if len(unfavorable) > 0 {
		b.WriteString("Principaux contributeurs négatifs:\n")
		for _, f := range firstN(unfavorable, textDetailedFactors) {
			fmt.Fprintf(&b, "  - %s (impact: %.4f)\n", f.Description, f.Impact)
		}
	}
	return b.String()
}

// BuildWaterfall orders non-zero contributions by absolute impact and
// chains them from the baseline. Beyond maxBars factors, the remainder is
// merged into a single bar so that the last bar still ends at the output.
func BuildWaterfall(attr *model.Attributions, maxBars int) dto.WaterfallChart {
	factors := make([]model.FactorContribution, 0, len(attr.Contributions))
	for _, c := range attr.Contributions {
		if c.Impact != 0 {
			factors = append(factors, c)
		}
	}
	slices.SortStableFunc(factors, func(a, b model.FactorContribution) int {
		return cmp.Compare(math.Abs(b.Impact), math.Abs(a.Impact))
	})

	chart := dto.WaterfallChart{
		Baseline: attr.Baseline,
		Output:   attr.Output,
		Bars:     make([]dto.WaterfallBar, 0, min(len(factors), maxBars+1)),
	}

	level := attr.Baseline
	for i, f := range factors {
		if maxBars > 0 && i == maxBars {
			var rest float64
			for _, r := range factors[i:] {
				rest += r.Impact
			}
			chart.Bars = append(chart.Bars, dto.WaterfallBar{
				Label:  fmt.Sprintf("Autres facteurs (%d)", len(factors)-i),
				Impact: rest,
				Start:  level,
				End:    level + rest,
			})
			break
		}
		label := f.Description
		if f.RawValue != "" {
			label = fmt.Sprintf("%s = %s", f.Description, f.RawValue)
		}
		chart.Bars = append(chart.Bars, dto.WaterfallBar{
			Label:   label,
			Feature: f.FeatureName,
			Impact:  f.Impact,
			Start:   level,
			End:     level + f.Impact,
		})
		level += f.Impact
	}
	return chart
}

func firstN(s []model.FactorContribution, n int) []model.FactorContribution {
	if len(s) > n {
		return s[:n]
	}
	return s
}

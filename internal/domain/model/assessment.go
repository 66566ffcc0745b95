package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/scoring-service/internal/domain/event"
	"github.com/bibbank/scoring-service/internal/domain/valueobject"
	"github.com/bibbank/scoring-service/pkg/events"
)

// Explanation statuses stored alongside an assessment.
const (
	ExplanationStatusSkipped     = "non_demandee"
	ExplanationStatusComputed    = "disponible"
	ExplanationStatusUnavailable = "indisponible"
)

// Assessment is the aggregate root for one scoring of a credit application.
type Assessment struct {
	// pending holds events raised since the last DomainEvents call.
	pending []events.DomainEvent

	assessedAt        time.Time
	createdAt         time.Time
	updatedAt         time.Time
	category          valueobject.RiskCategory
	recommendation    valueobject.Recommendation
	modelVersion      string
	schemaVersion     string
	explanationStatus string
	explanationReason string
	factors           []FactorContribution
	probability       float64
	score             float64
	version           int
	applicationID     uuid.UUID
	clientID          uuid.UUID
	id                uuid.UUID
}

// NewAssessment creates an unscored assessment for a credit application at
// version 0. Call Record to attach a score; the first score is version 1.
func NewAssessment(applicationID, clientID uuid.UUID, modelVersion, schemaVersion string) (*Assessment, error) {
	if applicationID == uuid.Nil {
		return nil, fmt.Errorf("%w: application ID is required", ErrInput)
	}
	if clientID == uuid.Nil {
		return nil, fmt.Errorf("%w: client ID is required", ErrInput)
	}
	if modelVersion == "" {
		return nil, fmt.Errorf("model version is required")
	}

	now := time.Now().UTC()

	return &Assessment{
		id:                uuid.New(),
		applicationID:     applicationID,
		clientID:          clientID,
		modelVersion:      modelVersion,
		schemaVersion:     schemaVersion,
		explanationStatus: ExplanationStatusSkipped,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

// Record applies a score and an optional explanation to the assessment and
// raises ScoreCalculated, plus HighRiskDetected for the eleve category.
func (a *Assessment) Record(result ScoreResult, explanation *Explanation) error {
	if result.Score < 0 || result.Score > 100 {
		return fmt.Errorf("risk score must be between 0 and 100, got %v", result.Score)
	}
	if result.Category.IsZero() || result.Recommendation.IsZero() {
		return fmt.Errorf("score result is not categorized")
	}

	a.probability = result.Probability
	a.score = result.Score
	a.category = result.Category
	a.recommendation = result.Recommendation
	a.factors = nil
	a.explanationReason = ""
	a.explanationStatus = ExplanationStatusSkipped

	if explanation != nil {
		if attr, ok := explanation.Attributions(); ok {
			a.explanationStatus = ExplanationStatusComputed
			a.factors = append(append([]FactorContribution{}, attr.KeyUnfavorable()...), attr.KeyFavorable()...)
		} else {
			a.explanationStatus = ExplanationStatusUnavailable
			a.explanationReason = explanation.UnavailableReason()
		}
	}

	a.assessedAt = time.Now().UTC()
	a.updatedAt = a.assessedAt
	a.version++

	a.pending = append(a.pending, event.NewScoreCalculated(
		a.id, a.applicationID, a.clientID,
		a.probability, a.score,
		a.category.String(), a.recommendation.String(), a.modelVersion,
		a.assessedAt,
	))

	if a.category.Equal(valueobject.RiskCategoryEleve) {
		a.pending = append(a.pending, event.NewHighRiskDetected(
			a.id, a.applicationID, a.clientID,
			a.score, a.unfavorableFactorNames(), a.assessedAt,
		))
	}

	return nil
}

func (a *Assessment) unfavorableFactorNames() []string {
	names := make([]string, 0, len(a.factors))
	for _, f := range a.factors {
		if f.Impact > 0 {
			names = append(names, f.FeatureName)
		}
	}
	return names
}

// Reconstruct rebuilds an Assessment from persisted data (no validation, no events).
func Reconstruct(
	id, applicationID, clientID uuid.UUID,
	probability, score float64,
	category valueobject.RiskCategory,
	recommendation valueobject.Recommendation,
	modelVersion, schemaVersion string,
	explanationStatus, explanationReason string,
	factors []FactorContribution,
	assessedAt time.Time,
	version int,
	createdAt, updatedAt time.Time,
) *Assessment {
	return &Assessment{
		id:                id,
		applicationID:     applicationID,
		clientID:          clientID,
		probability:       probability,
		score:             score,
		category:          category,
		recommendation:    recommendation,
		modelVersion:      modelVersion,
		schemaVersion:     schemaVersion,
		explanationStatus: explanationStatus,
		explanationReason: explanationReason,
		factors:           factors,
		assessedAt:        assessedAt,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// --- Accessors ---

func (a *Assessment) ID() uuid.UUID                              { return a.id }
func (a *Assessment) ApplicationID() uuid.UUID                   { return a.applicationID }
func (a *Assessment) ClientID() uuid.UUID                        { return a.clientID }
func (a *Assessment) Probability() float64                       { return a.probability }
func (a *Assessment) Score() float64                             { return a.score }
func (a *Assessment) Category() valueobject.RiskCategory         { return a.category }
func (a *Assessment) Recommendation() valueobject.Recommendation { return a.recommendation }
func (a *Assessment) ModelVersion() string                       { return a.modelVersion }
func (a *Assessment) SchemaVersion() string                      { return a.schemaVersion }
func (a *Assessment) ExplanationStatus() string                  { return a.explanationStatus }
func (a *Assessment) ExplanationReason() string                  { return a.explanationReason }
func (a *Assessment) Factors() []FactorContribution              { return a.factors }
func (a *Assessment) AssessedAt() time.Time                      { return a.assessedAt }
func (a *Assessment) Version() int                               { return a.version }
func (a *Assessment) CreatedAt() time.Time                       { return a.createdAt }
func (a *Assessment) UpdatedAt() time.Time                       { return a.updatedAt }

// Result returns the stored score as a ScoreResult.
func (a *Assessment) Result() ScoreResult {
	return ScoreResult{
		Probability:    a.probability,
		Score:          a.score,
		Category:       a.category,
		Recommendation: a.recommendation,
	}
}

// Snapshot returns the cacheable form of the stored score.
func (a *Assessment) Snapshot() ScoreSnapshot {
	return ScoreSnapshot{
		AssessmentID:      a.id,
		ApplicationID:     a.applicationID,
		ClientID:          a.clientID,
		Result:            a.Result(),
		ModelVersion:      a.modelVersion,
		SchemaVersion:     a.schemaVersion,
		ExplanationStatus: a.explanationStatus,
		ExplanationReason: a.explanationReason,
		Factors:           append([]FactorContribution(nil), a.factors...),
		AssessedAt:        a.assessedAt,
		Version:           a.version,
	}
}

// DomainEvents returns all accumulated domain events and clears them.
func (a *Assessment) DomainEvents() []events.DomainEvent {
	raised := a.pending
	a.pending = nil
	return raised
}

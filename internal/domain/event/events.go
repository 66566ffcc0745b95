package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/scoring-service/pkg/events"
)

const (
	// AggregateTypeAssessment names the aggregate that raises scoring events.
	AggregateTypeAssessment = "Assessment"

	// EventTypeScoreCalculated is emitted every time an application is scored.
	EventTypeScoreCalculated = "scoring.score.calculated"

	// EventTypeHighRiskDetected is emitted when a score falls in the eleve category.
	EventTypeHighRiskDetected = "scoring.high_risk.detected"
)

// ScoreCalculated is published when a credit application has been scored.
type ScoreCalculated struct {
	events.BaseEvent
	AssessmentID   uuid.UUID `json:"assessment_id"`
	ApplicationID  uuid.UUID `json:"application_id"`
	ClientID       uuid.UUID `json:"client_id"`
	Probability    float64   `json:"probabilite_defaut"`
	Score          float64   `json:"score"`
	Category       string    `json:"categorie_risque"`
	Recommendation string    `json:"recommandation"`
	ModelVersion   string    `json:"version_modele"`
	CalculatedAt   time.Time `json:"calculated_at"`
}

// NewScoreCalculated builds a ScoreCalculated event.
func NewScoreCalculated(
	assessmentID, applicationID, clientID uuid.UUID,
	probability, score float64,
	category, recommendation, modelVersion string,
	calculatedAt time.Time,
) ScoreCalculated {
	return ScoreCalculated{
		BaseEvent:      events.NewBaseEvent(EventTypeScoreCalculated, assessmentID, AggregateTypeAssessment, calculatedAt),
		AssessmentID:   assessmentID,
		ApplicationID:  applicationID,
		ClientID:       clientID,
		Probability:    probability,
		Score:          score,
		Category:       category,
		Recommendation: recommendation,
		ModelVersion:   modelVersion,
		CalculatedAt:   calculatedAt,
	}
}

// HighRiskDetected is published when an application lands in the eleve
// category, so that downstream credit officers can be alerted.
type HighRiskDetected struct {
	events.BaseEvent
	AssessmentID  uuid.UUID `json:"assessment_id"`
	ApplicationID uuid.UUID `json:"application_id"`
	ClientID      uuid.UUID `json:"client_id"`
	Score         float64   `json:"score"`
	KeyFactors    []string  `json:"facteurs_cles"`
	DetectedAt    time.Time `json:"detected_at"`
}

// NewHighRiskDetected builds a HighRiskDetected event.
func NewHighRiskDetected(
	assessmentID, applicationID, clientID uuid.UUID,
	score float64,
	keyFactors []string,
	detectedAt time.Time,
) HighRiskDetected {
	return HighRiskDetected{
		BaseEvent:     events.NewBaseEvent(EventTypeHighRiskDetected, assessmentID, AggregateTypeAssessment, detectedAt),
		AssessmentID:  assessmentID,
		ApplicationID: applicationID,
		ClientID:      clientID,
		Score:         score,
		KeyFactors:    keyFactors,
		DetectedAt:    detectedAt,
	}
}

package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/scoring-service/internal/domain/model"
)

// AssessRequest is the input DTO for the AssessApplication use case.
type AssessRequest struct {
	Applicant           model.ApplicantRecord `json:"demandeur"`
	Loan                model.LoanRequest     `json:"credit"`
	ApplicationID       uuid.UUID             `json:"application_id"`
	ClientID            uuid.UUID             `json:"client_id"`
	ForceRecalculation  bool                  `json:"force_recalcul"`
	IncludeExplanations bool                  `json:"inclure_explications"`
}

// ScoreDTO is the wire form of a score result.
type ScoreDTO struct {
	Probability    float64 `json:"probabilite_defaut"`
	Score          float64 `json:"score"`
	Category       string  `json:"categorie_risque"`
	CategoryLabel  string  `json:"categorie_libelle"`
	Recommendation string  `json:"recommandation"`
	Justification  string  `json:"justification"`
}

// FromScoreResult maps a score result to its DTO.
func FromScoreResult(r model.ScoreResult) ScoreDTO {
	return ScoreDTO{
		Probability:    r.Probability,
		Score:          r.Score,
		Category:       r.Category.String(),
		CategoryLabel:  r.Category.Label(),
		Recommendation: r.Recommendation.String(),
		Justification:  r.Justification(),
	}
}

// FactorDTO is one attributed feature.
type FactorDTO struct {
	Feature     string  `json:"feature"`
	Description string  `json:"description"`
	Value       float64 `json:"valeur"`
	RawValue    string  `json:"valeur_brute,omitempty"`
	Impact      float64 `json:"impact"`
}

// FromFactors maps factor contributions to DTOs.
func FromFactors(factors []model.FactorContribution) []FactorDTO {
	out := make([]FactorDTO, 0, len(factors))
	for _, f := range factors {
		out = append(out, FactorDTO{
			Feature:     f.FeatureName,
			Description: f.Description,
			Value:       f.FeatureValue,
			RawValue:    f.RawValue,
			Impact:      f.Impact,
		})
	}
	return out
}

// ExplanationSummaryDTO carries the key factors of an explanation, or the
// reason none could be computed.
type ExplanationSummaryDTO struct {
	Status         string      `json:"statut"`
	Reason         string      `json:"raison,omitempty"`
	Method         string      `json:"methode,omitempty"`
	Baseline       float64     `json:"valeur_base,omitempty"`
	KeyFavorable   []FactorDTO `json:"facteurs_positifs"`
	KeyUnfavorable []FactorDTO `json:"facteurs_negatifs"`
}

// FromExplanation summarizes an explanation.
func FromExplanation(e model.Explanation) *ExplanationSummaryDTO {
	a, ok := e.Attributions()
	if !ok {
		return &ExplanationSummaryDTO{
			Status:         model.ExplanationStatusUnavailable,
			Reason:         e.UnavailableReason(),
			KeyFavorable:   []FactorDTO{},
			KeyUnfavorable: []FactorDTO{},
		}
	}
	return &ExplanationSummaryDTO{
		Status:         model.ExplanationStatusComputed,
		Method:         a.Method,
		Baseline:       a.Baseline,
		KeyFavorable:   FromFactors(a.KeyFavorable()),
		KeyUnfavorable: FromFactors(a.KeyUnfavorable()),
	}
}

// AssessmentResponse is the output DTO returned after an assessment.
type AssessmentResponse struct {
	AssessedAt        time.Time              `json:"assessed_at"`
	Explanation       *ExplanationSummaryDTO `json:"explications,omitempty"`
	Result            ScoreDTO               `json:"resultat"`
	ModelVersion      string                 `json:"version_modele"`
	ExplanationStatus string                 `json:"statut_explications"`
	Factors           []FactorDTO            `json:"facteurs_cles"`
	ID                uuid.UUID              `json:"id"`
	ApplicationID     uuid.UUID              `json:"application_id"`
	ClientID          uuid.UUID              `json:"client_id"`
	Version           int                    `json:"version"`
	Cached            bool                   `json:"depuis_cache"`
}

// FromModel maps a domain model to the response DTO.
func FromModel(a *model.Assessment) AssessmentResponse {
	return AssessmentResponse{
		ID:                a.ID(),
		ApplicationID:     a.ApplicationID(),
		ClientID:          a.ClientID(),
		Result:            FromScoreResult(a.Result()),
		ModelVersion:      a.ModelVersion(),
		ExplanationStatus: a.ExplanationStatus(),
		Factors:           FromFactors(a.Factors()),
		AssessedAt:        a.AssessedAt(),
		Version:           a.Version(),
	}
}

// FromSnapshot maps a cached score to the response DTO.
func FromSnapshot(s model.ScoreSnapshot) AssessmentResponse {
	return AssessmentResponse{
		ID:                s.AssessmentID,
		ApplicationID:     s.ApplicationID,
		ClientID:          s.ClientID,
		Result:            FromScoreResult(s.Result),
		ModelVersion:      s.ModelVersion,
		ExplanationStatus: s.ExplanationStatus,
		Factors:           FromFactors(s.Factors),
		AssessedAt:        s.AssessedAt,
		Version:           s.Version,
		Cached:            true,
	}
}

// GetAssessmentRequest is the input DTO for retrieving an assessment. One
// of the identifiers must be set; AssessmentID wins when both are.
type GetAssessmentRequest struct {
	AssessmentID  uuid.UUID `json:"assessment_id"`
	ApplicationID uuid.UUID `json:"application_id"`
}

// ListAssessmentsRequest is the input DTO for a client's score history.
type ListAssessmentsRequest struct {
	ClientID uuid.UUID `json:"client_id"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

// ListAssessmentsResponse holds one page of a client's assessments.
type ListAssessmentsResponse struct {
	Assessments []AssessmentResponse `json:"assessments"`
}

package dto

import "github.com/bibbank/scoring-service/internal/domain/model"

// PredictRequest is the input DTO for a direct prediction, scored without
// persistence.
type PredictRequest struct {
	Applicant model.ApplicantRecord `json:"demandeur"`
	Loan      model.LoanRequest     `json:"credit"`
}

// PredictResponse holds a direct prediction and its key factors.
type PredictResponse struct {
	Explanation  *ExplanationSummaryDTO `json:"explications"`
	Result       ScoreDTO               `json:"resultat_prediction"`
	ModelVersion string                 `json:"version_modele"`
}

// ModelInfoResponse describes the loaded model.
type ModelInfoResponse struct {
	Metrics           map[string]float64        `json:"performance"`
	Algorithm         string                    `json:"type"`
	Version           string                    `json:"version"`
	SchemaVersion     string                    `json:"version_schema"`
	ExplanationMethod string                    `json:"methode_explication"`
	Features          []string                  `json:"features"`
	Importances       []model.FeatureImportance `json:"importances"`
	Estimators        int                       `json:"nb_estimateurs"`
	Loaded            bool                      `json:"charge"`
}

// FromModelInfo maps model metadata to its DTO.
func FromModelInfo(info model.ModelInfo, method string) ModelInfoResponse {
	return ModelInfoResponse{
		Loaded:            true,
		Algorithm:         info.Algorithm,
		Version:           info.Version,
		SchemaVersion:     info.SchemaVersion,
		ExplanationMethod: method,
		Features:          info.FeatureNames,
		Importances:       info.Importances,
		Metrics:           info.Metrics,
		Estimators:        info.Estimators,
	}
}

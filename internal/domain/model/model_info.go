package model

import (
	"time"

	"github.com/google/uuid"
)

// FeatureImportance is the global weight of one feature in the model.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// ModelInfo describes the loaded model artifact.
type ModelInfo struct {
	Algorithm     string              `json:"algorithme"`
	Version       string              `json:"version"`
	SchemaVersion string              `json:"version_schema"`
	FeatureNames  []string            `json:"features"`
	Importances   []FeatureImportance `json:"importances"`
	Metrics       map[string]float64  `json:"metriques"`
	Estimators    int                 `json:"nb_estimateurs"`
}

// ScoreSnapshot is the cacheable form of a stored score. It carries
// everything an assessment response shows, so a cache hit and a repository
// hit answer the same.
type ScoreSnapshot struct {
	AssessmentID      uuid.UUID            `json:"assessment_id"`
	ApplicationID     uuid.UUID            `json:"application_id"`
	ClientID          uuid.UUID            `json:"client_id"`
	Result            ScoreResult          `json:"result"`
	ModelVersion      string               `json:"version_modele"`
	SchemaVersion     string               `json:"version_schema,omitempty"`
	ExplanationStatus string               `json:"statut_explications"`
	ExplanationReason string               `json:"raison_explications,omitempty"`
	Factors           []FactorContribution `json:"facteurs_cles,omitempty"`
	AssessedAt        time.Time            `json:"assessed_at"`
	Version           int                  `json:"version"`
}

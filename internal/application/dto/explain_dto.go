package dto

import "github.com/bibbank/scoring-service/internal/domain/model"

// ExplainRequest is the input DTO for the ExplainAssessment use case. An
// empty Format means complet.
type ExplainRequest struct {
	Applicant model.ApplicantRecord `json:"demandeur"`
	Loan      model.LoanRequest     `json:"credit"`
	Format    string                `json:"format"`
}

// WaterfallBar is one step of a waterfall chart, from Start to End.
type WaterfallBar struct {
	Label   string  `json:"libelle"`
	Feature string  `json:"feature,omitempty"`
	Impact  float64 `json:"impact"`
	Start   float64 `json:"debut"`
	End     float64 `json:"fin"`
}

// WaterfallChart is the series for a waterfall plot going from the model
// baseline to the predicted probability.
type WaterfallChart struct {
	Baseline float64        `json:"valeur_base"`
	Output   float64        `json:"valeur_predite"`
	Bars     []WaterfallBar `json:"barres"`
}

// ExplainResponse carries the explanation in the requested format. Fields
// not covered by the format are left empty.
type ExplainResponse struct {
	Chart         *WaterfallChart `json:"graphique,omitempty"`
	Result        ScoreDTO        `json:"resultat"`
	Format        string          `json:"format"`
	Status        string          `json:"statut"`
	Reason        string          `json:"raison,omitempty"`
	Method        string          `json:"methode,omitempty"`
	Text          string          `json:"explication_texte,omitempty"`
	Favorable     []FactorDTO     `json:"facteurs_positifs"`
	Unfavorable   []FactorDTO     `json:"facteurs_negatifs"`
	Contributions []FactorDTO     `json:"contributions,omitempty"`
}

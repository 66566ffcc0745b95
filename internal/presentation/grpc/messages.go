package grpc

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/scoring-service/internal/application/dto"
	"github.com/bibbank/scoring-service/internal/domain/model"
)

// Proto-aligned request/response message types. Amounts travel as decimal
// strings, identifiers as UUID strings.

// ApplicantMsg represents the proto Demandeur message.
type ApplicantMsg struct {
	Age              int32  `json:"age"`
	EtatCivil        string `json:"etat_civil"`
	NombreEnfants    int32  `json:"nombre_enfants"`
	Profession       string `json:"profession"`
	AncienneteEmploi int32  `json:"anciennete_emploi"`
	RevenuMensuel    string `json:"revenu_mensuel"`
	AutresRevenus    string `json:"autres_revenus"`
	DefautsPaiement  int32  `json:"defauts_paiement"`
	DetteTotale      string `json:"dette_totale"`
}

// LoanMsg represents the proto Credit message.
type LoanMsg struct {
	TypeCredit     string `json:"type_credit"`
	MontantDemande string `json:"montant_demande"`
	DureeMois      int32  `json:"duree_mois"`
	TauxInteret    string `json:"taux_interet"`
	AvecGarantie   bool   `json:"avec_garantie"`
	ValeurGarantie string `json:"valeur_garantie"`
}

// ScenarioMsg represents the proto Scenario message.
type ScenarioMsg struct {
	Nom         string         `json:"nom"`
	Description string         `json:"description"`
	Parametres  map[string]any `json:"parametres"`
}

// AssessApplicationRequest represents the proto AssessApplicationRequest message.
type AssessApplicationRequest struct {
	ApplicationID       string        `json:"application_id"`
	ClientID            string        `json:"client_id"`
	Demandeur           *ApplicantMsg `json:"demandeur"`
	Credit              *LoanMsg      `json:"credit"`
	ForceRecalcul       bool          `json:"force_recalcul"`
	InclureExplications bool          `json:"inclure_explications"`
}

// AssessApplicationResponse represents the proto AssessApplicationResponse message.
type AssessApplicationResponse struct {
	Assessment *dto.AssessmentResponse `json:"assessment"`
}

// GetAssessmentRequest represents the proto GetAssessmentRequest message.
// Either ID or ApplicationID is set.
type GetAssessmentRequest struct {
	ID            string `json:"id"`
	ApplicationID string `json:"application_id"`
}

// GetAssessmentResponse represents the proto GetAssessmentResponse message.
type GetAssessmentResponse struct {
	Assessment *dto.AssessmentResponse `json:"assessment"`
}

// ListAssessmentsRequest represents the proto ListAssessmentsRequest message.
type ListAssessmentsRequest struct {
	ClientID string `json:"client_id"`
	PageSize int32  `json:"page_size"`
	Offset   int32  `json:"offset"`
}

// ListAssessmentsResponse represents the proto ListAssessmentsResponse message.
type ListAssessmentsResponse struct {
	Assessments []dto.AssessmentResponse `json:"assessments"`
}

// ExplainScoreRequest represents the proto ExplainScoreRequest message.
type ExplainScoreRequest struct {
	Demandeur *ApplicantMsg `json:"demandeur"`
	Credit    *LoanMsg      `json:"credit"`
	Format    string        `json:"format"`
}

// ExplainScoreResponse represents the proto ExplainScoreResponse message.
type ExplainScoreResponse struct {
	Explanation *dto.ExplainResponse `json:"explanation"`
}

// SimulateScenariosRequest represents the proto SimulateScenariosRequest message.
type SimulateScenariosRequest struct {
	Demandeur           *ApplicantMsg `json:"demandeur"`
	Credit              *LoanMsg      `json:"credit"`
	Scenarios           []ScenarioMsg `json:"scenarios"`
	InclureExplications bool          `json:"inclure_explications"`
}

// SimulateScenariosResponse represents the proto SimulateScenariosResponse message.
type SimulateScenariosResponse struct {
	Simulation *dto.SimulateResponse `json:"simulation"`
}

// PredictDirectRequest represents the proto PredictDirectRequest message.
type PredictDirectRequest struct {
	Demandeur *ApplicantMsg `json:"demandeur"`
	Credit    *LoanMsg      `json:"credit"`
}

// PredictDirectResponse represents the proto PredictDirectResponse message.
type PredictDirectResponse struct {
	Prediction *dto.PredictResponse `json:"prediction"`
}

// GetModelInfoRequest represents the proto GetModelInfoRequest message.
type GetModelInfoRequest struct{}

// GetModelInfoResponse represents the proto GetModelInfoResponse message.
type GetModelInfoResponse struct {
	Model *dto.ModelInfoResponse `json:"model"`
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s: %w", field, err)
	}
	return d, nil
}

func parseUUID(field, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	return id, nil
}

func (m *ApplicantMsg) toModel() (model.ApplicantRecord, error) {
	if m == nil {
		return model.ApplicantRecord{}, fmt.Errorf("demandeur is required")
	}
	income, err := parseAmount("revenu_mensuel", m.RevenuMensuel)
	if err != nil {
		return model.ApplicantRecord{}, err
	}
	other, err := parseAmount("autres_revenus", m.AutresRevenus)
	if err != nil {
		return model.ApplicantRecord{}, err
	}
	debt, err := parseAmount("dette_totale", m.DetteTotale)
	if err != nil {
		return model.ApplicantRecord{}, err
	}
	return model.ApplicantRecord{
		Age:              int(m.Age),
		MaritalStatus:    m.EtatCivil,
		Dependents:       int(m.NombreEnfants),
		Profession:       m.Profession,
		EmploymentMonths: int(m.AncienneteEmploi),
		MonthlyIncome:    income,
		OtherIncome:      other,
		PriorDefaults:    int(m.DefautsPaiement),
		TotalDebt:        debt,
	}, nil
}

func (m *LoanMsg) toModel() (model.LoanRequest, error) {
	if m == nil {
		return model.LoanRequest{}, fmt.Errorf("credit is required")
	}
	amount, err := parseAmount("montant_demande", m.MontantDemande)
	if err != nil {
		return model.LoanRequest{}, err
	}
	rate, err := parseAmount("taux_interet", m.TauxInteret)
	if err != nil {
		return model.LoanRequest{}, err
	}
	guarantee, err := parseAmount("valeur_garantie", m.ValeurGarantie)
	if err != nil {
		return model.LoanRequest{}, err
	}
	return model.LoanRequest{
		CreditType:     m.TypeCredit,
		Amount:         amount,
		DurationMonths: int(m.DureeMois),
		InterestRate:   rate,
		HasGuarantee:   m.AvecGarantie,
		GuaranteeValue: guarantee,
	}, nil
}

func recordsFromMsg(a *ApplicantMsg, l *LoanMsg) (model.ApplicantRecord, model.LoanRequest, error) {
	applicant, err := a.toModel()
	if err != nil {
		return model.ApplicantRecord{}, model.LoanRequest{}, err
	}
	loan, err := l.toModel()
	if err != nil {
		return model.ApplicantRecord{}, model.LoanRequest{}, err
	}
	return applicant, loan, nil
}

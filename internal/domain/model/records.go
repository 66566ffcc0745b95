package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// ApplicantRecord is a snapshot of the applicant attributes used for scoring.
// Categorical fields are kept as raw strings so that unknown values surface
// at feature preparation instead of being silently mapped.
type ApplicantRecord struct {
	Age              int             `json:"age"`
	MaritalStatus    string          `json:"etat_civil"`
	Dependents       int             `json:"nombre_enfants"`
	Profession       string          `json:"profession"`
	EmploymentMonths int             `json:"anciennete_emploi"`
	MonthlyIncome    decimal.Decimal `json:"revenu_mensuel"`
	OtherIncome      decimal.Decimal `json:"autres_revenus"`
	PriorDefaults    int             `json:"defauts_paiement"`
	TotalDebt        decimal.Decimal `json:"dette_totale"`
}

// TotalIncome returns monthly income plus other income.
func (a ApplicantRecord) TotalIncome() decimal.Decimal {
	return a.MonthlyIncome.Add(a.OtherIncome)
}

// LoanRequest is a snapshot of the requested credit.
type LoanRequest struct {
	CreditType     string          `json:"type_credit"`
	Amount         decimal.Decimal `json:"montant_demande"`
	DurationMonths int             `json:"duree_mois"`
	InterestRate   decimal.Decimal `json:"taux_interet"`
	HasGuarantee   bool            `json:"avec_garantie"`
	GuaranteeValue decimal.Decimal `json:"valeur_garantie"`
}

// MonthlyPayment returns the constant amortization payment for the loan,
// rounded to cents. A zero rate splits the principal evenly; a zero duration
// returns the full amount. The payment per unit of principal is computed in
// float64 and scaled in decimal, so the result is finite for any input.
func (l LoanRequest) MonthlyPayment() decimal.Decimal {
	if l.DurationMonths <= 0 {
		return l.Amount.Round(2)
	}
	n := decimal.NewFromInt(int64(l.DurationMonths))
	if !l.InterestRate.IsPositive() {
		return l.Amount.Div(n).Round(2)
	}

	r := l.InterestRate.InexactFloat64() / 100 / 12
	if r <= 0 {
		return l.Amount.Div(n).Round(2)
	}
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return interestOnly(l)
	}

	// growth is (1+r)^n - 1, accurate for rates close to zero.
	growth := math.Expm1(float64(l.DurationMonths) * math.Log1p(r))
	switch {
	case growth <= 0:
		return l.Amount.Div(n).Round(2)
	case math.IsInf(growth, 1):
		return interestOnly(l)
	}

	// r*(1+g)/g rewritten as r + r/g so it never overflows.
	perUnit := r + r/growth
	return l.Amount.Mul(decimal.NewFromFloat(perUnit)).Round(2)
}

// interestOnly is the limit of the amortization payment when the
// compounded growth overflows: the monthly interest on the principal.
func interestOnly(l LoanRequest) decimal.Decimal {
	return l.Amount.Mul(l.InterestRate).Div(decimal.NewFromInt(1200)).Round(2)
}

// TotalCost returns the sum of all payments minus the principal.
func (l LoanRequest) TotalCost() decimal.Decimal {
	if l.DurationMonths <= 0 {
		return decimal.Zero
	}
	total := l.MonthlyPayment().Mul(decimal.NewFromInt(int64(l.DurationMonths)))
	return total.Sub(l.Amount).Round(2)
}

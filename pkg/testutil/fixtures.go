package testutil

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/scoring-service/internal/domain/model"
)

// Fixed UUIDs for deterministic testing
var (
	TestApplicationID1 = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestApplicationID2 = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	TestClientID       = uuid.MustParse("00000000-0000-0000-0000-000000000010")
)

// LowRiskApplicant is a salaried applicant with no payment incidents.
func LowRiskApplicant() model.ApplicantRecord {
	return model.ApplicantRecord{
		Age:              40,
		MaritalStatus:    "marie",
		Dependents:       2,
		Profession:       "cadre",
		EmploymentMonths: 120,
		MonthlyIncome:    decimal.NewFromInt(5500),
		TotalDebt:        decimal.NewFromInt(10000),
	}
}

// HighRiskApplicant has recent employment, low income and three defaults.
func HighRiskApplicant() model.ApplicantRecord {
	a := LowRiskApplicant()
	a.PriorDefaults = 3
	a.MonthlyIncome = decimal.NewFromInt(2000)
	a.EmploymentMonths = 6
	return a
}

// Mortgage is a 20-year home loan of 300 000 at 3.5%.
func Mortgage() model.LoanRequest {
	return model.LoanRequest{
		CreditType:     "immobilier",
		Amount:         decimal.NewFromInt(300000),
		DurationMonths: 240,
		InterestRate:   decimal.RequireFromString("3.5"),
	}
}

package service_test

import (
	"errors"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/bibbank/scoring-service/internal/domain/model"
	"github.com/bibbank/scoring-service/internal/domain/port"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sampleApplicant is a salaried applicant with no payment incidents.
func sampleApplicant() model.ApplicantRecord {
	return model.ApplicantRecord{
		Age:              40,
		MaritalStatus:    "marie",
		Dependents:       2,
		Profession:       "cadre",
		EmploymentMonths: 120,
		MonthlyIncome:    decimal.NewFromInt(5500),
		OtherIncome:      decimal.Zero,
		PriorDefaults:    0,
		TotalDebt:        decimal.NewFromInt(10000),
	}
}

// sampleLoan is a 20 year mortgage with a monthly payment of 1739.88.
func sampleLoan() model.LoanRequest {
	return model.LoanRequest{
		CreditType:     "immobilier",
		Amount:         decimal.NewFromInt(300000),
		DurationMonths: 240,
		InterestRate:   decimal.RequireFromString("3.5"),
		HasGuarantee:   false,
		GuaranteeValue: decimal.Zero,
	}
}

type fakeClassifier struct {
	probability float64
	width       int
	err         error
}

func (c *fakeClassifier) PredictProba(_ []float64) (float64, error) {
	return c.probability, c.err
}

func (c *fakeClassifier) NumFeatures() int { return c.width }

type describedClassifier struct {
	fakeClassifier
	info model.ModelInfo
}

func (c *describedClassifier) Info() model.ModelInfo { return c.info }

type fakeAttributor struct {
	attribution port.Attribution
	err         error
	panicWith   any
}

func (a *fakeAttributor) Name() string { return "fake" }

func (a *fakeAttributor) Attribute(_ port.Classifier, _ []float64) (port.Attribution, error) {
	if a.panicWith != nil {
		panic(a.panicWith)
	}
	return a.attribution, a.err
}

var errBoom = errors.New("boom")

package service

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bibbank/scoring-service/internal/domain/model"
)

type parameterSetter func(a *model.ApplicantRecord, l *model.LoanRequest, name string, value any) error

// parameters lists every field a scenario may override, under the names
// used by the lending API. Loan fields accept both the request and the
// feature spelling.
var parameters = map[string]parameterSetter{
	"age": intParam(func(a *model.ApplicantRecord, _ *model.LoanRequest) *int { return &a.Age }, 18, 120),
	"etat_civil": stringParam(func(a *model.ApplicantRecord, _ *model.LoanRequest) *string {
		return &a.MaritalStatus
	}),
	"nombre_enfants": intParam(func(a *model.ApplicantRecord, _ *model.LoanRequest) *int { return &a.Dependents }, 0, 30),
	"profession": stringParam(func(a *model.ApplicantRecord, _ *model.LoanRequest) *string {
		return &a.Profession
	}),
	"anciennete_emploi": intParam(func(a *model.ApplicantRecord, _ *model.LoanRequest) *int {
		return &a.EmploymentMonths
	}, 0, 1200),
	"revenu_mensuel": decimalParam(func(a *model.ApplicantRecord, _ *model.LoanRequest) *decimal.Decimal {
		return &a.MonthlyIncome
	}, false),
	"autres_revenus": decimalParam(func(a *model.ApplicantRecord, _ *model.LoanRequest) *decimal.Decimal {
		return &a.OtherIncome
	}, false),
	"defauts_paiement": intParam(func(a *model.ApplicantRecord, _ *model.LoanRequest) *int {
		return &a.PriorDefaults
	}, 0, 1000),
	"dette_totale": decimalParam(func(a *model.ApplicantRecord, _ *model.LoanRequest) *decimal.Decimal {
		return &a.TotalDebt
	}, false),
	"type_credit": stringParam(func(_ *model.ApplicantRecord, l *model.LoanRequest) *string { return &l.CreditType }),
	"montant_demande": decimalParam(func(_ *model.ApplicantRecord, l *model.LoanRequest) *decimal.Decimal {
		return &l.Amount
	}, true),
	"duree_mois": intParam(func(_ *model.ApplicantRecord, l *model.LoanRequest) *int {
		return &l.DurationMonths
	}, 1, 600),
	"taux_interet": rateParam(func(_ *model.ApplicantRecord, l *model.LoanRequest) *decimal.Decimal {
		return &l.InterestRate
	}),
	"avec_garantie": boolParam(func(_ *model.ApplicantRecord, l *model.LoanRequest) *bool { return &l.HasGuarantee }),
	"valeur_garantie": decimalParam(func(_ *model.ApplicantRecord, l *model.LoanRequest) *decimal.Decimal {
		return &l.GuaranteeValue
	}, false),
}

func init() {
	parameters["montant_credit"] = parameters["montant_demande"]
	parameters["duree_credit"] = parameters["duree_mois"]
}

// OverridableParameters returns the sorted names accepted in scenario overrides.
func OverridableParameters() []string {
	names := make([]string, 0, len(parameters))
	for name := range parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyOverrides returns copies of applicant and loan with overrides applied.
// Either every override applies or an error is returned; the inputs are
// never modified. Keys are applied in sorted order so that the reported
// error is deterministic.
func ApplyOverrides(
	applicant model.ApplicantRecord,
	loan model.LoanRequest,
	overrides map[string]any,
) (model.ApplicantRecord, model.LoanRequest, error) {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	a, l := applicant, loan
	for _, k := range keys {
		set, ok := parameters[k]
		if !ok {
			return applicant, loan, &model.UnknownParameterError{Name: k}
		}
		if err := set(&a, &l, k, overrides[k]); err != nil {
			return applicant, loan, err
		}
	}
	return a, l, nil
}

func invalid(name string, value any, format string, args ...any) error {
	return &model.InvalidParameterValueError{Name: name, Value: value, Reason: fmt.Sprintf(format, args...)}
}

// toFloat accepts Go numeric types, json.Number and decimal.Decimal.
// Strings and booleans are rejected.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case decimal.Decimal:
		return v.InexactFloat64(), true
	default:
		return 0, false
	}
}

func toDecimal(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	}
	f, ok := toFloat(value)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

func intParam(field func(*model.ApplicantRecord, *model.LoanRequest) *int, lo, hi int) parameterSetter {
	return func(a *model.ApplicantRecord, l *model.LoanRequest, name string, value any) error {
		f, ok := toFloat(value)
		if !ok {
			return invalid(name, value, "expected an integer, got %T", value)
		}
		if math.IsNaN(f) || math.Trunc(f) != f {
			return invalid(name, value, "expected an integer")
		}
		if f < float64(lo) || f > float64(hi) {
			return invalid(name, value, "must be between %d and %d", lo, hi)
		}
		*field(a, l) = int(f)
		return nil
	}
}

func decimalParam(field func(*model.ApplicantRecord, *model.LoanRequest) *decimal.Decimal, strictlyPositive bool) parameterSetter {
	return func(a *model.ApplicantRecord, l *model.LoanRequest, name string, value any) error {
		d, ok := toDecimal(value)
		if !ok {
			return invalid(name, value, "expected a number, got %T", value)
		}
		if d.IsNegative() {
			return invalid(name, value, "must not be negative")
		}
		if strictlyPositive && d.IsZero() {
			return invalid(name, value, "must be positive")
		}
		*field(a, l) = d
		return nil
	}
}

func rateParam(field func(*model.ApplicantRecord, *model.LoanRequest) *decimal.Decimal) parameterSetter {
	return func(a *model.ApplicantRecord, l *model.LoanRequest, name string, value any) error {
		d, ok := toDecimal(value)
		if !ok {
			return invalid(name, value, "expected a number, got %T", value)
		}
		if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
			return invalid(name, value, "must be a percentage between 0 and 100")
		}
		*field(a, l) = d
		return nil
	}
}

func stringParam(field func(*model.ApplicantRecord, *model.LoanRequest) *string) parameterSetter {
	return func(a *model.ApplicantRecord, l *model.LoanRequest, name string, value any) error {
		s, ok := value.(string)
		if !ok {
			return invalid(name, value, "expected a string, got %T", value)
		}
		*field(a, l) = s
		return nil
	}
}

func boolParam(field func(*model.ApplicantRecord, *model.LoanRequest) *bool) parameterSetter {
	return func(a *model.ApplicantRecord, l *model.LoanRequest, name string, value any) error {
		b, ok := value.(bool)
		if !ok {
			return invalid(name, value, "expected a boolean, got %T", value)
		}
		*field(a, l) = b
		return nil
	}
}

package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/bibbank/scoring-service/internal/domain/model"
)

// RatioCap is the sentinel used for derived ratios whose denominator is zero.
const RatioCap = 100.0

type featureExtractor struct {
	kind    FeatureKind
	extract func(s FeatureSchema, a model.ApplicantRecord, l model.LoanRequest) (float64, error)
	display func(a model.ApplicantRecord, l model.LoanRequest) string
}

// extractors knows how to compute every feature a schema may reference.
var extractors = map[string]featureExtractor{
	"age":               intField(func(a model.ApplicantRecord, _ model.LoanRequest) int { return a.Age }),
	"revenu_mensuel":    decimalField(func(a model.ApplicantRecord, _ model.LoanRequest) decimal.Decimal { return a.MonthlyIncome }),
	"autres_revenus":    decimalField(func(a model.ApplicantRecord, _ model.LoanRequest) decimal.Decimal { return a.OtherIncome }),
	"anciennete_emploi": intField(func(a model.ApplicantRecord, _ model.LoanRequest) int { return a.EmploymentMonths }),
	"etat_civil": categoricalField("etat_civil", func(a model.ApplicantRecord, _ model.LoanRequest) string {
		return a.MaritalStatus
	}),
	"nombre_enfants": intField(func(a model.ApplicantRecord, _ model.LoanRequest) int { return a.Dependents }),
	"profession": categoricalField("profession", func(a model.ApplicantRecord, _ model.LoanRequest) string {
		return a.Profession
	}),
	"defauts_paiement": intField(func(a model.ApplicantRecord, _ model.LoanRequest) int { return a.PriorDefaults }),
	"dette_totale":     decimalField(func(a model.ApplicantRecord, _ model.LoanRequest) decimal.Decimal { return a.TotalDebt }),
	"montant_credit":   decimalField(func(_ model.ApplicantRecord, l model.LoanRequest) decimal.Decimal { return l.Amount }),
	"duree_credit":     intField(func(_ model.ApplicantRecord, l model.LoanRequest) int { return l.DurationMonths }),
	"taux_interet":     decimalField(func(_ model.ApplicantRecord, l model.LoanRequest) decimal.Decimal { return l.InterestRate }),
	"type_credit": categoricalField("type_credit", func(_ model.ApplicantRecord, l model.LoanRequest) string {
		return l.CreditType
	}),
	"avec_garantie": {
		kind: KindBoolean,
		extract: func(_ FeatureSchema, _ model.ApplicantRecord, l model.LoanRequest) (float64, error) {
			if l.HasGuarantee {
				return 1, nil
			}
			return 0, nil
		},
		display: func(_ model.ApplicantRecord, l model.LoanRequest) string {
			if l.HasGuarantee {
				return "oui"
			}
			return "non"
		},
	},
	"valeur_garantie":         decimalField(func(_ model.ApplicantRecord, l model.LoanRequest) decimal.Decimal { return l.GuaranteeValue }),
	"ratio_dette_revenu":      derivedField(debtToIncome),
	"ratio_mensualite_revenu": derivedField(paymentToIncome),
	"ratio_pret_garantie":     derivedField(loanToGuarantee),
}

func intField(get func(model.ApplicantRecord, model.LoanRequest) int) featureExtractor {
	return featureExtractor{
		kind: KindNumeric,
		extract: func(_ FeatureSchema, a model.ApplicantRecord, l model.LoanRequest) (float64, error) {
			return float64(get(a, l)), nil
		},
		display: func(a model.ApplicantRecord, l model.LoanRequest) string {
			return strconv.Itoa(get(a, l))
		},
	}
}

func decimalField(get func(model.ApplicantRecord, model.LoanRequest) decimal.Decimal) featureExtractor {
	return featureExtractor{
		kind: KindNumeric,
		extract: func(_ FeatureSchema, a model.ApplicantRecord, l model.LoanRequest) (float64, error) {
			return get(a, l).InexactFloat64(), nil
		},
		display: func(a model.ApplicantRecord, l model.LoanRequest) string {
			return get(a, l).String()
		},
	}
}

func categoricalField(field string, get func(model.ApplicantRecord, model.LoanRequest) string) featureExtractor {
	return featureExtractor{
		kind: KindCategorical,
		extract: func(s FeatureSchema, a model.ApplicantRecord, l model.LoanRequest) (float64, error) {
			value := get(a, l)
			idx, err := s.Encode(field, value)
			if errors.Is(err, errUnknownCategory) {
				return 0, &model.UnknownCategoryError{Field: field, Value: value}
			}
			return idx, err
		},
		display: get,
	}
}

func derivedField(compute func(model.ApplicantRecord, model.LoanRequest) float64) featureExtractor {
	return featureExtractor{
		kind: KindDerived,
		extract: func(_ FeatureSchema, a model.ApplicantRecord, l model.LoanRequest) (float64, error) {
			return compute(a, l), nil
		},
		display: func(a model.ApplicantRecord, l model.LoanRequest) string {
			return strconv.FormatFloat(compute(a, l), 'f', 2, 64)
		},
	}
}

// guardedRatio divides num by den. A non-positive denominator yields 0 when
// the numerator is 0 and RatioCap otherwise. Results are capped at RatioCap
// and an infinite numerator yields RatioCap.
func guardedRatio(num, den float64) float64 {
	if math.IsInf(num, 1) || math.IsNaN(num) {
		return RatioCap
	}
	if den <= 0 {
		if num == 0 {
			return 0
		}
		return RatioCap
	}
	r := num / den
	if math.IsNaN(r) {
		return 0
	}
	return math.Min(r, RatioCap)
}

func debtToIncome(a model.ApplicantRecord, _ model.LoanRequest) float64 {
	return guardedRatio(a.TotalDebt.InexactFloat64(), a.TotalIncome().InexactFloat64())
}

func paymentToIncome(a model.ApplicantRecord, l model.LoanRequest) float64 {
	return guardedRatio(l.MonthlyPayment().InexactFloat64(), a.TotalIncome().InexactFloat64())
}

func loanToGuarantee(_ model.ApplicantRecord, l model.LoanRequest) float64 {
	if !l.HasGuarantee || !l.GuaranteeValue.IsPositive() {
		return RatioCap
	}
	return guardedRatio(l.Amount.InexactFloat64(), l.GuaranteeValue.InexactFloat64())
}

// FeaturePreparer turns raw records into feature vectors following a
// validated schema.
type FeaturePreparer struct {
	schema     FeatureSchema
	names      []string
	extractors []featureExtractor
}

// NewFeaturePreparer validates the schema and binds an extractor to every
// feature it declares.
func NewFeaturePreparer(schema FeatureSchema) (*FeaturePreparer, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	bound := make([]featureExtractor, len(schema.Features))
	for i, f := range schema.Features {
		ext, ok := extractors[f.Name]
		if !ok {
			return nil, fmt.Errorf("feature schema %s: no extractor for feature %s", schema.Version, f.Name)
		}
		if ext.kind != f.Kind {
			return nil, fmt.Errorf("feature schema %s: feature %s declared %s, extractor is %s",
				schema.Version, f.Name, f.Kind, ext.kind)
		}
		bound[i] = ext
	}

	return &FeaturePreparer{
		schema:     schema,
		names:      schema.Names(),
		extractors: bound,
	}, nil
}

// Schema returns the schema the preparer was built with.
func (p *FeaturePreparer) Schema() FeatureSchema {
	return p.schema
}

// Prepare builds the feature vector for one applicant and loan. It either
// returns a complete vector or an error, never a partial vector.
func (p *FeaturePreparer) Prepare(applicant model.ApplicantRecord, loan model.LoanRequest) (model.FeatureVector, error) {
	values := make([]float64, len(p.extractors))
	for i, ext := range p.extractors {
		v, err := ext.extract(p.schema, applicant, loan)
		if err != nil {
			return model.FeatureVector{}, fmt.Errorf("prepare feature %s: %w", p.names[i], err)
		}
		values[i] = v
	}
	return model.NewFeatureVector(p.schema.Version, p.names, values), nil
}

// RawFields returns the business value of every feature, keyed by feature
// name, for display next to attributions.
func (p *FeaturePreparer) RawFields(applicant model.ApplicantRecord, loan model.LoanRequest) map[string]string {
	fields := make(map[string]string, len(p.extractors))
	for i, ext := range p.extractors {
		fields[p.names[i]] = ext.display(applicant, loan)
	}
	return fields
}

package service

import (
	"errors"
	"fmt"
)

// FeatureKind classifies how a feature is obtained from the raw records.
type FeatureKind string

const (
	KindNumeric     FeatureKind = "numeric"
	KindCategorical FeatureKind = "categorical"
	KindBoolean     FeatureKind = "boolean"
	KindDerived     FeatureKind = "derived"
)

// DefaultSchemaVersion is the version of the built-in schema.
const DefaultSchemaVersion = "credit-risk-v1"

// FeatureSpec describes one position of the feature vector.
type FeatureSpec struct {
	Name string      `yaml:"name"`
	Kind FeatureKind `yaml:"kind"`
	// Categories holds the index encoding of a categorical feature.
	Categories []string `yaml:"categories,omitempty"`
	// Reference is the value of a typical applicant, used as the baseline
	// for model-agnostic attribution.
	Reference float64 `yaml:"reference"`
}

// FeatureSchema is the versioned, ordered input contract of the model.
type FeatureSchema struct {
	Version  string        `yaml:"version"`
	Features []FeatureSpec `yaml:"features"`
}

// Len returns the number of features.
func (s FeatureSchema) Len() int { return len(s.Features) }

// Names returns the feature names in vector order.
func (s FeatureSchema) Names() []string {
	names := make([]string, len(s.Features))
	for i, f := range s.Features {
		names[i] = f.Name
	}
	return names
}

// Index returns the position of the named feature, or -1.
func (s FeatureSchema) Index(name string) int {
	for i, f := range s.Features {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// References returns the reference vector in schema order.
func (s FeatureSchema) References() []float64 {
	ref := make([]float64, len(s.Features))
	for i, f := range s.Features {
		ref[i] = f.Reference
	}
	return ref
}

// Encode maps a category to its index for the named categorical feature.
func (s FeatureSchema) Encode(field, value string) (float64, error) {
	idx := s.Index(field)
	if idx < 0 || s.Features[idx].Kind != KindCategorical {
		return 0, fmt.Errorf("feature %s is not categorical", field)
	}
	for i, c := range s.Features[idx].Categories {
		if c == value {
			return float64(i), nil
		}
	}
	return 0, errUnknownCategory
}

var errUnknownCategory = errors.New("unknown category")

// Validate checks that the schema is internally consistent.
func (s FeatureSchema) Validate() error {
	if s.Version == "" {
		return fmt.Errorf("feature schema: version is required")
	}
	if len(s.Features) == 0 {
		return fmt.Errorf("feature schema %s: no features", s.Version)
	}
	seen := make(map[string]struct{}, len(s.Features))
	for i, f := range s.Features {
		if f.Name == "" {
			return fmt.Errorf("feature schema %s: feature %d has no name", s.Version, i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("feature schema %s: duplicate feature %s", s.Version, f.Name)
		}
		seen[f.Name] = struct{}{}

		switch f.Kind {
		case KindCategorical:
			if len(f.Categories) == 0 {
				return fmt.Errorf("feature schema %s: categorical feature %s has no categories", s.Version, f.Name)
			}
		case KindNumeric, KindBoolean, KindDerived:
			if len(f.Categories) > 0 {
				return fmt.Errorf("feature schema %s: %s feature %s cannot list categories", s.Version, f.Kind, f.Name)
			}
		default:
			return fmt.Errorf("feature schema %s: feature %s has unknown kind %q", s.Version, f.Name, f.Kind)
		}
	}
	return nil
}

// DefaultFeatureSchema returns the credit-risk-v1 schema the bundled model
// was trained on. The order of features is part of the contract.
func DefaultFeatureSchema() FeatureSchema {
	return FeatureSchema{
		Version: DefaultSchemaVersion,
		Features: []FeatureSpec{
			{Name: "age", Kind: KindNumeric, Reference: 40},
			{Name: "revenu_mensuel", Kind: KindNumeric, Reference: 3000},
			{Name: "autres_revenus", Kind: KindNumeric, Reference: 0},
			{Name: "anciennete_emploi", Kind: KindNumeric, Reference: 60},
			{
				Name: "etat_civil", Kind: KindCategorical,
				Categories: []string{"celibataire", "marie", "divorce", "veuf"}, Reference: 1,
			},
			{Name: "nombre_enfants", Kind: KindNumeric, Reference: 1},
			{
				Name: "profession", Kind: KindCategorical,
				Categories: []string{"sans_emploi", "non_qualifie", "qualifie", "cadre", "independant", "fonctionnaire"},
				Reference:  2,
			},
			{Name: "defauts_paiement", Kind: KindNumeric, Reference: 0},
			{Name: "dette_totale", Kind: KindNumeric, Reference: 5000},
			{Name: "montant_credit", Kind: KindNumeric, Reference: 20000},
			{Name: "duree_credit", Kind: KindNumeric, Reference: 60},
			{Name: "taux_interet", Kind: KindNumeric, Reference: 5},
			{
				Name: "type_credit", Kind: KindCategorical,
				Categories: []string{"consommation", "immobilier", "professionnel", "urgence"}, Reference: 0,
			},
			{Name: "avec_garantie", Kind: KindBoolean, Reference: 0},
			{Name: "valeur_garantie", Kind: KindNumeric, Reference: 0},
			{Name: "ratio_dette_revenu", Kind: KindDerived, Reference: 1.67},
			{Name: "ratio_mensualite_revenu", Kind: KindDerived, Reference: 0.13},
			{Name: "ratio_pret_garantie", Kind: KindDerived, Reference: 100},
		},
	}
}

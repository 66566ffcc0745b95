package valueobject

import "fmt"

// RiskCategory is an immutable value object for the coarse risk bucket
// derived from a risk score.
type RiskCategory struct {
	value string
}

var (
	RiskCategoryFaible = RiskCategory{value: "faible"}
	RiskCategoryModere = RiskCategory{value: "modere"}
	RiskCategoryEleve  = RiskCategory{value: "eleve"}
)

// RiskCategories lists every category from least to most severe.
func RiskCategories() []RiskCategory {
	return []RiskCategory{RiskCategoryFaible, RiskCategoryModere, RiskCategoryEleve}
}

// RiskCategoryFromString reconstructs a RiskCategory from its string representation.
func RiskCategoryFromString(s string) (RiskCategory, error) {
	switch s {
	case "faible":
		return RiskCategoryFaible, nil
	case "modere":
		return RiskCategoryModere, nil
	case "eleve":
		return RiskCategoryEleve, nil
	default:
		return RiskCategory{}, fmt.Errorf("invalid risk category: %q", s)
	}
}

// String returns the string representation.
func (c RiskCategory) String() string {
	return c.value
}

// Label returns the display label.
func (c RiskCategory) Label() string {
	switch c.value {
	case "faible":
		return "Risque faible"
	case "modere":
		return "Risque modéré"
	case "eleve":
		return "Risque élevé"
	default:
		return ""
	}
}

// Severity orders categories: faible=1, modere=2, eleve=3. The zero value is 0.
func (c RiskCategory) Severity() int {
	switch c.value {
	case "faible":
		return 1
	case "modere":
		return 2
	case "eleve":
		return 3
	default:
		return 0
	}
}

// IsZero returns true if the RiskCategory has not been set.
func (c RiskCategory) IsZero() bool {
	return c.value == ""
}

// Equal checks equality with another RiskCategory.
func (c RiskCategory) Equal(other RiskCategory) bool {
	return c.value == other.value
}

// MarshalText implements encoding.TextMarshaler.
func (c RiskCategory) MarshalText() ([]byte, error) {
	return []byte(c.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *RiskCategory) UnmarshalText(text []byte) error {
	parsed, err := RiskCategoryFromString(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

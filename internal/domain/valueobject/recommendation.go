package valueobject

import "fmt"

// Recommendation is an immutable value object representing the lending
// decision signal attached to a score.
type Recommendation struct {
	value string
}

var (
	RecommendationApprobation = Recommendation{value: "approbation"}
	RecommendationRevision    = Recommendation{value: "revision"}
	RecommendationRejet       = Recommendation{value: "rejet"}
)

// RecommendationFromString reconstructs a Recommendation from its string representation.
func RecommendationFromString(s string) (Recommendation, error) {
	switch s {
	case "approbation":
		return RecommendationApprobation, nil
	case "revision":
		return RecommendationRevision, nil
	case "rejet":
		return RecommendationRejet, nil
	default:
		return Recommendation{}, fmt.Errorf("invalid recommendation: %q", s)
	}
}

// String returns the string representation.
func (r Recommendation) String() string {
	return r.value
}

// Justification returns the standard wording shown to the credit officer.
func (r Recommendation) Justification() string {
	switch r.value {
	case "approbation":
		return "Le profil du client et les conditions du crédit présentent un risque acceptable."
	case "revision":
		return "Des informations supplémentaires ou des ajustements sont nécessaires."
	case "rejet":
		return "Le niveau de risque est trop élevé pour accorder ce crédit."
	default:
		return ""
	}
}

// Severity orders recommendations: approbation=1, revision=2, rejet=3.
func (r Recommendation) Severity() int {
	switch r.value {
	case "approbation":
		return 1
	case "revision":
		return 2
	case "rejet":
		return 3
	default:
		return 0
	}
}

// IsZero returns true if the Recommendation has not been set.
func (r Recommendation) IsZero() bool {
	return r.value == ""
}

// Equal checks equality with another Recommendation.
func (r Recommendation) Equal(other Recommendation) bool {
	return r.value == other.value
}

// IsApproval returns true for approbation.
func (r Recommendation) IsApproval() bool {
	return r.value == "approbation"
}

// IsRejection returns true for rejet.
func (r Recommendation) IsRejection() bool {
	return r.value == "rejet"
}

// MarshalText implements encoding.TextMarshaler.
func (r Recommendation) MarshalText() ([]byte, error) {
	return []byte(r.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Recommendation) UnmarshalText(text []byte) error {
	parsed, err := RecommendationFromString(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

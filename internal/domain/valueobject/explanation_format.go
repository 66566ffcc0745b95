package valueobject

import "fmt"

// ExplanationFormat selects how much attribution detail is rendered.
type ExplanationFormat struct {
	value string
}

var (
	FormatTexte     = ExplanationFormat{value: "texte"}
	FormatGraphique = ExplanationFormat{value: "graphique"}
	FormatComplet   = ExplanationFormat{value: "complet"}
)

// ExplanationFormatFromString parses a format. The empty string selects complet.
func ExplanationFormatFromString(s string) (ExplanationFormat, error) {
	switch s {
	case "texte":
		return FormatTexte, nil
	case "graphique":
		return FormatGraphique, nil
	case "complet", "":
		return FormatComplet, nil
	default:
		return ExplanationFormat{}, fmt.Errorf("invalid explanation format: %q", s)
	}
}

// String returns the string representation.
func (f ExplanationFormat) String() string {
	return f.value
}

// IncludesText reports whether the narrative is rendered.
func (f ExplanationFormat) IncludesText() bool {
	return f.value == "texte" || f.value == "complet"
}

// IncludesChart reports whether the waterfall series is rendered.
func (f ExplanationFormat) IncludesChart() bool {
	return f.value == "graphique" || f.value == "complet"
}

// Equal checks equality with another ExplanationFormat.
func (f ExplanationFormat) Equal(other ExplanationFormat) bool {
	return f.value == other.value
}

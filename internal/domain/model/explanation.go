package model

// UnnamedFactor is the description used for features without a mapped label.
const UnnamedFactor = "Unnamed factor"

// FactorContribution is the attribution of one feature.
// Negative impact lowers the risk, positive impact raises it.
type FactorContribution struct {
	FeatureName  string  `json:"feature"`
	FeatureValue float64 `json:"valeur"`
	RawValue     string  `json:"valeur_brute,omitempty"`
	Impact       float64 `json:"impact"`
	Description  string  `json:"description"`
}

// IsFavorable reports whether the factor lowers the risk.
func (c FactorContribution) IsFavorable() bool { return c.Impact < 0 }

// Attributions is the full result of an available explanation.
type Attributions struct {
	Method string `json:"methode"`
	// Baseline plus the sum of all impacts equals Output.
	Baseline float64 `json:"valeur_base"`
	Output   float64 `json:"valeur_predite"`

	// Contributions follow schema order, one per feature.
	Contributions []FactorContribution `json:"contributions"`

	// Favorable and Unfavorable are sorted by absolute impact, largest first.
	Favorable   []FactorContribution `json:"facteurs_positifs"`
	Unfavorable []FactorContribution `json:"facteurs_negatifs"`

	TopK int `json:"top_k"`
}

// Sum returns the sum of all impacts.
func (a *Attributions) Sum() float64 {
	var s float64
	for _, c := range a.Contributions {
		s += c.Impact
	}
	return s
}

// KeyFavorable returns at most TopK favorable factors.
func (a *Attributions) KeyFavorable() []FactorContribution {
	return head(a.Favorable, a.TopK)
}

// KeyUnfavorable returns at most TopK unfavorable factors.
func (a *Attributions) KeyUnfavorable() []FactorContribution {
	return head(a.Unfavorable, a.TopK)
}

func head(s []FactorContribution, k int) []FactorContribution {
	if k < 0 || k >= len(s) {
		return s
	}
	return s[:k]
}

// Explanation is either available, carrying attributions, or unavailable,
// carrying a reason. Callers branch with Attributions().
type Explanation struct {
	attributions *Attributions
	reason       string
}

// ExplanationAvailable wraps computed attributions.
func ExplanationAvailable(a Attributions) Explanation {
	return Explanation{attributions: &a}
}

// ExplanationUnavailable records why attributions could not be produced.
func ExplanationUnavailable(reason string) Explanation {
	if reason == "" {
		reason = "explanation unavailable"
	}
	return Explanation{reason: reason}
}

// Attributions returns the attributions and true when the explanation is available.
func (e Explanation) Attributions() (*Attributions, bool) {
	return e.attributions, e.attributions != nil
}

// Available reports whether attributions were produced.
func (e Explanation) Available() bool { return e.attributions != nil }

// UnavailableReason returns the reason for an unavailable explanation, or "".
func (e Explanation) UnavailableReason() string { return e.reason }

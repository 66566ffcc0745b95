package service

import "github.com/bibbank/scoring-service/internal/domain/model"

// factorDescriptions maps feature names to the labels shown to credit officers.
var factorDescriptions = map[string]string{
	"age":                     "Âge",
	"revenu_mensuel":          "Revenu mensuel",
	"autres_revenus":          "Autres revenus",
	"anciennete_emploi":       "Ancienneté dans l'emploi actuel",
	"etat_civil":              "État civil",
	"nombre_enfants":          "Personnes à charge",
	"profession":              "Type d'emploi",
	"defauts_paiement":        "Antécédents de défaut",
	"dette_totale":            "Crédits existants",
	"montant_credit":          "Montant du crédit",
	"duree_credit":            "Durée du crédit en mois",
	"taux_interet":            "Taux d'intérêt",
	"type_credit":             "But du crédit",
	"avec_garantie":           "Présence d'une garantie",
	"valeur_garantie":         "Valeur de la garantie",
	"ratio_dette_revenu":      "Ratio dette / revenu",
	"ratio_mensualite_revenu": "Taux d'effort mensuel",
	"ratio_pret_garantie":     "Ratio prêt / garantie",
}

// DescribeFeature returns the human-readable label of a feature, or
// model.UnnamedFactor when none is mapped.
func DescribeFeature(name string) string {
	if d, ok := factorDescriptions[name]; ok {
		return d
	}
	return model.UnnamedFactor
}

package classification

import (
	"strings"

	"github.com/Veraticus/ledger-audit/internal/model"
)

// Markers holds the keyword sets the classification rules match against.
// All values are compared against upper-cased text.
type Markers struct {
	FinancialSubgroup string
	Transfer          []string
	Loan              []string
	InterAccount      []string
	ExternalFinancial []string
}

// DefaultMarkers returns the vocabulary used by the ledger's chart of accounts.
func DefaultMarkers() Markers {
	return Markers{
		FinancialSubgroup: "FINANCEIRO",
		Transfer: []string{
			"TRANSF. ENTRE CONTAS",
			"TRANSFERÊNCIA ENTRE CONTAS",
		},
		Loan:         []string{"EMPRÉSTIMO"},
		InterAccount: []string{"ENTRE CONTAS"},
		ExternalFinancial: []string{
			"APORTE",
			"SCP",
			"RECEITA APLICAÇÕES",
			"APLICAÇÕES FINANCEIRAS",
			"OUTRAS RECEITAS FINANCEIRAS",
			"RESULTADO DE PARTIC. SOCIETÁRIAS",
		},
	}
}

// Rule assigns Kind to every record whose category and subgroup satisfy Match.
type Rule struct {
	Match func(category, subgroup string) bool
	Name  string
	Kind  model.Kind
}

// Rule names, in evaluation order.
const (
	RuleTransfer          = "inter-account transfer"
	RuleInternalLoan      = "internal loan"
	RuleExternalMarker    = "external financial marker"
	RuleExternalLoan      = "third-party loan"
	RuleFinancialSubgroup = "financial subgroup default"
	RuleOperational       = "operational default"
)

// DefaultRules builds the ordered rule table for the given markers.
// Order matters: transfer and internal loan checks must run before the
// financial subgroup rules because a category can carry both markers.
func DefaultRules(m Markers) []Rule {
	financial := func(subgroup string) bool {
		return subgroup == strings.ToUpper(m.FinancialSubgroup)
	}

	return []Rule{
		{
			Name: RuleTransfer,
			Kind: model.KindInternalFinancial,
			Match: func(category, _ string) bool {
				return containsAny(category, m.Transfer)
			},
		},
		{
			Name: RuleInternalLoan,
			Kind: model.KindInternalFinancial,
			Match: func(category, subgroup string) bool {
				return containsAny(category, m.Loan) && financial(subgroup)
			},
		},
		{
			Name: RuleExternalMarker,
			Kind: model.KindExternalFinancial,
			Match: func(category, subgroup string) bool {
				return financial(subgroup) && containsAny(category, m.ExternalFinancial)
			},
		},
		{
			Name: RuleExternalLoan,
			Kind: model.KindExternalFinancial,
			Match: func(category, subgroup string) bool {
				return financial(subgroup) &&
					containsAny(category, m.Loan) &&
					!containsAny(category, m.InterAccount)
			},
		},
		{
			Name: RuleFinancialSubgroup,
			Kind: model.KindExternalFinancial,
			Match: func(_, subgroup string) bool {
				return financial(subgroup)
			},
		},
	}
}

// containsAny reports whether text contains any of the markers.
func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if marker != "" && strings.Contains(text, strings.ToUpper(marker)) {
			return true
		}
	}
	return false
}

package correction

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// amount renders a value with thousands grouping and two decimals, the
// notation memorial formulas have always used (e.g. 3,484,400.00).
func amount(v float64) string {
	return message.NewPrinter(language.English).Sprintf("%.2f", v)
}

func contributionDescription(v float64) string {
	return fmt.Sprintf("CONTRIBUTION: R$ %s", amount(v))
}

func amortizationDescription(group string, v float64) string {
	return fmt.Sprintf("AMORTIZATION %s: -R$ %s", group, amount(v))
}

// independentFormula documents one independently compounded contribution.
func independentFormula(original, monthlyRate, months, corrected float64) string {
	return fmt.Sprintf("R$ %s × (1 + %.6f)^%.4f = R$ %s",
		amount(original), monthlyRate/100, months, amount(corrected))
}

// stepFormula documents one event of the consolidated timeline.
func stepFormula(before, monthlyRate, months float64, description string, after float64) string {
	return fmt.Sprintf("Capital: R$ %s × (1 + %.6f)^%.4f + %s = R$ %s",
		amount(before), monthlyRate/100, months, description, amount(after))
}

// closingFormula documents the final compounding up to the base date.
func closingFormula(before, monthlyRate, months, after float64) string {
	return fmt.Sprintf("FINAL: R$ %s × (1 + %.6f)^%.4f = R$ %s",
		amount(before), monthlyRate/100, months, amount(after))
}

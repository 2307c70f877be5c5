package cli

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatBRL renders v in Brazilian reais, e.g. R$1.234,56.
func FormatBRL(v float64) string {
	cents := decimal.NewFromFloat(v).Round(2).Shift(2).IntPart()
	return money.New(cents, money.BRL).Display()
}

// FormatPercent renders a percentage with two decimals and an explicit sign.
func FormatPercent(v float64) string {
	if math.Abs(v) < 0.005 {
		return "0.00%"
	}
	return fmt.Sprintf("%+.2f%%", v)
}

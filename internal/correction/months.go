package correction

import (
	"math"
	"time"
)

// MonthsBetween returns the elapsed months from one date to another using
// 30-day months for the day component:
//
//	12*(to.Year-from.Year) + (to.Month-from.Month) + (to.Day-from.Day)/30
func MonthsBetween(from, to time.Time) float64 {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	return float64(months) + float64(to.Day()-from.Day())/30
}

// Factor returns the compound interest factor (1+rate/100)^months for a
// monthly rate expressed in percent.
func Factor(monthlyRate, months float64) float64 {
	return math.Pow(1+monthlyRate/100, months)
}

// compound applies interest to a positive balance over a positive period.
// The reported factor is 1 for empty periods and does not depend on the
// balance.
func compound(balance, months, monthlyRate float64) (compounded, factor float64) {
	if months <= 0 {
		return balance, 1
	}
	factor = Factor(monthlyRate, months)
	if balance > 0 {
		return balance * factor, factor
	}
	return balance, factor
}

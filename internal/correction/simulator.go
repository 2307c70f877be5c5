// Package correction computes the time-corrected value of capital
// contributions under monthly compound interest, optionally reduced by
// amortizing payments, and records every step in an audit memorial.
package correction

import (
	"strings"
	"time"

	"github.com/Veraticus/ledger-audit/internal/model"
)

// Mode identifies how a correction was computed.
type Mode string

// Correction modes.
const (
	// ModeIndependent compounds each contribution on its own up to the base date.
	ModeIndependent Mode = "INDEPENDENT"
	// ModeAmortizing runs one consolidated balance through a timeline of
	// contributions and amortizations.
	ModeAmortizing Mode = "AMORTIZING"
)

// Params configures a simulation run. BaseDate is required; callers that
// want "today" must resolve it themselves so runs stay reproducible.
// Rates and dates are not validated.
type Params struct {
	BaseDate            time.Time
	AmortizingGroup     string
	ContributionMarkers []string
	MonthlyRate         float64 // Percent per month, e.g. 0.9477
	AmortizationEnabled bool
}

// DefaultParams returns parameters with the default rate, group and markers.
func DefaultParams(baseDate time.Time) Params {
	return Params{
		BaseDate:            baseDate,
		MonthlyRate:         DefaultMonthlyRate,
		AmortizingGroup:     DefaultAmortizingGroup,
		ContributionMarkers: DefaultContributionMarkers(),
	}
}

// ContributionDetail is the corrected value attributed to one contribution.
type ContributionDetail struct {
	Event          model.ContributionEvent
	MonthsElapsed  float64 // From the contribution to the base date
	CorrectedValue float64
	Interest       float64
	// AggregateDerived marks values obtained by splitting the consolidated
	// balance in proportion to the original amounts. They are an
	// approximation and have not been independently compounded or verified.
	AggregateDerived bool
}

// Result is the outcome of a simulation run.
type Result struct {
	BaseDate       time.Time
	Mode           Mode
	Details        []ContributionDetail
	Memorial       []model.MemorialEntry
	Amortizations  []model.AmortizationEvent
	MonthlyRate    float64
	TotalOriginal  float64
	TotalCorrected float64
	TotalInterest  float64
}

// Simulate selects contributions and amortizations from records and
// corrects them. Amortizations are only considered when enabled; without
// any amortization event the contributions are compounded independently.
func Simulate(records []model.Record, p Params) Result {
	contributions := Contributions(records, p.ContributionMarkers)
	if len(contributions) == 0 {
		return emptyResult(p)
	}

	var amortizations []model.AmortizationEvent
	if p.AmortizationEnabled {
		amortizations = Amortizations(records, p.AmortizingGroup)
	}

	if len(amortizations) == 0 {
		return SimulateIndependent(contributions, p.MonthlyRate, p.BaseDate)
	}
	return SimulateAmortizing(contributions, amortizations, p.AmortizingGroup, p.MonthlyRate, p.BaseDate)
}

// SimulateIndependent compounds every contribution separately from its own
// date to baseDate. Totals are the sums over all contributions.
func SimulateIndependent(contributions []model.ContributionEvent, monthlyRate float64, baseDate time.Time) Result {
	result := Result{
		BaseDate:      baseDate,
		Mode:          ModeIndependent,
		MonthlyRate:   monthlyRate,
		Details:       make([]ContributionDetail, 0, len(contributions)),
		Memorial:      make([]model.MemorialEntry, 0, len(contributions)),
		Amortizations: []model.AmortizationEvent{},
	}

	for _, c := range contributions {
		months := MonthsBetween(c.Date, baseDate)
		factor := Factor(monthlyRate, months)
		corrected := c.OriginalAmount * factor
		interest := corrected - c.OriginalAmount

		result.Details = append(result.Details, ContributionDetail{
			Event:          c,
			MonthsElapsed:  months,
			CorrectedValue: corrected,
			Interest:       interest,
		})
		result.Memorial = append(result.Memorial, model.MemorialEntry{
			EventDate:        c.Date,
			EventDescription: contributionDescription(c.OriginalAmount),
			MonthsElapsed:    months,
			InterestFactor:   factor,
			BalanceBefore:    c.OriginalAmount,
			BalanceAfter:     corrected,
			InterestAccrued:  interest,
			Formula:          independentFormula(c.OriginalAmount, monthlyRate, months, corrected),
		})

		result.TotalOriginal += c.OriginalAmount
		result.TotalCorrected += corrected
		result.TotalInterest += interest
	}

	return result
}

// SimulateAmortizing runs the consolidated balance through the merged
// timeline. Per-contribution values are proportional shares of the final
// balance and are flagged AggregateDerived.
func SimulateAmortizing(contributions []model.ContributionEvent, amortizations []model.AmortizationEvent, amortizingGroup string, monthlyRate float64, baseDate time.Time) Result {
	amortizingGroup = strings.ToUpper(strings.TrimSpace(amortizingGroup))
	events := Timeline(contributions, amortizations, amortizingGroup)
	final, memorial := Fold(events, baseDate, monthlyRate)

	result := Result{
		BaseDate:       baseDate,
		Mode:           ModeAmortizing,
		MonthlyRate:    monthlyRate,
		Details:        make([]ContributionDetail, 0, len(contributions)),
		Memorial:       memorial,
		Amortizations:  append([]model.AmortizationEvent{}, amortizations...),
		TotalCorrected: final,
	}

	for _, c := range contributions {
		result.TotalOriginal += c.OriginalAmount
	}
	result.TotalInterest = result.TotalCorrected - result.TotalOriginal

	for _, c := range contributions {
		proportion := 0.0
		if result.TotalOriginal > 0 {
			proportion = c.OriginalAmount / result.TotalOriginal
		}
		corrected := result.TotalCorrected * proportion

		result.Details = append(result.Details, ContributionDetail{
			Event:            c,
			MonthsElapsed:    MonthsBetween(c.Date, baseDate),
			CorrectedValue:   corrected,
			Interest:         corrected - c.OriginalAmount,
			AggregateDerived: true,
		})
	}

	return result
}

func emptyResult(p Params) Result {
	return Result{
		BaseDate:      p.BaseDate,
		Mode:          ModeIndependent,
		MonthlyRate:   p.MonthlyRate,
		Details:       []ContributionDetail{},
		Memorial:      []model.MemorialEntry{},
		Amortizations: []model.AmortizationEvent{},
	}
}

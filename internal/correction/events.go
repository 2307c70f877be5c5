package correction

import (
	"sort"
	"strings"

	"github.com/Veraticus/ledger-audit/internal/model"
)

// DefaultAmortizingGroup is the group whose exits amortize contributions.
const DefaultAmortizingGroup = "BARILOCHE"

// DefaultMonthlyRate is the monthly correction rate, in percent.
const DefaultMonthlyRate = 0.9477

// DefaultContributionMarkers returns the category markers of capital contributions.
func DefaultContributionMarkers() []string {
	return []string{"APORTE", "SCP"}
}

// Contributions selects the records whose category carries a contribution
// marker, regardless of subgroup, in ledger order. The contributed amount is
// the record's entry amount.
func Contributions(records []model.Record, markers []string) []model.ContributionEvent {
	events := make([]model.ContributionEvent, 0)
	for _, r := range records {
		if !matchesAny(r.Category, markers) {
			continue
		}
		events = append(events, model.ContributionEvent{
			Date:           r.Date,
			RecordID:       r.ID,
			Group:          r.Group,
			Category:       r.Category,
			OriginalAmount: r.AmountIn,
		})
	}
	return events
}

// Amortizations selects the exits of the amortizing group sorted by date.
// Records sharing a date keep their ledger order.
func Amortizations(records []model.Record, group string) []model.AmortizationEvent {
	group = strings.ToUpper(strings.TrimSpace(group))
	events := make([]model.AmortizationEvent, 0)
	if group == "" {
		return events
	}

	for _, r := range records {
		if r.Group != group || !r.IsExit() {
			continue
		}
		events = append(events, model.AmortizationEvent{
			Date:     r.Date,
			RecordID: r.ID,
			Category: r.Category,
			Supplier: r.Supplier,
			Amount:   -r.AmountOut,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events
}

func matchesAny(text string, markers []string) bool {
	text = strings.ToUpper(text)
	for _, m := range markers {
		if m != "" && strings.Contains(text, strings.ToUpper(m)) {
			return true
		}
	}
	return false
}

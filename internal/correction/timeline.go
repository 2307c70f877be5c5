package correction

import (
	"sort"
	"time"

	"github.com/Veraticus/ledger-audit/internal/model"
)

// EventType distinguishes timeline events.
type EventType int

// Timeline event types.
const (
	EventContribution EventType = iota
	EventAmortization
)

// Event is one entry of the consolidated timeline.
type Event struct {
	Date        time.Time
	Description string
	Amount      float64 // Positive for both types
	Type        EventType
}

// Timeline merges contributions and amortizations into one date-ordered
// sequence. The sort is stable: contributions precede amortizations of the
// same date and each keeps its input order.
func Timeline(contributions []model.ContributionEvent, amortizations []model.AmortizationEvent, amortizingGroup string) []Event {
	events := make([]Event, 0, len(contributions)+len(amortizations))
	for _, c := range contributions {
		events = append(events, Event{
			Date:        c.Date,
			Type:        EventContribution,
			Amount:      c.OriginalAmount,
			Description: contributionDescription(c.OriginalAmount),
		})
	}
	for _, a := range amortizations {
		events = append(events, Event{
			Date:        a.Date,
			Type:        EventAmortization,
			Amount:      a.Amount,
			Description: amortizationDescription(amortizingGroup, a.Amount),
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events
}

// Accumulator is the state carried through the timeline fold.
type Accumulator struct {
	LastDate time.Time
	Balance  float64
}

// Step compounds the balance since the previous event, applies ev and
// returns the new state with the memorial row describing the step.
// Amortizations never take the balance below zero.
func Step(acc Accumulator, ev Event, monthlyRate float64) (Accumulator, model.MemorialEntry) {
	months := MonthsBetween(acc.LastDate, ev.Date)
	before := acc.Balance
	compounded, factor := compound(before, months, monthlyRate)

	after := compounded
	switch ev.Type {
	case EventContribution:
		after += ev.Amount
	case EventAmortization:
		after -= ev.Amount
		if after < 0 {
			after = 0
		}
	}

	entry := model.MemorialEntry{
		EventDate:        ev.Date,
		EventDescription: ev.Description,
		MonthsElapsed:    months,
		InterestFactor:   factor,
		BalanceBefore:    before,
		BalanceAfter:     after,
		InterestAccrued:  compounded - before,
		Formula:          stepFormula(before, monthlyRate, months, ev.Description, after),
	}

	return Accumulator{Balance: after, LastDate: ev.Date}, entry
}

// Close compounds the balance from the last event up to the base date.
func Close(acc Accumulator, baseDate time.Time, monthlyRate float64) (Accumulator, model.MemorialEntry) {
	months := MonthsBetween(acc.LastDate, baseDate)
	before := acc.Balance
	after, factor := compound(before, months, monthlyRate)

	entry := model.MemorialEntry{
		EventDate:        baseDate,
		EventDescription: closingDescription,
		MonthsElapsed:    months,
		InterestFactor:   factor,
		BalanceBefore:    before,
		BalanceAfter:     after,
		InterestAccrued:  after - before,
		Formula:          closingFormula(before, monthlyRate, months, after),
	}

	return Accumulator{Balance: after, LastDate: baseDate}, entry
}

const closingDescription = "FINAL BALANCE"

// Fold runs the timeline from a zero balance and returns the final balance
// and the memorial, one row per event plus the closing row.
func Fold(events []Event, baseDate time.Time, monthlyRate float64) (float64, []model.MemorialEntry) {
	memorial := make([]model.MemorialEntry, 0, len(events)+1)
	if len(events) == 0 {
		return 0, memorial
	}

	acc := Accumulator{LastDate: events[0].Date}
	var entry model.MemorialEntry
	for _, ev := range events {
		acc, entry = Step(acc, ev, monthlyRate)
		memorial = append(memorial, entry)
	}

	acc, entry = Close(acc, baseDate, monthlyRate)
	memorial = append(memorial, entry)

	return acc.Balance, memorial
}

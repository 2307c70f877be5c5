package model

import "time"

// ContributionEvent is a capital injection found in the ledger.
type ContributionEvent struct {
	Date           time.Time
	RecordID       string
	Group          string
	Category       string
	OriginalAmount float64
}

// AmortizationEvent is an exit of the amortizing group that reduces the
// outstanding contribution balance.
type AmortizationEvent struct {
	Date     time.Time
	RecordID string
	Category string
	Supplier string
	Amount   float64 // Positive
}

// MemorialEntry is one auditable step of a capital correction run.
type MemorialEntry struct {
	EventDate        time.Time
	EventDescription string
	Formula          string
	MonthsElapsed    float64
	InterestFactor   float64
	BalanceBefore    float64
	BalanceAfter     float64
	InterestAccrued  float64
}

// AccountBalance aggregates the records booked on one account.
type AccountBalance struct {
	Entries float64
	Exits   float64 // Always <= 0
	Net     float64
	Count   int
}

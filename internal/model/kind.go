package model

// Kind labels what a ledger record represents economically.
type Kind string

// Transaction kind constants.
const (
	// KindOperational is real operating revenue or expense.
	KindOperational Kind = "OPERATIONAL"
	// KindExternalFinancial is real financial movement with third parties
	// (contributions, investment income, bank fees, external loans).
	KindExternalFinancial Kind = "EXTERNAL_FINANCIAL"
	// KindInternalFinancial is movement between accounts of the same
	// entity; it nets to zero across the whole ledger.
	KindInternalFinancial Kind = "INTERNAL_FINANCIAL"
)

// Kinds lists every kind in reporting order.
func Kinds() []Kind {
	return []Kind{KindOperational, KindExternalFinancial, KindInternalFinancial}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindOperational, KindExternalFinancial, KindInternalFinancial:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}

// Classified pairs a record with its derived kind.
type Classified struct {
	Kind   Kind
	Record Record
}

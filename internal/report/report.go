// Package report derives dashboard aggregates from a ledger.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/Veraticus/ledger-audit/internal/model"
)

// Totals holds summed amounts. Exits keep their negative sign.
type Totals struct {
	Entries float64
	Exits   float64
	Net     float64
	Count   int
}

func (t *Totals) add(r model.Record) {
	t.Entries += r.AmountIn
	t.Exits += r.AmountOut
	t.Net += r.Net()
	t.Count++
}

// Summary holds headline indicators for a ledger.
type Summary struct {
	TotalEntries     float64
	TotalExits       float64 // Absolute value
	Net              float64
	MonthOverMonth   float64 // Percent change of the last month's net against the previous one
	AverageTicket    float64 // Absolute mean net per record
	TransactionCount int
}

// KPIs computes the headline indicators. The month-over-month variation
// compares the last two months that have records and is zero with fewer
// than two such months or a zero previous net.
func KPIs(records []model.Record) Summary {
	var s Summary
	if len(records) == 0 {
		return s
	}

	var totals Totals
	for _, r := range records {
		totals.add(r)
	}

	s.TotalEntries = totals.Entries
	s.TotalExits = math.Abs(totals.Exits)
	s.Net = s.TotalEntries - s.TotalExits
	s.TransactionCount = totals.Count
	s.AverageTicket = math.Abs(totals.Net / float64(totals.Count))

	months := make([]Month, 0)
	for _, m := range Monthly(records) {
		if m.Count > 0 {
			months = append(months, m)
		}
	}
	if len(months) >= 2 {
		current := months[len(months)-1].Net
		previous := months[len(months)-2].Net
		if previous != 0 {
			s.MonthOverMonth = (current - previous) / math.Abs(previous) * 100
		}
	}

	return s
}

// Month is the flow of one calendar month.
type Month struct {
	Start time.Time // First day of the month, UTC
	Totals
	Cumulative float64 // Running net including this month
}

// Monthly aggregates records per calendar month in chronological order.
// Months without records between the first and the last are included with
// zero totals so the cumulative balance reads as a continuous series.
func Monthly(records []model.Record) []Month {
	if len(records) == 0 {
		return []Month{}
	}

	byMonth := make(map[time.Time]*Totals)
	first, last := monthStart(records[0].Date), monthStart(records[0].Date)
	for _, r := range records {
		start := monthStart(r.Date)
		t, ok := byMonth[start]
		if !ok {
			t = &Totals{}
			byMonth[start] = t
		}
		t.add(r)
		if start.Before(first) {
			first = start
		}
		if start.After(last) {
			last = start
		}
	}

	months := make([]Month, 0)
	cumulative := 0.0
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		month := Month{Start: m}
		if t, ok := byMonth[m]; ok {
			month.Totals = *t
		}
		cumulative += month.Net
		month.Cumulative = cumulative
		months = append(months, month)
	}
	return months
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Row is an aggregate keyed by one or two labels.
type Row struct {
	Key    string
	SubKey string
	Totals
}

// ByGroup aggregates per group, largest absolute exits first.
func ByGroup(records []model.Record) []Row {
	return aggregate(records, func(r model.Record) (string, string) {
		return r.Group, ""
	}, byExits)
}

// ByCategory aggregates per subgroup and category, largest absolute exits first.
func ByCategory(records []model.Record) []Row {
	return aggregate(records, func(r model.Record) (string, string) {
		return r.Subgroup, r.Category
	}, byExits)
}

// Direction selects which side of the ledger a ranking uses.
type Direction int

// Ranking directions.
const (
	DirectionExits Direction = iota
	DirectionEntries
)

// Supplier is a supplier's total on one side of the ledger.
type Supplier struct {
	Name   string
	Amount float64 // Signed sum; negative for exits
}

// TopSuppliers returns the n suppliers with the largest absolute totals in
// the given direction. Ties are broken by name.
func TopSuppliers(records []model.Record, n int, dir Direction) []Supplier {
	sums := make(map[string]float64)
	for _, r := range records {
		if dir == DirectionEntries {
			sums[r.Supplier] += r.AmountIn
		} else {
			sums[r.Supplier] += r.AmountOut
		}
	}

	suppliers := make([]Supplier, 0, len(sums))
	for name, amount := range sums {
		suppliers = append(suppliers, Supplier{Name: name, Amount: amount})
	}
	sort.Slice(suppliers, func(i, j int) bool {
		ai, aj := math.Abs(suppliers[i].Amount), math.Abs(suppliers[j].Amount)
		if ai != aj {
			return ai > aj
		}
		return suppliers[i].Name < suppliers[j].Name
	})

	if n >= 0 && len(suppliers) > n {
		suppliers = suppliers[:n]
	}
	return suppliers
}

// FinancialSummary describes the records of the financial subgroup.
type FinancialSummary struct {
	ByCategory []Row // Largest net first
	Totals
}

// Financial summarizes the records whose subgroup equals subgroup.
func Financial(records []model.Record, subgroup string) FinancialSummary {
	selected := make([]model.Record, 0)
	for _, r := range records {
		if r.Subgroup == subgroup {
			selected = append(selected, r)
		}
	}

	var s FinancialSummary
	for _, r := range selected {
		s.add(r)
	}
	s.ByCategory = aggregate(selected, func(r model.Record) (string, string) {
		return r.Category, ""
	}, byNet)
	return s
}

func byExits(a, b Row) bool {
	ea, eb := math.Abs(a.Exits), math.Abs(b.Exits)
	if ea != eb {
		return ea > eb
	}
	return byKeys(a, b)
}

func byNet(a, b Row) bool {
	if a.Net != b.Net {
		return a.Net > b.Net
	}
	return byKeys(a, b)
}

func byKeys(a, b Row) bool {
	if a.Key != b.Key {
		return a.Key < b.Key
	}
	return a.SubKey < b.SubKey
}

func aggregate(records []model.Record, keyOf func(model.Record) (string, string), less func(a, b Row) bool) []Row {
	type key struct{ k, sub string }
	index := make(map[key]int)
	rows := make([]Row, 0)

	for _, r := range records {
		k, sub := keyOf(r)
		i, ok := index[key{k, sub}]
		if !ok {
			i = len(rows)
			index[key{k, sub}] = i
			rows = append(rows, Row{Key: k, SubKey: sub})
		}
		rows[i].add(r)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return less(rows[i], rows[j])
	})
	return rows
}

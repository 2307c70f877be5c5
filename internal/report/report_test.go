package report

import (
	"testing"
	"time"

	"github.com/Veraticus/ledger-audit/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(year int, month time.Month, group, subgroup, category, supplier string, in, out float64) model.Record {
	return model.NewRecord(time.Date(year, month, 10, 0, 0, 0, 0, time.UTC), group, subgroup, category, supplier, "FluxoAgata", in, out)
}

func ledger() []model.Record {
	return []model.Record{
		rec(2024, 1, "AGATA", "FINANCEIRO", "APORTE", "SOCIO", 1000, 0),
		rec(2024, 1, "AGATA", "CUSTO", "OBRA", "CONSTRUTORA", 0, 400),
		rec(2024, 3, "BARILOCHE", "CUSTO", "OBRA", "CONSTRUTORA", 0, 300),
		rec(2024, 3, "BARILOCHE", "FINANCEIRO", "TARIFAS", "BANCO", 0, 50),
		rec(2024, 3, "BARILOCHE", "RECEITA", "VENDAS", "CLIENTE", 900, 0),
	}
}

func TestKPIs(t *testing.T) {
	s := KPIs(ledger())

	assert.InDelta(t, 1900.0, s.TotalEntries, 1e-9)
	assert.InDelta(t, 750.0, s.TotalExits, 1e-9)
	assert.InDelta(t, 1150.0, s.Net, 1e-9)
	assert.Equal(t, 5, s.TransactionCount)
	assert.InDelta(t, 230.0, s.AverageTicket, 1e-9)
	// January net 600, March 550; February has no records and is skipped.
	assert.InDelta(t, -50.0/600*100, s.MonthOverMonth, 1e-9)
}

func TestKPIs_MonthOverMonth(t *testing.T) {
	records := []model.Record{
		rec(2024, 1, "A", "S", "C", "F", 200, 0),
		rec(2024, 2, "A", "S", "C", "F", 0, 100),
	}
	s := KPIs(records)
	assert.InDelta(t, -150.0, s.MonthOverMonth, 1e-9)

	single := KPIs(records[:1])
	assert.Equal(t, 0.0, single.MonthOverMonth)
}

func TestKPIs_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, KPIs(nil))
}

func TestMonthly(t *testing.T) {
	months := Monthly(ledger())
	require.Len(t, months, 3)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), months[0].Start)
	assert.InDelta(t, 600.0, months[0].Net, 1e-9)
	assert.InDelta(t, 600.0, months[0].Cumulative, 1e-9)

	assert.Equal(t, time.February, months[1].Start.Month())
	assert.Equal(t, 0, months[1].Count)
	assert.InDelta(t, 600.0, months[1].Cumulative, 1e-9)

	assert.InDelta(t, 550.0, months[2].Net, 1e-9)
	assert.InDelta(t, -350.0, months[2].Exits, 1e-9)
	assert.InDelta(t, 1150.0, months[2].Cumulative, 1e-9)

	assert.Empty(t, Monthly(nil))
}

func TestByGroup(t *testing.T) {
	rows := ByGroup(ledger())
	require.Len(t, rows, 2)

	assert.Equal(t, "AGATA", rows[0].Key)
	assert.InDelta(t, -400.0, rows[0].Exits, 1e-9)
	assert.Equal(t, "BARILOCHE", rows[1].Key)
	assert.InDelta(t, -350.0, rows[1].Exits, 1e-9)
	assert.InDelta(t, 550.0, rows[1].Net, 1e-9)
}

func TestByCategory(t *testing.T) {
	rows := ByCategory(ledger())
	require.Len(t, rows, 4)

	assert.Equal(t, "CUSTO", rows[0].Key)
	assert.Equal(t, "OBRA", rows[0].SubKey)
	assert.InDelta(t, -700.0, rows[0].Exits, 1e-9)
	assert.Equal(t, 2, rows[0].Count)

	assert.Equal(t, "TARIFAS", rows[1].SubKey)
	// Rows without exits are ordered by key.
	assert.Equal(t, "FINANCEIRO", rows[2].Key)
	assert.Equal(t, "RECEITA", rows[3].Key)
}

func TestTopSuppliers(t *testing.T) {
	records := ledger()

	exits := TopSuppliers(records, 2, DirectionExits)
	require.Len(t, exits, 2)
	assert.Equal(t, Supplier{Name: "CONSTRUTORA", Amount: -700}, exits[0])
	assert.Equal(t, Supplier{Name: "BANCO", Amount: -50}, exits[1])

	entries := TopSuppliers(records, 10, DirectionEntries)
	require.Len(t, entries, 4)
	assert.Equal(t, "SOCIO", entries[0].Name)
	assert.Equal(t, "CLIENTE", entries[1].Name)
	assert.Equal(t, 0.0, entries[2].Amount)

	assert.Empty(t, TopSuppliers(nil, 5, DirectionExits))
}

func TestFinancial(t *testing.T) {
	s := Financial(ledger(), "FINANCEIRO")

	assert.Equal(t, 2, s.Count)
	assert.InDelta(t, 1000.0, s.Entries, 1e-9)
	assert.InDelta(t, -50.0, s.Exits, 1e-9)
	assert.InDelta(t, 950.0, s.Net, 1e-9)
	require.Len(t, s.ByCategory, 2)
	assert.Equal(t, "APORTE", s.ByCategory[0].Key)
	assert.Equal(t, "TARIFAS", s.ByCategory[1].Key)

	empty := Financial(ledger(), "INEXISTENTE")
	assert.Equal(t, 0, empty.Count)
	assert.Empty(t, empty.ByCategory)
}

package query

import (
	"testing"
	"time"

	"github.com/Veraticus/ledger-audit/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func ledger() []model.Record {
	return []model.Record{
		model.NewRecord(day(1), "Agata", "Financeiro", "Aporte", "Socio", "FluxoAgata", 1000, 0),
		model.NewRecord(day(5), "Bariloche", "Custo", "Obra", "Construtora", "FluxoBariloche", 0, 300),
		model.NewRecord(day(10), "Agata", "Financeiro", "TRANSF. ENTRE CONTAS", "Banco", "FluxoAgata", 0, 200),
		model.NewRecord(day(15), "Northside", "Financeiro", "Empréstimos bancários", "Banco", "FluxoLifecon5", 500, 0),
		model.NewRecord(day(20), "Bariloche", "Custo", "Obra", "Construtora", "FluxoBariloche", 0, 100),
	}
}

func ptr(t time.Time) *time.Time { return &t }

func TestFilter(t *testing.T) {
	records := ledger()

	tests := []struct {
		name     string
		criteria Criteria
		wantDays []int
	}{
		{name: "empty criteria keeps everything", criteria: Criteria{}, wantDays: []int{1, 5, 10, 15, 20}},
		{name: "inclusive date bounds", criteria: Criteria{From: ptr(day(5)), To: ptr(day(15))}, wantDays: []int{5, 10, 15}},
		{name: "from only", criteria: Criteria{From: ptr(day(15))}, wantDays: []int{15, 20}},
		{name: "group", criteria: Criteria{Groups: []string{"bariloche"}}, wantDays: []int{5, 20}},
		{name: "supplier", criteria: Criteria{Suppliers: []string{"BANCO"}}, wantDays: []int{10, 15}},
		{name: "category", criteria: Criteria{Categories: []string{"APORTE", "OBRA"}}, wantDays: []int{1, 5, 20}},
		{
			name:     "combined",
			criteria: Criteria{Groups: []string{"AGATA"}, Suppliers: []string{"BANCO"}, To: ptr(day(31))},
			wantDays: []int{10},
		},
		{name: "no match", criteria: Criteria{Groups: []string{"OUTRO"}}, wantDays: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(records, tt.criteria)
			days := make([]int, 0, len(got))
			for _, r := range got {
				days = append(days, r.Date.Day())
			}
			assert.Equal(t, tt.wantDays, days)
		})
	}
}

func TestFilter_DoesNotMutate(t *testing.T) {
	records := ledger()
	before := append([]model.Record{}, records...)

	Filter(records, Criteria{Groups: []string{"AGATA"}})
	assert.Equal(t, before, records)
}

func TestCriteria_IsEmpty(t *testing.T) {
	assert.True(t, Criteria{}.IsEmpty())
	assert.False(t, Criteria{From: ptr(day(1))}.IsEmpty())
	assert.False(t, Criteria{Suppliers: []string{"X"}}.IsEmpty())
}

func TestExcludeCategories(t *testing.T) {
	got := ExcludeCategories(ledger(), DefaultInternalMarkers()...)
	require.Len(t, got, 3)
	for _, r := range got {
		assert.NotContains(t, r.Category, "ENTRE CONTAS")
		assert.NotContains(t, r.Category, "EMPRÉSTIMOS")
	}

	assert.Len(t, ExcludeCategories(ledger()), 5)
}

func TestDistinct(t *testing.T) {
	records := ledger()

	assert.Equal(t, []string{"AGATA", "BARILOCHE", "NORTHSIDE"}, Distinct(records, FieldGroup))
	assert.Equal(t, []string{"BANCO", "CONSTRUTORA", "SOCIO"}, Distinct(records, FieldSupplier))
	assert.Equal(t, []string{"FluxoAgata", "FluxoBariloche", "FluxoLifecon5"}, Distinct(records, FieldAccount))
	assert.Empty(t, Distinct(records, Field("unknown")))
	assert.Empty(t, Distinct(nil, FieldGroup))
}

func TestPeriod(t *testing.T) {
	records := ledger()
	records[0], records[4] = records[4], records[0]

	from, to, ok := Period(records)
	require.True(t, ok)
	assert.Equal(t, day(1), from)
	assert.Equal(t, day(20), to)

	_, _, ok = Period(nil)
	assert.False(t, ok)
}

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/ledger-audit/internal/balance"
	"github.com/Veraticus/ledger-audit/internal/classification"
	"github.com/Veraticus/ledger-audit/internal/correction"
	"github.com/Veraticus/ledger-audit/internal/model"
	"github.com/Veraticus/ledger-audit/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		want  string
		value float64
	}{
		{value: 0, want: "R$0,00"},
		{value: 1234.56, want: "R$1.234,56"},
		{value: -50, want: "-R$50,00"},
		{value: 3484400, want: "R$3.484.400,00"},
		{value: 0.005, want: "R$0,01"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBRL(tt.value))
		})
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "+12.50%", FormatPercent(12.5))
	assert.Equal(t, "-8.33%", FormatPercent(-8.333))
	assert.Equal(t, "0.00%", FormatPercent(0.001))
}

func TestFormatMessages(t *testing.T) {
	assert.Contains(t, FormatSuccess("saved"), "saved")
	assert.Contains(t, FormatError("failed"), ErrorIcon)
	assert.Contains(t, FormatWarning("skipped"), "skipped")
	assert.Contains(t, FormatInfo("note"), "note")
	assert.Contains(t, FormatTitle("Balances"), "Balances")
	assert.Contains(t, StyleAmount(-1, "neg"), "neg")
}

func TestRenderKinds(t *testing.T) {
	var buf bytes.Buffer
	summary := map[model.Kind]classification.KindSummary{
		model.KindOperational: {Entries: 100, Exits: -40, Net: 60, Count: 2},
	}

	RenderKinds(&buf, summary)

	out := buf.String()
	for _, k := range model.Kinds() {
		assert.Contains(t, out, k.String())
	}
	assert.Contains(t, out, "R$60,00")
}

func TestRenderRecords(t *testing.T) {
	var buf bytes.Buffer
	r := model.NewRecord(date(2024, 3, 5), "AGATA", "CUSTO", "OBRA", "CONSTRUTORA", "FluxoAgata", 0, 250)

	RenderRecords(&buf, []model.Classified{{Record: r, Kind: model.KindOperational}})

	out := buf.String()
	assert.Contains(t, out, "05/03/2024")
	assert.Contains(t, out, "CONSTRUTORA")
	assert.Contains(t, out, "-R$250,00")
	assert.Contains(t, out, "OPERATIONAL")
}

func TestRenderAccountsAndEntities(t *testing.T) {
	balances := map[string]model.AccountBalance{
		"FluxoAgata":     {Entries: 500, Exits: -100, Net: 400, Count: 3},
		"FluxoBariloche": {Entries: 0, Exits: -50, Net: -50, Count: 1},
	}
	mapping := balance.EntityMapping{
		"ÁGATA":     {"FluxoAgata"},
		"BARILOCHE": {"FluxoBariloche"},
	}

	var accounts bytes.Buffer
	RenderAccounts(&accounts, balances)
	out := accounts.String()
	assert.Less(t, strings.Index(out, "FluxoAgata"), strings.Index(out, "FluxoBariloche"))
	assert.Contains(t, out, "R$400,00")

	var entities bytes.Buffer
	RenderEntities(&entities, balance.Consolidate(balances, mapping), mapping)
	out = entities.String()
	assert.Contains(t, out, "ÁGATA")
	assert.Contains(t, out, "R$350,00")
}

func TestRenderCorrection(t *testing.T) {
	contributions := []model.ContributionEvent{
		{Date: date(2023, 1, 1), Group: "BARILOCHE", Category: "APORTE", OriginalAmount: 1000, RecordID: "a"},
	}
	amortizations := []model.AmortizationEvent{
		{Date: date(2023, 6, 1), Category: "OBRA", Amount: 200, RecordID: "b"},
	}
	result := correction.SimulateAmortizing(contributions, amortizations, "BARILOCHE", 1, date(2024, 1, 1))

	var memorial bytes.Buffer
	RenderMemorial(&memorial, result.Memorial)
	assert.Contains(t, memorial.String(), "FINAL BALANCE")
	assert.Contains(t, memorial.String(), "01/01/2024")

	var formulas bytes.Buffer
	require.NoError(t, RenderFormulas(&formulas, result.Memorial))
	lines := strings.Split(strings.TrimSpace(formulas.String()), "\n")
	assert.Len(t, lines, len(result.Memorial))
	assert.Contains(t, lines[len(lines)-1], "FINAL:")

	var details bytes.Buffer
	RenderDetails(&details, result)
	assert.Contains(t, details.String(), "*")
	assert.Contains(t, details.String(), "R$1.000,00")
}

func TestRenderReports(t *testing.T) {
	records := []model.Record{
		model.NewRecord(date(2024, 1, 10), "AGATA", "CUSTO", "OBRA", "CONSTRUTORA", "FluxoAgata", 0, 300),
		model.NewRecord(date(2024, 2, 10), "AGATA", "RECEITA", "VENDAS", "CLIENTE", "FluxoAgata", 900, 0),
	}

	var rows bytes.Buffer
	RenderRows(&rows, "Subgroup", "Category", report.ByCategory(records))
	assert.Contains(t, rows.String(), "Category")
	assert.Contains(t, rows.String(), "OBRA")

	var groups bytes.Buffer
	RenderRows(&groups, "Group", "", report.ByGroup(records))
	assert.NotContains(t, groups.String(), "Category")

	var months bytes.Buffer
	RenderMonthly(&months, report.Monthly(records))
	assert.Contains(t, months.String(), "02/2024")
	assert.Contains(t, months.String(), "R$600,00")

	var suppliers bytes.Buffer
	RenderSuppliers(&suppliers, report.TopSuppliers(records, 1, report.DirectionExits))
	assert.Contains(t, suppliers.String(), "CONSTRUTORA")
	assert.NotContains(t, suppliers.String(), "CLIENTE")

	box := SummaryBox("Summary", report.KPIs(records))
	assert.Contains(t, box, "R$900,00")
}

func TestRenderImports(t *testing.T) {
	var buf bytes.Buffer
	RenderImports(&buf, []model.Import{
		{ID: "abc", Source: "fluxo.csv", Format: "csv", RecordCount: 12, ImportedAt: time.Now()},
	})
	assert.Contains(t, buf.String(), "fluxo.csv")
	assert.Contains(t, buf.String(), "12")
}

func TestInterruptHandler(t *testing.T) {
	var buf bytes.Buffer
	h := NewInterruptHandler(&buf, "ledger import")

	ctx, stop := h.HandleInterrupts(context.Background())
	assert.NoError(t, ctx.Err())
	assert.False(t, h.WasInterrupted())

	h.interrupt()
	assert.True(t, h.WasInterrupted())
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Contains(t, buf.String(), "ledger import")

	stop()
	stop()
}

func TestNewProgress(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgress(&buf, 2, "Importing files...")

	require.NoError(t, bar.Add(1))
	require.NoError(t, bar.Add(1))
	assert.True(t, bar.IsFinished())
	assert.Contains(t, buf.String(), "Importing files...")
}

package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Veraticus/ledger-audit/internal/balance"
	"github.com/Veraticus/ledger-audit/internal/classification"
	"github.com/Veraticus/ledger-audit/internal/correction"
	"github.com/Veraticus/ledger-audit/internal/ledger"
	"github.com/Veraticus/ledger-audit/internal/model"
	"github.com/Veraticus/ledger-audit/internal/report"
	"github.com/olekukonko/tablewriter"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(false)
	return t
}

// alignRight right-aligns the columns at the given indexes.
func alignRight(t *tablewriter.Table, columns int, indexes ...int) {
	align := make([]int, columns)
	for _, i := range indexes {
		align[i] = tablewriter.ALIGN_RIGHT
	}
	t.SetColumnAlignment(align)
}

func recordDate(r model.Record) string {
	return r.Date.Format(ledger.DateLayout)
}

// RenderRecords writes one row per record with its kind.
func RenderRecords(w io.Writer, records []model.Classified) {
	t := newTable(w, "Date", "Account", "Group", "Category", "Supplier", "Entry", "Exit", "Kind")
	alignRight(t, 8, 5, 6)
	for _, c := range records {
		t.Append([]string{
			recordDate(c.Record),
			c.Record.Account,
			c.Record.Group,
			c.Record.Category,
			c.Record.Supplier,
			FormatBRL(c.Record.AmountIn),
			FormatBRL(c.Record.AmountOut),
			c.Kind.String(),
		})
	}
	t.Render()
}

// RenderKinds writes the per-kind totals in reporting order.
func RenderKinds(w io.Writer, summary map[model.Kind]classification.KindSummary) {
	t := newTable(w, "Kind", "Records", "Entries", "Exits", "Net")
	alignRight(t, 5, 1, 2, 3, 4)
	for _, k := range model.Kinds() {
		s := summary[k]
		t.Append([]string{
			k.String(),
			strconv.Itoa(s.Count),
			FormatBRL(s.Entries),
			FormatBRL(s.Exits),
			FormatBRL(s.Net),
		})
	}
	t.Render()
}

// RenderAccounts writes the balance of every account, sorted by name.
func RenderAccounts(w io.Writer, balances map[string]model.AccountBalance) {
	t := newTable(w, "Account", "Records", "Entries", "Exits", "Net")
	alignRight(t, 5, 1, 2, 3, 4)
	for _, name := range balance.Accounts(balances) {
		b := balances[name]
		t.Append([]string{
			name,
			strconv.Itoa(b.Count),
			FormatBRL(b.Entries),
			FormatBRL(b.Exits),
			FormatBRL(b.Net),
		})
	}
	t.Render()
}

// RenderEntities writes the consolidated net of each entity and the total.
func RenderEntities(w io.Writer, c balance.Consolidated, mapping balance.EntityMapping) {
	t := newTable(w, "Entity", "Accounts", "Net")
	alignRight(t, 3, 2)
	for _, name := range mapping.Entities() {
		t.Append([]string{
			name,
			strconv.Itoa(len(mapping[name])),
			FormatBRL(c.Entities[name]),
		})
	}
	t.SetFooter([]string{"", "Total", FormatBRL(c.Total)})
	t.Render()
}

// RenderMemorial writes the audit memorial of a correction run.
func RenderMemorial(w io.Writer, memorial []model.MemorialEntry) {
	t := newTable(w, "Date", "Event", "Months", "Factor", "Before", "Interest", "After")
	alignRight(t, 7, 2, 3, 4, 5, 6)
	for _, m := range memorial {
		t.Append([]string{
			m.EventDate.Format(ledger.DateLayout),
			m.EventDescription,
			fmt.Sprintf("%.4f", m.MonthsElapsed),
			fmt.Sprintf("%.6f", m.InterestFactor),
			FormatBRL(m.BalanceBefore),
			FormatBRL(m.InterestAccrued),
			FormatBRL(m.BalanceAfter),
		})
	}
	t.Render()
}

// RenderFormulas writes the formula of each memorial entry, one per line.
func RenderFormulas(w io.Writer, memorial []model.MemorialEntry) error {
	for i, m := range memorial {
		if _, err := fmt.Fprintf(w, "%3d. %s  %s\n", i+1, m.EventDate.Format(ledger.DateLayout), m.Formula); err != nil {
			return err
		}
	}
	return nil
}

// RenderDetails writes the corrected value of each contribution. Values
// split from the consolidated balance are marked with an asterisk.
func RenderDetails(w io.Writer, result correction.Result) {
	t := newTable(w, "Date", "Group", "Category", "Original", "Months", "Corrected", "Interest")
	alignRight(t, 7, 3, 4, 5, 6)
	for _, d := range result.Details {
		corrected := FormatBRL(d.CorrectedValue)
		if d.AggregateDerived {
			corrected += "*"
		}
		t.Append([]string{
			d.Event.Date.Format(ledger.DateLayout),
			d.Event.Group,
			d.Event.Category,
			FormatBRL(d.Event.OriginalAmount),
			fmt.Sprintf("%.2f", d.MonthsElapsed),
			corrected,
			FormatBRL(d.Interest),
		})
	}
	t.SetFooter([]string{"", "", "Total",
		FormatBRL(result.TotalOriginal), "",
		FormatBRL(result.TotalCorrected),
		FormatBRL(result.TotalInterest)})
	t.Render()
}

// RenderRows writes aggregate rows. subLabel names the second key column
// and is omitted when empty.
func RenderRows(w io.Writer, label, subLabel string, rows []report.Row) {
	header := []string{label}
	if subLabel != "" {
		header = append(header, subLabel)
	}
	header = append(header, "Records", "Entries", "Exits", "Net")

	t := newTable(w, header...)
	offset := len(header) - 4
	alignRight(t, len(header), offset, offset+1, offset+2, offset+3)
	for _, r := range rows {
		line := []string{r.Key}
		if subLabel != "" {
			line = append(line, r.SubKey)
		}
		line = append(line,
			strconv.Itoa(r.Count),
			FormatBRL(r.Entries),
			FormatBRL(r.Exits),
			FormatBRL(r.Net))
		t.Append(line)
	}
	t.Render()
}

// RenderMonthly writes the monthly flow with its running total.
func RenderMonthly(w io.Writer, months []report.Month) {
	t := newTable(w, "Month", "Records", "Entries", "Exits", "Net", "Cumulative")
	alignRight(t, 6, 1, 2, 3, 4, 5)
	for _, m := range months {
		t.Append([]string{
			m.Start.Format("01/2006"),
			strconv.Itoa(m.Count),
			FormatBRL(m.Entries),
			FormatBRL(m.Exits),
			FormatBRL(m.Net),
			FormatBRL(m.Cumulative),
		})
	}
	t.Render()
}

// RenderSuppliers writes a supplier ranking.
func RenderSuppliers(w io.Writer, suppliers []report.Supplier) {
	t := newTable(w, "#", "Supplier", "Amount")
	alignRight(t, 3, 0, 2)
	for i, s := range suppliers {
		t.Append([]string{strconv.Itoa(i + 1), s.Name, FormatBRL(s.Amount)})
	}
	t.Render()
}

// RenderImports writes the stored import batches.
func RenderImports(w io.Writer, imports []model.Import) {
	t := newTable(w, "ID", "Imported", "Source", "Format", "Records")
	alignRight(t, 5, 4)
	for _, imp := range imports {
		t.Append([]string{
			imp.ID,
			imp.ImportedAt.Local().Format("2006-01-02 15:04"),
			imp.Source,
			imp.Format,
			strconv.Itoa(imp.RecordCount),
		})
	}
	t.Render()
}

// SummaryBox renders the headline indicators of a ledger.
func SummaryBox(title string, s report.Summary) string {
	content := fmt.Sprintf("%s %s\n%s %s\n%s %s\n%s %s\n%s %s\n%s %d",
		BoldStyle.Render("Entries:"), SuccessStyle.Render(FormatBRL(s.TotalEntries)),
		BoldStyle.Render("Exits:"), ErrorStyle.Render(FormatBRL(s.TotalExits)),
		BoldStyle.Render("Net:"), StyleAmount(s.Net, FormatBRL(s.Net)),
		BoldStyle.Render("Month over month:"), StyleAmount(s.MonthOverMonth, FormatPercent(s.MonthOverMonth)),
		BoldStyle.Render("Average ticket:"), FormatBRL(s.AverageTicket),
		BoldStyle.Render("Records:"), s.TransactionCount)
	return RenderBox(ChartIcon+" "+title, content)
}

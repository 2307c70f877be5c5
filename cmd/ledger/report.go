package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/ledger-audit/internal/chart"
	"github.com/Veraticus/ledger-audit/internal/classification"
	"github.com/Veraticus/ledger-audit/internal/cli"
	"github.com/Veraticus/ledger-audit/internal/common"
	"github.com/Veraticus/ledger-audit/internal/config"
	"github.com/Veraticus/ledger-audit/internal/model"
	"github.com/Veraticus/ledger-audit/internal/query"
	"github.com/Veraticus/ledger-audit/internal/report"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the ledger: KPIs, monthly flow, groups and suppliers",
		RunE:  runReport,
	}

	addLedgerFlags(cmd)
	cmd.Flags().Bool("operational", false, "leave out internal financial movements")
	cmd.Flags().Bool("exclude-financial", false, "leave out transfers and loans by category")
	cmd.Flags().Int("top", 10, "number of suppliers to rank")
	cmd.Flags().String("direction", "exits", "supplier ranking side (exits, entries)")
	cmd.Flags().String("chart", "", "write a PNG chart of the monthly net flow to this path")

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	records, err := loadLedger(cmd)
	if err != nil {
		return err
	}

	if operational, _ := cmd.Flags().GetBool("operational"); operational {
		records = newClassifier().Exclude(records, model.KindInternalFinancial)
	}
	if exclude, _ := cmd.Flags().GetBool("exclude-financial"); exclude {
		records = query.ExcludeCategories(records, query.DefaultInternalMarkers()...)
	}

	direction, err := parseDirection(cmd)
	if err != nil {
		return err
	}
	top, _ := cmd.Flags().GetInt("top")

	out := cmd.OutOrStdout()
	if from, to, ok := query.Period(records); ok {
		slog.Info(cli.FormatInfo(fmt.Sprintf("Period %s to %s", from.Format("02/01/2006"), to.Format("02/01/2006"))))
	}

	_, _ = fmt.Fprintln(out, cli.SummaryBox("Summary", report.KPIs(records)))

	months := report.Monthly(records)
	printTitle(out, "Monthly flow")
	cli.RenderMonthly(out, months)

	printTitle(out, "By group")
	cli.RenderRows(out, "Group", "", report.ByGroup(records))

	printTitle(out, "By category")
	cli.RenderRows(out, "Subgroup", "Category", report.ByCategory(records))

	printTitle(out, fmt.Sprintf("Top %d suppliers", top))
	cli.RenderSuppliers(out, report.TopSuppliers(records, top, direction))

	subgroup := classification.DefaultMarkers().FinancialSubgroup
	financial := report.Financial(records, subgroup)
	if financial.Count > 0 {
		printTitle(out, "Financial subgroup")
		cli.RenderRows(out, "Category", "", financial.ByCategory)
		slog.Info(fmt.Sprintf("%s net: %s over %d records", subgroup, cli.FormatBRL(financial.Net), financial.Count))
	}

	if path, _ := cmd.Flags().GetString("chart"); path != "" {
		if err := writeMonthlyChart(config.ExpandPath(path), months); err != nil {
			return err
		}
		slog.Info(cli.FormatSuccess(cli.ChartIcon + " Chart saved to " + path))
	}
	return nil
}

func parseDirection(cmd *cobra.Command) (report.Direction, error) {
	value, _ := cmd.Flags().GetString("direction")
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "exits", "":
		return report.DirectionExits, nil
	case "entries":
		return report.DirectionEntries, nil
	default:
		return 0, fmt.Errorf("%w: direction %q (want exits or entries)", common.ErrInvalidInput, value)
	}
}

func writeMonthlyChart(path string, months []report.Month) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return chart.MonthlyNet(f, months)
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/ledger-audit/internal/chart"
	"github.com/Veraticus/ledger-audit/internal/cli"
	"github.com/Veraticus/ledger-audit/internal/config"
	"github.com/Veraticus/ledger-audit/internal/correction"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func correctCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correct",
		Short: "Correct capital contributions for time",
		Long: `Compound every capital contribution at a monthly rate up to the base date.

With --amortize, exits of the amortizing group reduce one consolidated
balance in date order and the memorial records every step.`,
		RunE: runCorrect,
	}

	addLedgerFlags(cmd)
	cmd.Flags().Float64("rate", correction.DefaultMonthlyRate, "monthly rate in percent")
	cmd.Flags().Bool("amortize", false, "deduct amortizations of the amortizing group")
	cmd.Flags().String("base-date", "", "date to correct to (default: today)")
	cmd.Flags().Bool("memorial", false, "print the step-by-step memorial")
	cmd.Flags().Bool("formulas", false, "print the formula of every memorial step")
	cmd.Flags().Bool("compare", false, "also run the other mode and show the difference")
	cmd.Flags().String("chart", "", "write a PNG chart of the capital balance to this path")

	_ = viper.BindPFlag(config.KeyMonthlyRate, cmd.Flags().Lookup("rate"))

	return cmd
}

func runCorrect(cmd *cobra.Command, _ []string) error {
	cfg, err := loadAnalysis()
	if err != nil {
		return err
	}

	value, _ := cmd.Flags().GetString("base-date")
	baseDate, err := resolveBaseDate(value, time.Now())
	if err != nil {
		return err
	}

	records, err := loadLedger(cmd)
	if err != nil {
		return err
	}

	amortize, _ := cmd.Flags().GetBool("amortize")
	cache := correction.NewCache(records, correction.Params{
		BaseDate:            baseDate,
		AmortizingGroup:     cfg.AmortizingGroup,
		ContributionMarkers: cfg.ContributionMarkers,
	})
	result := cache.Get(cfg.MonthlyRate, amortize)

	out := cmd.OutOrStdout()
	if len(result.Details) == 0 {
		slog.Info(cli.FormatInfo("No capital contributions found"))
		return nil
	}

	printTitle(out, fmt.Sprintf("Capital correction to %s", baseDate.Format("02/01/2006")))
	cli.RenderDetails(out, result)
	_, _ = fmt.Fprintln(out, correctionBox(result))

	if amortize && result.Mode == correction.ModeIndependent {
		slog.Info(cli.FormatInfo("No amortizations found for " + cfg.AmortizingGroup + "; contributions compounded independently"))
	}
	if result.Mode == correction.ModeAmortizing {
		slog.Warn(cli.FormatWarning("Values marked * are proportional shares of the consolidated balance"))
	}

	if memorial, _ := cmd.Flags().GetBool("memorial"); memorial {
		printTitle(out, "Memorial")
		cli.RenderMemorial(out, result.Memorial)
	}
	if formulas, _ := cmd.Flags().GetBool("formulas"); formulas {
		printTitle(out, "Formulas")
		if err := cli.RenderFormulas(out, result.Memorial); err != nil {
			return err
		}
	}

	if compare, _ := cmd.Flags().GetBool("compare"); compare {
		other := cache.Get(cfg.MonthlyRate, !amortize)
		slog.Info(cli.FormatInfo(fmt.Sprintf("%s: %s  %s: %s  difference: %s",
			result.Mode, cli.FormatBRL(result.TotalCorrected),
			other.Mode, cli.FormatBRL(other.TotalCorrected),
			cli.FormatBRL(result.TotalCorrected-other.TotalCorrected))))
	}

	if path, _ := cmd.Flags().GetString("chart"); path != "" {
		if err := writeBalanceChart(config.ExpandPath(path), result); err != nil {
			return err
		}
		slog.Info(cli.FormatSuccess(cli.ChartIcon + " Chart saved to " + path))
	}

	return nil
}

func correctionBox(r correction.Result) string {
	content := fmt.Sprintf("%s %s\n%s %.4f%% a.m.\n%s %s\n%s %s\n%s %s",
		cli.BoldStyle.Render("Mode:"), r.Mode,
		cli.BoldStyle.Render("Rate:"), r.MonthlyRate,
		cli.BoldStyle.Render("Contributed:"), cli.FormatBRL(r.TotalOriginal),
		cli.BoldStyle.Render("Corrected:"), cli.SuccessStyle.Render(cli.FormatBRL(r.TotalCorrected)),
		cli.BoldStyle.Render("Interest:"), cli.FormatBRL(r.TotalInterest))
	if len(r.Amortizations) > 0 {
		total := 0.0
		for _, a := range r.Amortizations {
			total += a.Amount
		}
		content += fmt.Sprintf("\n%s %s (%d)",
			cli.BoldStyle.Render("Amortized:"), cli.ErrorStyle.Render(cli.FormatBRL(total)), len(r.Amortizations))
	}
	return cli.RenderBox("Totals", content)
}

func writeBalanceChart(path string, result correction.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return chart.Balance(f, result)
}

package main

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/Veraticus/ledger-audit/internal/cli"
	"github.com/spf13/cobra"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify records into operational and financial kinds",
		Long: `Classify every record as OPERATIONAL, EXTERNAL_FINANCIAL or
INTERNAL_FINANCIAL from its category and subgroup, and total each kind.`,
		RunE: runClassify,
	}

	addLedgerFlags(cmd)
	cmd.Flags().Bool("list", false, "print every record with its kind")
	cmd.Flags().Bool("rules", false, "show how many records each rule matched")

	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	records, err := loadLedger(cmd)
	if err != nil {
		return err
	}

	classifier := newClassifier()
	out := cmd.OutOrStdout()

	if list, _ := cmd.Flags().GetBool("list"); list {
		printTitle(out, "Records")
		cli.RenderRecords(out, classifier.Label(records))
	}

	if rules, _ := cmd.Flags().GetBool("rules"); rules {
		printTitle(out, "Rule matches")
		hits := make(map[string]int)
		for _, r := range records {
			_, rule := classifier.Explain(r)
			hits[rule]++
		}
		names := make([]string, 0, len(hits))
		for name := range hits {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			_, _ = fmt.Fprintf(out, "  %-28s %d\n", name, hits[name])
		}
	}

	printTitle(out, "Classification")
	cli.RenderKinds(out, classifier.Summarize(records))
	slog.Debug("Classified records", "count", len(records))
	return nil
}

package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/ledger-audit/internal/cli"
	"github.com/Veraticus/ledger-audit/internal/common"
	"github.com/Veraticus/ledger-audit/internal/query"
	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger records",
		Long: `List the records matching the filters, or with --distinct the values
available for a filter (group, subgroup, category, supplier, account).`,
		RunE: runList,
	}

	addLedgerFlags(cmd)
	cmd.Flags().String("distinct", "", "list the distinct values of a field instead of records")
	cmd.Flags().Int("limit", 0, "show at most this many records (0 for all)")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	records, err := loadLedger(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if value, _ := cmd.Flags().GetString("distinct"); value != "" {
		field := query.Field(strings.ToLower(strings.TrimSpace(value)))
		if !validField(field) {
			return fmt.Errorf("%w: field %q", common.ErrInvalidInput, value)
		}
		for _, v := range query.Distinct(records, field) {
			_, _ = fmt.Fprintln(out, v)
		}
		return nil
	}

	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	cli.RenderRecords(out, newClassifier().Label(records))
	_, _ = fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("%d records", len(records))))
	return nil
}

func validField(f query.Field) bool {
	switch f {
	case query.FieldGroup, query.FieldSubgroup, query.FieldCategory, query.FieldSupplier, query.FieldAccount:
		return true
	default:
		return false
	}
}

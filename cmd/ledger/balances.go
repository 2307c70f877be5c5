package main

import (
	"log/slog"
	"strings"

	"github.com/Veraticus/ledger-audit/internal/balance"
	"github.com/Veraticus/ledger-audit/internal/cli"
	"github.com/spf13/cobra"
)

func balancesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show account balances consolidated per entity",
		Long: `Sum entries, exits and net per account, then consolidate the
accounts into their configured entities.

Use --kind INTERNAL_FINANCIAL to reconcile transfers between accounts:
its consolidated total should be zero.`,
		RunE: runBalances,
	}

	addLedgerFlags(cmd)
	cmd.Flags().String("kind", "", "only records of this kind")

	return cmd
}

func runBalances(cmd *cobra.Command, _ []string) error {
	cfg, err := loadAnalysis()
	if err != nil {
		return err
	}

	records, err := loadLedger(cmd)
	if err != nil {
		return err
	}

	if value, _ := cmd.Flags().GetString("kind"); value != "" {
		kind, err := parseKind(value)
		if err != nil {
			return err
		}
		records = newClassifier().Only(records, kind)
	}

	mapping := entityMapping(cfg)
	balances := balance.AggregateByAccount(records)
	consolidated := balance.Consolidate(balances, mapping)

	out := cmd.OutOrStdout()
	printTitle(out, "Accounts")
	cli.RenderAccounts(out, balances)

	printTitle(out, "Entities")
	cli.RenderEntities(out, consolidated, mapping)

	if len(consolidated.Unmapped) > 0 {
		slog.Warn(cli.FormatWarning("Accounts without an entity: " + strings.Join(consolidated.Unmapped, ", ")))
	}
	return nil
}

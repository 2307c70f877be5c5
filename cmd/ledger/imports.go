package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/ledger-audit/internal/cli"
	"github.com/Veraticus/ledger-audit/internal/common"
	"github.com/spf13/cobra"
)

func importsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imports",
		Short: "List or delete stored import batches",
		RunE:  runImports,
	}

	cmd.Flags().String("delete", "", "delete the import with this ID and its records")

	return cmd
}

func runImports(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadAnalysis()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			common.LogError(closeErr, "Failed to close database", common.Fields{"path": cfg.DatabasePath})
		}
	}()

	if id, _ := cmd.Flags().GetString("delete"); id != "" {
		if err := store.DeleteImport(ctx, id); err != nil {
			return err
		}
		slog.Info(cli.FormatSuccess("Deleted import " + id))
	}

	imports, err := store.ListImports(ctx)
	if err != nil {
		return err
	}
	count, err := store.CountRecords(ctx)
	if err != nil {
		return err
	}

	if len(imports) == 0 {
		slog.Info(cli.FormatInfo("No imports yet"))
		return nil
	}

	printTitle(cmd.OutOrStdout(), "Imports")
	cli.RenderImports(cmd.OutOrStdout(), imports)
	slog.Info(fmt.Sprintf("%d records stored in %s", count, store.Path()))
	return nil
}

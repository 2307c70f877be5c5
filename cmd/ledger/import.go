package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/ledger-audit/internal/cli"
	"github.com/Veraticus/ledger-audit/internal/common"
	"github.com/Veraticus/ledger-audit/internal/config"
	"github.com/Veraticus/ledger-audit/internal/ledger"
	"github.com/Veraticus/ledger-audit/internal/model"
	"github.com/Veraticus/ledger-audit/internal/ofx"
	"github.com/Veraticus/ledger-audit/internal/service"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <files...>",
		Short: "Import CSV or OFX ledger files",
		Long: `Import ledger files into the local database.

CSV files use the ledger export layout (';' separated, dd/mm/yyyy dates).
OFX and QFX bank statements are labeled with --group, --subgroup and
--category. Records already stored are skipped automatically.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("dry-run", false, "show what would be imported without saving")
	cmd.Flags().Bool("list-accounts", false, "list the accounts found in OFX files without importing")
	cmd.Flags().String("group", "", "group for OFX records")
	cmd.Flags().String("subgroup", "", "subgroup for OFX records")
	cmd.Flags().String("category", "", "category for OFX records whose type implies none")
	cmd.Flags().String("account", "", "account name for OFX records (default: statement account ID)")

	return cmd
}

type importSummary struct {
	records    []model.Record
	files      int
	inserted   int
	duplicates int
}

func runImport(cmd *cobra.Command, args []string) error {
	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "ledger import")
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	opts := ofx.Options{}
	opts.Group, _ = cmd.Flags().GetString("group")
	opts.Subgroup, _ = cmd.Flags().GetString("subgroup")
	opts.Category, _ = cmd.Flags().GetString("category")
	opts.Account, _ = cmd.Flags().GetString("account")

	if list, _ := cmd.Flags().GetBool("list-accounts"); list {
		return listOFXAccounts(cmd, args, opts)
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")

	slog.Info(cli.FormatTitle("Importing ledger files"))

	var store service.Storage
	if dryRun {
		slog.Info(cli.FormatWarning("Dry run mode - not saving to database"))
	} else {
		cfg, err := loadAnalysis()
		if err != nil {
			return err
		}
		s, err := initStorage(ctx, cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() {
			if closeErr := s.Close(); closeErr != nil {
				common.LogError(closeErr, "Failed to close database", common.Fields{"path": cfg.DatabasePath})
			}
		}()
		store = s
	}

	var summary importSummary
	bar := cli.NewProgress(cmd.ErrOrStderr(), len(args), "Importing files...")
	for _, path := range args {
		if ctx.Err() != nil {
			return fmt.Errorf("import canceled: %w", ctx.Err())
		}

		path = config.ExpandPath(path)
		format, err := ledger.DetectFormat(path)
		if err != nil {
			return common.NewUserError("unsupported file "+path+" (want .csv, .ofx or .qfx)", err)
		}

		records, stats, err := ledger.LoadFile(ctx, path, opts)
		if errors.Is(err, common.ErrNoRecords) {
			slog.Warn(cli.FormatWarning("No records in " + path))
			_ = bar.Add(1)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		logStats(path, stats)
		summary.files++
		summary.records = append(summary.records, records...)

		if store != nil && len(records) > 0 {
			result, err := store.SaveRecords(ctx, filepath.Base(path), string(format), records)
			if err != nil {
				return fmt.Errorf("failed to save %s: %w", path, err)
			}
			summary.inserted += result.Inserted
			summary.duplicates += result.Duplicates
			slog.Debug("Imported file", "file", path, "import_id", result.ImportID)
		}

		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}

	displayImportSummary(cmd, summary, dryRun)
	return nil
}

func displayImportSummary(cmd *cobra.Command, s importSummary, dryRun bool) {
	if dryRun {
		slog.Info(cli.FormatInfo(fmt.Sprintf("%d records read from %d files", len(s.records), s.files)))
		cli.RenderKinds(cmd.OutOrStdout(), newClassifier().Summarize(s.records))
		return
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Import complete: %d new records, %d already stored", s.inserted, s.duplicates)))
}

func listOFXAccounts(cmd *cobra.Command, paths []string, opts ofx.Options) error {
	for _, path := range paths {
		format, err := ledger.DetectFormat(path)
		if err != nil || format != ledger.FormatOFX {
			slog.Warn(cli.FormatWarning("Skipping non-OFX file " + path))
			continue
		}

		f, err := os.Open(config.ExpandPath(path))
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		accounts, err := ofx.NewParser(opts).Accounts(cmd.Context(), f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		slog.Info(cli.FormatTitle(filepath.Base(path)))
		for _, a := range accounts {
			slog.Info("  " + cli.FolderIcon + " " + a)
		}
	}
	return nil
}

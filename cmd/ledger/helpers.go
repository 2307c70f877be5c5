package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/ledger-audit/internal/balance"
	"github.com/Veraticus/ledger-audit/internal/classification"
	"github.com/Veraticus/ledger-audit/internal/cli"
	"github.com/Veraticus/ledger-audit/internal/common"
	"github.com/Veraticus/ledger-audit/internal/config"
	"github.com/Veraticus/ledger-audit/internal/ledger"
	"github.com/Veraticus/ledger-audit/internal/model"
	"github.com/Veraticus/ledger-audit/internal/ofx"
	"github.com/Veraticus/ledger-audit/internal/query"
	"github.com/Veraticus/ledger-audit/internal/service"
	"github.com/Veraticus/ledger-audit/internal/storage"
	"github.com/spf13/cobra"
)

// isoDateLayout is accepted on the command line next to ledger.DateLayout.
const isoDateLayout = "2006-01-02"

// initStorage opens the ledger store at path and applies migrations.
func initStorage(ctx context.Context, path string) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadAnalysis reads the analysis parameters from configuration.
func loadAnalysis() (config.Analysis, error) {
	cfg, err := config.LoadAnalysis()
	if err != nil {
		return config.Analysis{}, common.NewUserError("invalid analysis configuration", err)
	}
	return cfg, nil
}

func newClassifier() *classification.Classifier {
	return classification.NewClassifier(classification.DefaultMarkers())
}

// addLedgerFlags registers the source and filter flags shared by every
// analysis command.
func addLedgerFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "read a CSV or OFX ledger directly instead of the database")
	cmd.Flags().String("from", "", "first date to include (dd/mm/yyyy or yyyy-mm-dd)")
	cmd.Flags().String("to", "", "last date to include (dd/mm/yyyy or yyyy-mm-dd)")
	cmd.Flags().StringSlice("group", nil, "only these groups (repeatable)")
	cmd.Flags().StringSlice("supplier", nil, "only these suppliers (repeatable)")
	cmd.Flags().StringSlice("category", nil, "only these categories (repeatable)")
}

// parseDate accepts the ledger's dd/mm/yyyy layout or ISO dates.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := ledger.ParseDate(value); err == nil {
		return t, nil
	}
	t, err := time.Parse(isoDateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", common.ErrInvalidInput, value)
	}
	return t, nil
}

func optionalDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// criteriaFromFlags builds the record filter from the shared flags.
func criteriaFromFlags(cmd *cobra.Command) (query.Criteria, error) {
	var c query.Criteria

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")

	var err error
	if c.From, err = optionalDate(from); err != nil {
		return c, err
	}
	if c.To, err = optionalDate(to); err != nil {
		return c, err
	}
	if c.From != nil && c.To != nil && c.To.Before(*c.From) {
		return c, fmt.Errorf("%w: --to is before --from", common.ErrInvalidInput)
	}

	c.Groups, _ = cmd.Flags().GetStringSlice("group")
	c.Suppliers, _ = cmd.Flags().GetStringSlice("supplier")
	c.Categories, _ = cmd.Flags().GetStringSlice("category")
	return c, nil
}

// loadLedger returns the filtered ledger from --file or the database.
func loadLedger(cmd *cobra.Command) ([]model.Record, error) {
	ctx := cmd.Context()

	criteria, err := criteriaFromFlags(cmd)
	if err != nil {
		return nil, err
	}

	if path, _ := cmd.Flags().GetString("file"); path != "" {
		records, stats, err := ledger.LoadFile(ctx, config.ExpandPath(path), ofx.Options{})
		if err != nil {
			return nil, common.NewUserError("failed to read "+path, err)
		}
		logStats(path, stats)
		return filterRecords(records, criteria), nil
	}

	cfg, err := loadAnalysis()
	if err != nil {
		return nil, err
	}
	store, err := initStorage(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			common.LogError(closeErr, "Failed to close database", common.Fields{"path": cfg.DatabasePath})
		}
	}()

	return loadRecords(ctx, store, criteria)
}

// loadRecords reads every record from src and applies the criteria.
func loadRecords(ctx context.Context, src service.RecordSource, criteria query.Criteria) ([]model.Record, error) {
	records, err := src.LoadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	if len(records) == 0 {
		slog.Warn(cli.FormatWarning("The ledger is empty. Run 'ledger import' first."))
	}
	return filterRecords(records, criteria), nil
}

func filterRecords(records []model.Record, criteria query.Criteria) []model.Record {
	if criteria.IsEmpty() {
		return records
	}
	filtered := query.Filter(records, criteria)
	slog.Debug("Applied filters", "before", len(records), "after", len(filtered))
	return filtered
}

func logStats(path string, stats ledger.Stats) {
	common.LogInfo("Loaded ledger", common.Fields{
		"file":          path,
		"rows":          stats.Rows,
		"loaded":        stats.Loaded,
		"invalid_dates": stats.InvalidDates,
		"bad_amounts":   stats.BadAmounts,
	})
	if stats.InvalidDates > 0 {
		slog.Warn(cli.FormatWarning(fmt.Sprintf("%d rows skipped with invalid dates", stats.InvalidDates)))
	}
}

// resolveBaseDate parses value, or returns today's date when it is empty.
func resolveBaseDate(value string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return parseDate(value)
}

// parseKind accepts a kind name case-insensitively.
func parseKind(value string) (model.Kind, error) {
	k := model.Kind(strings.ToUpper(strings.TrimSpace(value)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: kind %q (want one of %v)", common.ErrInvalidInput, value, model.Kinds())
	}
	return k, nil
}

func entityMapping(cfg config.Analysis) balance.EntityMapping {
	return balance.EntityMapping(cfg.Entities)
}

func printTitle(w io.Writer, title string) {
	_, _ = fmt.Fprintln(w, cli.FormatTitle(title))
}

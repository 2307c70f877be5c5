package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/ledger-audit/internal/common"
	"github.com/Veraticus/ledger-audit/internal/model"
	"github.com/google/uuid"
)

const dateFormat = "2006-01-02"

// SaveRecords stores records as one import batch. Records whose hash is
// already stored are skipped and counted as duplicates; the hash covers the
// line's content and occurrence, so re-importing a longer export of the same
// ledger only adds the new lines.
func (s *SQLiteStorage) SaveRecords(ctx context.Context, source, format string, records []model.Record) (*model.ImportResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(source, "source"); err != nil {
		return nil, err
	}
	if err := validateRecords(records); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result := &model.ImportResult{ImportID: uuid.NewString()}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (id, source, format) VALUES (?, ?, ?)`,
		result.ImportID, source, format); err != nil {
		return nil, fmt.Errorf("failed to create import: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO records (
			hash, id, import_id, date, grp, subgroup, category,
			supplier, account, source, amount_in, amount_out, seq, occurrence
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		res, execErr := stmt.ExecContext(ctx,
			r.GenerateHash(),
			r.ID,
			result.ImportID,
			r.Date.Format(dateFormat),
			r.Group,
			r.Subgroup,
			r.Category,
			r.Supplier,
			r.Account,
			r.Source,
			r.AmountIn,
			r.AmountOut,
			r.Seq,
			r.Occurrence,
		)
		if execErr != nil {
			return nil, fmt.Errorf("failed to insert record %s: %w", r.ID, execErr)
		}

		affected, affErr := res.RowsAffected()
		if affErr != nil {
			return nil, fmt.Errorf("failed to check insert: %w", affErr)
		}
		if affected == 0 {
			result.Duplicates++
			continue
		}
		result.Inserted++
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE imports SET record_count = ? WHERE id = ?`,
		result.Inserted, result.ImportID); err != nil {
		return nil, fmt.Errorf("failed to update import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	slog.Debug("Saved records",
		"import_id", result.ImportID,
		"source", source,
		"inserted", result.Inserted,
		"duplicates", result.Duplicates)

	return result, nil
}

// LoadRecords returns every stored record ordered by date, keeping import
// order within a date.
func (s *SQLiteStorage) LoadRecords(ctx context.Context) ([]model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, grp, subgroup, category, supplier, account, source,
			amount_in, amount_out, seq, occurrence
		FROM records
		ORDER BY date, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]model.Record, 0)
	for rows.Next() {
		r, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

func scanRecord(rows *sql.Rows) (model.Record, error) {
	var r model.Record
	var date string
	if err := rows.Scan(
		&r.ID,
		&date,
		&r.Group,
		&r.Subgroup,
		&r.Category,
		&r.Supplier,
		&r.Account,
		&r.Source,
		&r.AmountIn,
		&r.AmountOut,
		&r.Seq,
		&r.Occurrence,
	); err != nil {
		return r, fmt.Errorf("failed to scan record: %w", err)
	}

	parsed, err := time.Parse(dateFormat, date)
	if err != nil {
		return r, fmt.Errorf("%w: record %s has date %q", common.ErrDatabaseCorrupted, r.ID, date)
	}
	r.Date = parsed
	return r, nil
}

// CountRecords returns the number of stored records.
func (s *SQLiteStorage) CountRecords(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// ListImports returns the import batches, oldest first.
func (s *SQLiteStorage) ListImports(ctx context.Context) ([]model.Import, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, format, record_count, imported_at
		FROM imports
		ORDER BY imported_at, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query imports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	imports := make([]model.Import, 0)
	for rows.Next() {
		var imp model.Import
		if err := rows.Scan(&imp.ID, &imp.Source, &imp.Format, &imp.RecordCount, &imp.ImportedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import: %w", err)
		}
		imports = append(imports, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating imports: %w", err)
	}

	return imports, nil
}

// DeleteImport removes an import batch and its records.
func (s *SQLiteStorage) DeleteImport(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE import_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM imports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete import: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("import %s: %w", id, common.ErrNotFound)
	}

	return tx.Commit()
}

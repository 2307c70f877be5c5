package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/ledger-audit/internal/common"
	"github.com/Veraticus/ledger-audit/internal/model"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial ledger schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS imports (
					id TEXT PRIMARY KEY,
					source TEXT NOT NULL,
					format TEXT NOT NULL,
					record_count INTEGER NOT NULL DEFAULT 0,
					imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS records (
					hash TEXT PRIMARY KEY,
					id TEXT NOT NULL,
					import_id TEXT NOT NULL,
					date TEXT NOT NULL,
					grp TEXT NOT NULL,
					subgroup TEXT NOT NULL,
					category TEXT NOT NULL,
					supplier TEXT NOT NULL,
					account TEXT NOT NULL,
					source TEXT NOT NULL,
					amount_in REAL NOT NULL DEFAULT 0,
					amount_out REAL NOT NULL DEFAULT 0 CHECK (amount_out <= 0),
					seq INTEGER NOT NULL DEFAULT 0,
					FOREIGN KEY (import_id) REFERENCES imports(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_records_date ON records(date)`,
				`CREATE INDEX idx_records_import ON records(import_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Index account and category lookups",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_records_account ON records(account)`,
				`CREATE INDEX IF NOT EXISTS idx_records_category ON records(category)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Identify records by content and occurrence instead of file position",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`ALTER TABLE records ADD COLUMN occurrence INTEGER NOT NULL DEFAULT 1`); err != nil {
				return fmt.Errorf("failed to add occurrence column: %w", err)
			}
			return rehashRecords(tx)
		},
	},
}

// rehashRecords recomputes every record hash from its content and its
// occurrence within its import. Rows that turn out to repeat a line already
// stored by an earlier import are removed and import counts are refreshed.
func rehashRecords(tx *sql.Tx) error {
	rows, err := tx.Query(`
		SELECT r.hash, r.import_id, r.date, r.grp, r.subgroup, r.category,
			r.supplier, r.account, r.amount_in, r.amount_out
		FROM records r
		JOIN imports i ON i.id = r.import_id
		ORDER BY i.imported_at, i.rowid, r.seq, r.rowid
	`)
	if err != nil {
		return fmt.Errorf("failed to query records: %w", err)
	}

	type storedRecord struct {
		hash     string
		importID string
		record   model.Record
	}
	var stored []storedRecord
	for rows.Next() {
		var sr storedRecord
		var date string
		if err := rows.Scan(&sr.hash, &sr.importID, &date,
			&sr.record.Group, &sr.record.Subgroup, &sr.record.Category,
			&sr.record.Supplier, &sr.record.Account,
			&sr.record.AmountIn, &sr.record.AmountOut); err != nil {
			_ = rows.Close()
			return fmt.Errorf("failed to scan record: %w", err)
		}
		parsed, err := time.Parse(dateFormat, date)
		if err != nil {
			_ = rows.Close()
			return fmt.Errorf("%w: record %s has date %q", common.ErrDatabaseCorrupted, sr.hash, date)
		}
		sr.record.Date = parsed
		stored = append(stored, sr)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("error iterating records: %w", err)
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("failed to close records: %w", err)
	}

	kept := make(map[string]bool, len(stored))
	occurrences := make(map[string]int)
	removed := 0
	for _, sr := range stored {
		key := sr.importID + "\x00" + sr.record.ContentKey()
		occurrences[key]++
		sr.record.Occurrence = occurrences[key]
		hash := sr.record.GenerateHash()

		if kept[hash] {
			if _, err := tx.Exec(`DELETE FROM records WHERE hash = ?`, sr.hash); err != nil {
				return fmt.Errorf("failed to remove repeated record: %w", err)
			}
			removed++
			continue
		}
		kept[hash] = true

		if _, err := tx.Exec(`UPDATE records SET hash = ?, occurrence = ? WHERE hash = ?`,
			hash, sr.record.Occurrence, sr.hash); err != nil {
			return fmt.Errorf("failed to rehash record: %w", err)
		}
	}

	if _, err := tx.Exec(`
		UPDATE imports SET record_count = (
			SELECT COUNT(*) FROM records WHERE records.import_id = imports.id
		)
	`); err != nil {
		return fmt.Errorf("failed to refresh import counts: %w", err)
	}

	if removed > 0 {
		slog.Info("Removed records repeated across imports", "count", removed)
	}
	return nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Debug("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return nil
}

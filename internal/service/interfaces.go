// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/ledger-audit/internal/model"
)

// Storage defines the contract for the ledger persistence layer. Only input
// records are persisted; classifications and corrections are recomputed on
// every run.
type Storage interface {
	// Record operations
	SaveRecords(ctx context.Context, source, format string, records []model.Record) (*model.ImportResult, error)
	LoadRecords(ctx context.Context) ([]model.Record, error)
	CountRecords(ctx context.Context) (int, error)

	// Import batches
	ListImports(ctx context.Context) ([]model.Import, error)
	DeleteImport(ctx context.Context, id string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RecordSource supplies a ledger to the analysis commands.
type RecordSource interface {
	LoadRecords(ctx context.Context) ([]model.Record, error)
}

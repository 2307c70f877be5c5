package model

import "time"

// Import describes one batch of records stored from a single source file.
type Import struct {
	ImportedAt  time.Time
	ID          string
	Source      string
	Format      string
	RecordCount int // Records inserted by this batch
}

// ImportResult summarizes a save of records.
type ImportResult struct {
	ImportID   string
	Inserted   int
	Duplicates int // Records already present, matched by content hash
}

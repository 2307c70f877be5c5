package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/ledger-audit/internal/common"
	"github.com/Veraticus/ledger-audit/internal/model"
	"github.com/Veraticus/ledger-audit/internal/ofx"
)

// Format is a supported input format.
type Format string

// Supported input formats.
const (
	FormatCSV Format = "csv"
	FormatOFX Format = "ofx"
)

// DetectFormat infers the format from a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".ofx", ".qfx":
		return FormatOFX, nil
	default:
		return "", fmt.Errorf("%s: %w", path, common.ErrUnsupportedFormat)
	}
}

// LoadFile reads a CSV or OFX ledger file. opts labels OFX records; its
// Source is replaced by the file's base name.
func LoadFile(ctx context.Context, path string, opts ofx.Options) ([]model.Record, Stats, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, Stats{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to open ledger file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	source := filepath.Base(path)

	switch format {
	case FormatOFX:
		opts.Source = source
		records, err := ofx.NewParser(opts).ParseFile(ctx, f)
		if err != nil {
			return nil, Stats{}, err
		}
		stats := Stats{Rows: len(records), Loaded: len(records)}
		return records, stats, nil
	default:
		return LoadCSV(f, source)
	}
}

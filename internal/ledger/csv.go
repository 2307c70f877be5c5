// Package ledger loads cash-flow ledgers exported as CSV.
package ledger

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/ledger-audit/internal/common"
	"github.com/Veraticus/ledger-audit/internal/model"
	"github.com/shopspring/decimal"
)

// DateLayout is the layout of the ledger's date column (dd/mm/yyyy).
const DateLayout = "02/01/2006"

const columnPrefix = "Content."

// Column names of the exported ledger, without the export prefix.
const (
	ColumnDate     = "Data"
	ColumnGroup    = "Grupo"
	ColumnSubgroup = "Subgrupo"
	ColumnCategory = "Natureza"
	ColumnSupplier = "FORNECEDOR"
	ColumnEntry    = "Entrada (R$)"
	ColumnExit     = "Saída (R$)"
	ColumnAccount  = "Name"
)

// ErrMissingColumn is returned when a required column is absent from the header.
var ErrMissingColumn = errors.New("missing required column")

// Stats describes one load.
type Stats struct {
	Rows         int // Data rows read, excluding the header
	Loaded       int
	InvalidDates int
	BadAmounts   int // Amounts that could not be parsed and were read as zero
}

// ParseAmount converts a Brazilian-formatted amount ("1.234,56") to a
// float. Blank or unparsable input yields 0 and ok=false for the latter.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// ParseDate parses a dd/mm/yyyy date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// LoadCSV reads a ';'-separated ledger. Rows with an invalid date are
// dropped, unparsable amounts are read as zero and the result is sorted by
// date, keeping file order within a date. source labels the records.
func LoadCSV(r io.Reader, source string) ([]model.Record, Stats, error) {
	var stats Stats

	reader := csv.NewReader(stripBOM(r))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, stats, fmt.Errorf("%s: %w", source, common.ErrNoRecords)
	}
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read csv header: %w", err)
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, stats, err
	}

	records := make([]model.Record, 0)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("failed to read csv row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++
		seq := stats.Rows

		date, err := ParseDate(cols.get(row, ColumnDate))
		if err != nil {
			stats.InvalidDates++
			common.LogDebug("Dropping row with invalid date", common.Fields{
				"source": source,
				"row":    seq,
				"error":  err.Error(),
			})
			continue
		}

		in, ok := ParseAmount(cols.get(row, ColumnEntry))
		if !ok {
			stats.BadAmounts++
		}
		out, ok := ParseAmount(cols.get(row, ColumnExit))
		if !ok {
			stats.BadAmounts++
		}

		rec := model.NewRecord(date,
			cols.get(row, ColumnGroup),
			cols.get(row, ColumnSubgroup),
			cols.get(row, ColumnCategory),
			cols.get(row, ColumnSupplier),
			cols.get(row, ColumnAccount),
			in, out)
		rec.Source = source
		rec.Seq = seq

		records = append(records, rec)
	}

	model.AssignOccurrences(records)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
	stats.Loaded = len(records)

	slog.Info("Loaded ledger",
		"source", source,
		"rows", stats.Rows,
		"loaded", stats.Loaded,
		"invalid_dates", stats.InvalidDates,
		"bad_amounts", stats.BadAmounts)

	return records, stats, nil
}

type columns map[string]int

func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func indexColumns(header []string) (columns, error) {
	cols := make(columns, len(header))
	for i, h := range header {
		name := strings.TrimPrefix(strings.TrimSpace(h), columnPrefix)
		cols[name] = i
	}

	for _, required := range []string{ColumnDate, ColumnEntry, ColumnExit} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}
	return cols, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// stripBOM drops a leading UTF-8 byte order mark, which spreadsheet exports
// commonly prepend.
func stripBOM(r io.Reader) io.Reader {
	buf := make([]byte, len(utf8BOM))
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return bytes.NewReader(buf[:n])
	}
	if bytes.Equal(buf, utf8BOM) {
		return r
	}
	return io.MultiReader(bytes.NewReader(buf), r)
}

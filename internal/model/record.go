// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// Unspecified replaces empty text fields in loaded records.
const Unspecified = "NÃO INFORMADO"

// Record represents a single normalized ledger line from any source.
// Records are values and are never modified after loading.
type Record struct {
	Date       time.Time
	ID         string
	Group      string
	Subgroup   string
	Category   string // Free-text "natureza" of the movement
	Supplier   string
	Account    string // Physical bank account the line was booked on
	Source     string // File or statement the record came from
	AmountIn   float64
	AmountOut  float64 // Always <= 0
	Seq        int     // Position of the line within its source
	Occurrence int     // 1-based rank among identical lines of the same source
}

// Net returns the signed result of the record.
func (r Record) Net() float64 {
	return r.AmountIn + r.AmountOut
}

// IsExit reports whether the record moved money out of its account.
func (r Record) IsExit() bool {
	return r.AmountOut < 0
}

// ContentKey identifies what a line says, independent of where it sits in
// its source.
func (r Record) ContentKey() string {
	return fmt.Sprintf("%s:%.2f:%.2f:%s:%s:%s:%s:%s",
		r.Date.Format("2006-01-02"),
		r.AmountIn,
		r.AmountOut,
		r.Group,
		r.Subgroup,
		r.Category,
		r.Supplier,
		r.Account)
}

// GenerateHash creates a content hash for duplicate detection. Identical
// lines are told apart by their occurrence, never by their position, so a
// line inserted elsewhere in a later export does not change the others.
func (r Record) GenerateHash() string {
	data := fmt.Sprintf("%s:%d", r.ContentKey(), r.Occurrence)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// AssignOccurrences numbers identical lines in source order and sets IDs
// that are still empty from the resulting hash.
func AssignOccurrences(records []Record) {
	seen := make(map[string]int, len(records))
	for i := range records {
		key := records[i].ContentKey()
		seen[key]++
		records[i].Occurrence = seen[key]
		if records[i].ID == "" {
			records[i].ID = records[i].GenerateHash()[:16]
		}
	}
}

// NormalizeText trims and upper-cases a text field, substituting
// Unspecified for empty values.
func NormalizeText(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Unspecified
	}
	return s
}

// NormalizeExit forces an exit amount to be non-positive. It is idempotent.
func NormalizeExit(amount float64) float64 {
	if amount > 0 {
		return -amount
	}
	return amount
}

// NewRecord builds a normalized record. Text fields are trimmed and
// upper-cased (the account is only trimmed). Positive exits are negated and a
// negative entry, such as a reversal, moves to the exit side; Net is unchanged.
func NewRecord(date time.Time, group, subgroup, category, supplier, account string, in, out float64) Record {
	out = NormalizeExit(out)
	if in < 0 {
		out += in
		in = 0
	}

	r := Record{
		Date:      date,
		Group:     NormalizeText(group),
		Subgroup:  NormalizeText(subgroup),
		Category:  NormalizeText(category),
		Supplier:  NormalizeText(supplier),
		Account:   strings.TrimSpace(account),
		AmountIn:  in,
		AmountOut: out,
	}
	if r.Account == "" {
		r.Account = Unspecified
	}
	return r
}

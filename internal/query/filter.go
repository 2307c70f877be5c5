// Package query filters ledger records and derives the values offered to
// filter selectors.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/ledger-audit/internal/model"
)

// Criteria restricts a ledger. Zero-valued fields do not restrict.
type Criteria struct {
	From       *time.Time // Inclusive
	To         *time.Time // Inclusive
	Groups     []string
	Suppliers  []string
	Categories []string
}

// IsEmpty reports whether the criteria keep every record.
func (c Criteria) IsEmpty() bool {
	return c.From == nil && c.To == nil &&
		len(c.Groups) == 0 && len(c.Suppliers) == 0 && len(c.Categories) == 0
}

// Filter returns the records matching every criterion, in their original
// order. The input slice is never modified.
func Filter(records []model.Record, c Criteria) []model.Record {
	groups := set(c.Groups)
	suppliers := set(c.Suppliers)
	categories := set(c.Categories)

	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if c.From != nil && r.Date.Before(*c.From) {
			continue
		}
		if c.To != nil && r.Date.After(*c.To) {
			continue
		}
		if !allowed(groups, r.Group) || !allowed(suppliers, r.Supplier) || !allowed(categories, r.Category) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ExcludeCategories drops records whose category contains any of the
// markers, case-insensitively.
func ExcludeCategories(records []model.Record, markers ...string) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		category := strings.ToUpper(r.Category)
		excluded := false
		for _, m := range markers {
			if m != "" && strings.Contains(category, strings.ToUpper(m)) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, r)
		}
	}
	return out
}

// DefaultInternalMarkers returns the category markers of movements that
// cancel out inside the ledger: transfers between accounts and loans.
func DefaultInternalMarkers() []string {
	return []string{"TRANSF. ENTRE CONTAS", "EMPRÉSTIMOS"}
}

// Field names a text field of a record.
type Field string

// Record fields usable with Distinct.
const (
	FieldGroup    Field = "group"
	FieldSubgroup Field = "subgroup"
	FieldCategory Field = "category"
	FieldSupplier Field = "supplier"
	FieldAccount  Field = "account"
)

// Value returns the field of r, or "" for an unknown field.
func (f Field) Value(r model.Record) string {
	switch f {
	case FieldGroup:
		return r.Group
	case FieldSubgroup:
		return r.Subgroup
	case FieldCategory:
		return r.Category
	case FieldSupplier:
		return r.Supplier
	case FieldAccount:
		return r.Account
	default:
		return ""
	}
}

// Distinct returns the sorted unique values of field.
func Distinct(records []model.Record, field Field) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, r := range records {
		v := field.Value(r)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// Period returns the earliest and latest record dates. ok is false for an
// empty ledger.
func Period(records []model.Record) (from, to time.Time, ok bool) {
	if len(records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	from, to = records[0].Date, records[0].Date
	for _, r := range records[1:] {
		if r.Date.Before(from) {
			from = r.Date
		}
		if r.Date.After(to) {
			to = r.Date
		}
	}
	return from, to, true
}

func set(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[strings.ToUpper(strings.TrimSpace(v))] = struct{}{}
	}
	return m
}

func allowed(values map[string]struct{}, v string) bool {
	if values == nil {
		return true
	}
	_, ok := values[strings.ToUpper(v)]
	return ok
}

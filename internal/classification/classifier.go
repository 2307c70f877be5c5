// Package classification labels ledger records with their transaction kind.
package classification

import (
	"strings"

	"github.com/Veraticus/ledger-audit/internal/model"
)

// Classifier evaluates an ordered rule table; the first matching rule wins
// and records matching no rule are operational.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier using DefaultRules for the given markers.
func NewClassifier(m Markers) *Classifier {
	return NewClassifierWithRules(DefaultRules(m))
}

// NewClassifierWithRules creates a classifier from an explicit rule table.
func NewClassifierWithRules(rules []Rule) *Classifier {
	compiled := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Match != nil {
			compiled = append(compiled, r)
		}
	}
	return &Classifier{rules: compiled}
}

// Classify returns the kind of a record. It depends only on the record's
// category and subgroup.
func (c *Classifier) Classify(r model.Record) model.Kind {
	kind, _ := c.Explain(r)
	return kind
}

// Explain returns the kind of a record and the name of the rule that decided it.
func (c *Classifier) Explain(r model.Record) (model.Kind, string) {
	category := strings.ToUpper(r.Category)
	subgroup := strings.ToUpper(strings.TrimSpace(r.Subgroup))

	for _, rule := range c.rules {
		if rule.Match(category, subgroup) {
			return rule.Kind, rule.Name
		}
	}
	return model.KindOperational, RuleOperational
}

// ClassifyAll classifies every record, keyed by record ID.
func (c *Classifier) ClassifyAll(records []model.Record) map[string]model.Kind {
	results := make(map[string]model.Kind, len(records))
	for _, r := range records {
		results[r.ID] = c.Classify(r)
	}
	return results
}

// Label pairs every record with its kind, preserving order.
func (c *Classifier) Label(records []model.Record) []model.Classified {
	labeled := make([]model.Classified, 0, len(records))
	for _, r := range records {
		labeled = append(labeled, model.Classified{Record: r, Kind: c.Classify(r)})
	}
	return labeled
}

// KindSummary totals the records of one kind.
type KindSummary struct {
	Entries float64
	Exits   float64
	Net     float64
	Count   int
}

// Summarize totals records per kind. Every kind is present in the result.
func (c *Classifier) Summarize(records []model.Record) map[model.Kind]KindSummary {
	summary := make(map[model.Kind]KindSummary, 3)
	for _, k := range model.Kinds() {
		summary[k] = KindSummary{}
	}

	for _, r := range records {
		k := c.Classify(r)
		s := summary[k]
		s.Entries += r.AmountIn
		s.Exits += r.AmountOut
		s.Net += r.Net()
		s.Count++
		summary[k] = s
	}
	return summary
}

// Exclude returns the records whose kind is not in kinds. Excluding
// KindInternalFinancial yields the operational view of the ledger.
func (c *Classifier) Exclude(records []model.Record, kinds ...model.Kind) []model.Record {
	skip := make(map[model.Kind]bool, len(kinds))
	for _, k := range kinds {
		skip[k] = true
	}

	kept := make([]model.Record, 0, len(records))
	for _, r := range records {
		if !skip[c.Classify(r)] {
			kept = append(kept, r)
		}
	}
	return kept
}

// Only returns the records of the given kind.
func (c *Classifier) Only(records []model.Record, kind model.Kind) []model.Record {
	kept := make([]model.Record, 0)
	for _, r := range records {
		if c.Classify(r) == kind {
			kept = append(kept, r)
		}
	}
	return kept
}

// Package balance aggregates ledger records per bank account and per
// consolidated entity.
package balance

import (
	"sort"

	"github.com/Veraticus/ledger-audit/internal/model"
)

// EntityMapping maps a logical entity name to the physical accounts it owns.
type EntityMapping map[string][]string

// DefaultEntities returns the account layout of the audited ledger.
func DefaultEntities() EntityMapping {
	return EntityMapping{
		"NORTHSIDE": {"FluxoLifecon5", "FluxoLifecon7"},
		"ÁGATA":     {"FluxoAgata"},
		"BARILOCHE": {"FluxoBariloche"},
	}
}

// EntityOf returns the entity owning account, if any.
func (m EntityMapping) EntityOf(account string) (string, bool) {
	for entity, accounts := range m {
		for _, a := range accounts {
			if a == account {
				return entity, true
			}
		}
	}
	return "", false
}

// Entities returns the entity names in sorted order.
func (m EntityMapping) Entities() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Consolidated holds net sums per entity.
type Consolidated struct {
	Entities map[string]float64
	Unmapped []string // Accounts with balances but no entity, sorted
	Total    float64
}

// AggregateByAccount sums entries, exits and nets per account.
func AggregateByAccount(records []model.Record) map[string]model.AccountBalance {
	balances := make(map[string]model.AccountBalance)
	for _, r := range records {
		b := balances[r.Account]
		b.Entries += r.AmountIn
		b.Exits += r.AmountOut
		b.Net += r.Net()
		b.Count++
		balances[r.Account] = b
	}
	return balances
}

// Consolidate sums account nets into entities. Every entity in the mapping
// is present in the result, zero when none of its accounts has records.
// Accounts missing from the mapping are left out of the totals.
func Consolidate(balances map[string]model.AccountBalance, mapping EntityMapping) Consolidated {
	result := Consolidated{
		Entities: make(map[string]float64, len(mapping)),
	}

	for entity, accounts := range mapping {
		net := 0.0
		for _, account := range accounts {
			net += balances[account].Net
		}
		result.Entities[entity] = net
	}

	for _, entity := range mapping.Entities() {
		result.Total += result.Entities[entity]
	}

	for account := range balances {
		if _, ok := mapping.EntityOf(account); !ok {
			result.Unmapped = append(result.Unmapped, account)
		}
	}
	sort.Strings(result.Unmapped)

	return result
}

// Accounts returns the account names of balances in sorted order.
func Accounts(balances map[string]model.AccountBalance) []string {
	names := make([]string, 0, len(balances))
	for name := range balances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

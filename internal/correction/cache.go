package correction

import (
	"sync"

	"github.com/Veraticus/ledger-audit/internal/model"
)

// Key identifies a cached run for a fixed ledger and base date.
type Key struct {
	MonthlyRate         float64
	AmortizationEnabled bool
}

// Cache memoizes simulation results for one ledger. Only the rate and the
// amortization flag vary between runs; every other parameter is fixed at
// construction. Cached results are shared and must not be modified.
type Cache struct {
	results map[Key]Result
	records []model.Record
	params  Params
	mu      sync.Mutex
}

// NewCache creates a cache over records. MonthlyRate and
// AmortizationEnabled in params are ignored; they come from each Get.
func NewCache(records []model.Record, params Params) *Cache {
	return &Cache{
		records: records,
		params:  params,
		results: make(map[Key]Result),
	}
}

// Get returns the result for the given rate and amortization flag,
// simulating on first use.
func (c *Cache) Get(monthlyRate float64, amortizationEnabled bool) Result {
	key := Key{MonthlyRate: monthlyRate, AmortizationEnabled: amortizationEnabled}

	c.mu.Lock()
	defer c.mu.Unlock()

	if result, ok := c.results[key]; ok {
		return result
	}

	p := c.params
	p.MonthlyRate = monthlyRate
	p.AmortizationEnabled = amortizationEnabled

	result := Simulate(c.records, p)
	c.results[key] = result
	return result
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

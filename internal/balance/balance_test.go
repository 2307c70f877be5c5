package balance

import (
	"testing"
	"time"

	"github.com/Veraticus/ledger-audit/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(account string, in, out float64) model.Record {
	return model.NewRecord(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "G", "S", "C", "F", account, in, out)
}

func testLedger() []model.Record {
	return []model.Record{
		rec("FluxoLifecon5", 1000, 0),
		rec("FluxoLifecon5", 0, -300),
		rec("FluxoLifecon7", 200, 0),
		rec("FluxoAgata", 5000, -4000),
		rec("FluxoBariloche", 0, 750),
		rec("ContaAvulsa", 90, 0),
	}
}

func TestAggregateByAccount(t *testing.T) {
	balances := AggregateByAccount(testLedger())
	require.Len(t, balances, 5)

	l5 := balances["FluxoLifecon5"]
	assert.Equal(t, 1000.0, l5.Entries)
	assert.Equal(t, -300.0, l5.Exits)
	assert.Equal(t, 700.0, l5.Net)
	assert.Equal(t, 2, l5.Count)

	bariloche := balances["FluxoBariloche"]
	assert.Equal(t, -750.0, bariloche.Exits, "positive exits are stored negated")
	assert.Equal(t, -750.0, bariloche.Net)

	for _, b := range balances {
		assert.LessOrEqual(t, b.Exits, 0.0)
	}
}

func TestAggregateByAccount_Additivity(t *testing.T) {
	records := testLedger()
	balances := AggregateByAccount(records)

	sumAccounts := 0.0
	for _, b := range balances {
		sumAccounts += b.Net
	}

	sumRecords := 0.0
	for _, r := range records {
		sumRecords += r.Net()
	}

	assert.InDelta(t, sumRecords, sumAccounts, 1e-9)
}

func TestConsolidate(t *testing.T) {
	balances := AggregateByAccount(testLedger())
	c := Consolidate(balances, DefaultEntities())

	assert.InDelta(t, 900.0, c.Entities["NORTHSIDE"], 1e-9)
	assert.InDelta(t, 1000.0, c.Entities["ÁGATA"], 1e-9)
	assert.InDelta(t, -750.0, c.Entities["BARILOCHE"], 1e-9)
	assert.InDelta(t, 1150.0, c.Total, 1e-9, "unmapped accounts stay out of the total")
	assert.Equal(t, []string{"ContaAvulsa"}, c.Unmapped)

	// The per-account view still shows the unmapped account.
	assert.Contains(t, balances, "ContaAvulsa")
}

func TestConsolidate_DoesNotMutateInput(t *testing.T) {
	balances := AggregateByAccount(testLedger())
	before := make(map[string]model.AccountBalance, len(balances))
	for k, v := range balances {
		before[k] = v
	}

	_ = Consolidate(balances, DefaultEntities())
	assert.Equal(t, before, balances)
}

func TestEmptyLedger(t *testing.T) {
	balances := AggregateByAccount(nil)
	assert.Empty(t, balances)

	c := Consolidate(balances, DefaultEntities())
	assert.Len(t, c.Entities, 3)
	assert.Zero(t, c.Total)
	assert.Empty(t, c.Unmapped)
}

func TestEntityMapping(t *testing.T) {
	m := DefaultEntities()

	entity, ok := m.EntityOf("FluxoLifecon7")
	assert.True(t, ok)
	assert.Equal(t, "NORTHSIDE", entity)

	_, ok = m.EntityOf("Unknown")
	assert.False(t, ok)

	assert.Equal(t, []string{"BARILOCHE", "NORTHSIDE", "ÁGATA"}, m.Entities())
	assert.Equal(t, []string{"ContaAvulsa", "FluxoAgata", "FluxoBariloche", "FluxoLifecon5", "FluxoLifecon7"},
		Accounts(AggregateByAccount(testLedger())))
}

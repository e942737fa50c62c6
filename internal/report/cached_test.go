package report

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

type countingSource struct {
	mu        sync.Mutex
	ds        Dataset
	snapshots int
}

func (s *countingSource) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ds.Version
}

func (s *countingSource) Snapshot() Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots++
	return s.ds
}

func (s *countingSource) bump(txs ...core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds.Version++
	s.ds.Transactions = txs
}

func TestCachedRecomputesOnlyOnNewVersion(t *testing.T) {
	src := &countingSource{ds: Dataset{Transactions: []core.Transaction{
		tx("1", core.Income, 10000, "Salary", d(2024, 1, 1)),
	}}}
	c := NewCached(src, cache.NewLRUCache[any](16, time.Minute), func() time.Time { return now })

	assert.Equal(t, int64(10000), c.Summary().TotalIncome.Cents)
	assert.Equal(t, int64(10000), c.Summary().TotalIncome.Cents)
	assert.Equal(t, 1, src.snapshots)

	src.bump(tx("1", core.Income, 20000, "Salary", d(2024, 1, 1)))
	assert.Equal(t, int64(20000), c.Summary().TotalIncome.Cents)
	assert.Equal(t, 2, src.snapshots)
}

func TestCachedKeysIncludeParameters(t *testing.T) {
	src := &countingSource{}
	c := NewCached(src, cache.NewLRUCache[any](16, time.Minute), func() time.Time { return now })

	assert.Len(t, c.TimeSeries(WindowMonth), 30)
	assert.Len(t, c.TimeSeries(WindowYear), 12)
	assert.Len(t, c.IncomeVsExpense(WindowYear), 6)
	assert.Equal(t, 3, src.snapshots)
}

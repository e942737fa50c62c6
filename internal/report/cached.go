package report

import (
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

// Dataset is a consistent copy of every collection at one store version.
type Dataset struct {
	Version      uint64
	Transactions []core.Transaction
	Categories   []core.Category
	Budgets      []core.Budget
	Goals        []core.Goal
	User         core.User
}

// Source supplies datasets; the version changes whenever any record does.
type Source interface {
	Version() uint64
	Snapshot() Dataset
}

// Cached memoizes reports per store version. Calendar-dependent reports are
// also keyed by the current date so they roll over at midnight.
type Cached struct {
	src   Source
	cache *cache.LRUCache[any]
	group singleflight.Group
	now   func() time.Time
}

func NewCached(src Source, c *cache.LRUCache[any], now func() time.Time) *Cached {
	if now == nil {
		now = time.Now
	}
	return &Cached{src: src, cache: c, now: now}
}

func memo[T any](c *Cached, name string, compute func(Dataset, time.Time) T, params ...any) T {
	now := c.now()
	key := func(version uint64) string {
		return fmt.Sprintf("%s|%d|%s|%v", name, version, core.DateOf(now), params)
	}
	if v, ok := c.cache.Get(key(c.src.Version())); ok {
		return v.(T)
	}
	v, _, _ := c.group.Do(key(c.src.Version()), func() (any, error) {
		ds := c.src.Snapshot()
		out := compute(ds, now)
		c.cache.Set(key(ds.Version), out)
		return out, nil
	})
	return v.(T)
}

func (c *Cached) Summary() core.FinanceSummary {
	return memo(c, "summary", func(ds Dataset, _ time.Time) core.FinanceSummary {
		return Summary(ds.Transactions)
	})
}

func (c *Cached) Budgets() []core.BudgetUsage {
	return memo(c, "budgets", func(ds Dataset, now time.Time) []core.BudgetUsage {
		return BudgetUsages(ds.Budgets, ds.Transactions, ds.Categories, now)
	})
}

func (c *Cached) Goals() core.GoalsByPriority {
	return memo(c, "goals", func(ds Dataset, now time.Time) core.GoalsByPriority {
		return GroupByPriority(ds.Goals, now)
	})
}

func (c *Cached) TopGoals(n int) []core.GoalProgress {
	return memo(c, "top-goals", func(ds Dataset, now time.Time) []core.GoalProgress {
		return TopGoals(ds.Goals, now, n)
	}, n)
}

func (c *Cached) MonthlyTrend() []core.TrendBucket {
	return memo(c, "trend", func(ds Dataset, _ time.Time) []core.TrendBucket {
		return MonthlyTrend(ds.Transactions)
	})
}

func (c *Cached) Distribution() []core.CategorySlice {
	return memo(c, "distribution", func(ds Dataset, _ time.Time) []core.CategorySlice {
		return CategoryDistribution(ds.Transactions, ds.Categories)
	})
}

func (c *Cached) TimeSeries(w Window) []core.TrendBucket {
	return memo(c, "timeseries", func(ds Dataset, now time.Time) []core.TrendBucket {
		return TimeSeries(ds.Transactions, w, now)
	}, w)
}

func (c *Cached) IncomeVsExpense(w Window) []core.TrendBucket {
	return memo(c, "income-expense", func(ds Dataset, now time.Time) []core.TrendBucket {
		return IncomeVsExpense(ds.Transactions, w, now)
	}, w)
}

func (c *Cached) Recent(n int) []core.Transaction {
	return memo(c, "recent", func(ds Dataset, _ time.Time) []core.Transaction {
		return RecentTransactions(ds.Transactions, n)
	}, n)
}

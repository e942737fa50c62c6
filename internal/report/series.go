package report

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"fintrack/internal/core"
)

// Window selects the span of the reports page charts.
type Window string

const (
	WindowMonth Window = "month"
	WindowYear  Window = "year"
)

const (
	dailyBuckets           = 30
	monthlyBuckets         = 12
	incomeVsExpenseBuckets = 6
	// RecentMonthLimit caps RecentMonths.
	RecentMonthLimit = 5
)

func (w Window) Valid() bool { return w == WindowMonth || w == WindowYear }

// ParseWindow accepts "month" or "year"; anything else is an error.
func ParseWindow(s string) (Window, error) {
	w := Window(s)
	if !w.Valid() {
		return "", fmt.Errorf("unknown window %q", s)
	}
	return w, nil
}

// monthLabel renders "Jan 2024".
func monthLabel(year int, month time.Month) string {
	return month.String()[:3] + " " + strconv.Itoa(year)
}

func monthStart(d core.Date) core.Date {
	return core.NewDate(d.Year(), int(d.Month()), 1)
}

// bucketSet holds zero-filled buckets ordered oldest first.
type bucketSet struct {
	buckets []core.TrendBucket
	index   map[string]int
	key     func(core.Date) string
}

func newBucketSet(starts []core.Date, label func(core.Date) string, key func(core.Date) string) *bucketSet {
	b := &bucketSet{index: make(map[string]int, len(starts)), key: key}
	for _, s := range starts {
		b.index[key(s)] = len(b.buckets)
		b.buckets = append(b.buckets, core.TrendBucket{Label: label(s), Start: s})
	}
	return b
}

func (b *bucketSet) add(t core.Transaction) {
	i, ok := b.index[b.key(t.Date)]
	if !ok {
		return
	}
	if t.Type == core.Income {
		b.buckets[i].Income = b.buckets[i].Income.Add(t.Amount)
	} else {
		b.buckets[i].Expense = b.buckets[i].Expense.Add(t.Amount)
	}
}

func (b *bucketSet) result() []core.TrendBucket {
	for i := range b.buckets {
		b.buckets[i].Savings = b.buckets[i].Income.Sub(b.buckets[i].Expense)
	}
	return b.buckets
}

func dayKey(d core.Date) string { return d.String() }

func monthKey(d core.Date) string { return d.Format("2006-01") }

func yearKey(d core.Date) string { return strconv.Itoa(d.Year()) }

// lastMonths returns the first day of each of the n months ending with the
// month containing today, oldest first.
func lastMonths(today core.Date, n int) []core.Date {
	cur := monthStart(today)
	out := make([]core.Date, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = core.Date{Time: cur.AddDate(0, -i, 0)}
	}
	return out
}

// TimeSeries buckets income and expense for the reports page: the month
// window yields 30 daily buckets labelled "M/D" ending today, the year window
// yields 12 monthly buckets labelled "Jan 2024" ending with the current
// month. Buckets exist even when empty and are ordered oldest to newest.
func TimeSeries(txs []core.Transaction, w Window, now time.Time) []core.TrendBucket {
	today := core.DateOf(now)
	var set *bucketSet
	if w == WindowYear {
		set = newBucketSet(lastMonths(today, monthlyBuckets),
			func(d core.Date) string { return monthLabel(d.Year(), d.Month()) }, monthKey)
	} else {
		days := make([]core.Date, dailyBuckets)
		for i := 0; i < dailyBuckets; i++ {
			days[dailyBuckets-1-i] = today.AddDays(-i)
		}
		set = newBucketSet(days,
			func(d core.Date) string { return fmt.Sprintf("%d/%d", int(d.Month()), d.Day()) }, dayKey)
	}
	for _, t := range txs {
		set.add(t)
	}
	return set.result()
}

// IncomeVsExpense compares income and expense over the last 6 months (month
// window) or the last 6 calendar years (year window, labelled "2024").
func IncomeVsExpense(txs []core.Transaction, w Window, now time.Time) []core.TrendBucket {
	today := core.DateOf(now)
	var set *bucketSet
	if w == WindowYear {
		years := make([]core.Date, incomeVsExpenseBuckets)
		for i := 0; i < incomeVsExpenseBuckets; i++ {
			years[incomeVsExpenseBuckets-1-i] = core.NewDate(today.Year()-i, 1, 1)
		}
		set = newBucketSet(years, yearKey, yearKey)
	} else {
		set = newBucketSet(lastMonths(today, incomeVsExpenseBuckets),
			func(d core.Date) string { return monthLabel(d.Year(), d.Month()) }, monthKey)
	}
	for _, t := range txs {
		set.add(t)
	}
	return set.result()
}

// MonthlyTrend groups every transaction by calendar month, oldest first.
// Only months that have transactions appear.
func MonthlyTrend(txs []core.Transaction) []core.TrendBucket {
	var starts []core.Date
	seen := map[string]bool{}
	for _, t := range txs {
		s := monthStart(t.Date)
		if k := monthKey(s); !seen[k] {
			seen[k] = true
			starts = append(starts, s)
		}
	}
	sort.Slice(starts, func(a, b int) bool { return starts[a].Before(starts[b].Time) })

	set := newBucketSet(starts, func(d core.Date) string { return monthLabel(d.Year(), d.Month()) }, monthKey)
	for _, t := range txs {
		set.add(t)
	}
	return set.result()
}

// RecentMonths returns up to n trend buckets, most recent first.
func RecentMonths(trend []core.TrendBucket, n int) []core.TrendBucket {
	out := make([]core.TrendBucket, 0, min(n, len(trend)))
	for i := len(trend) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, trend[i])
	}
	return out
}

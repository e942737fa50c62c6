package report

import (
	"fintrack/internal/core"
)

// DashboardSliceLimit is how many slices the dashboard expense chart shows.
const DashboardSliceLimit = 5

// CategoryDistribution sums expenses per category, colors each slice from
// the category collection and orders slices largest first. Percentages are
// of the distribution total.
func CategoryDistribution(txs []core.Transaction, cats []core.Category) []core.CategorySlice {
	totals := ExpensesByCategory(txs)
	var total core.Money
	for _, c := range totals {
		total = total.Add(c.Amount)
	}
	out := make([]core.CategorySlice, 0, len(totals))
	for _, c := range totals {
		out = append(out, core.CategorySlice{
			Name:       c.Name,
			Value:      c.Amount,
			Color:      LookupCategory(cats, c.Name).Color,
			Percentage: c.Amount.Percent(total),
		})
	}
	return out
}

// TopSlices keeps the n largest slices and recomputes their percentages
// against the retained total.
func TopSlices(slices []core.CategorySlice, n int) []core.CategorySlice {
	if len(slices) > n {
		slices = slices[:n]
	}
	out := make([]core.CategorySlice, len(slices))
	copy(out, slices)
	var total core.Money
	for _, s := range out {
		total = total.Add(s.Value)
	}
	for i := range out {
		out[i].Percentage = out[i].Value.Percent(total)
	}
	return out
}

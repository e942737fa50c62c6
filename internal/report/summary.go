// Package report turns the flat record collections into the summaries,
// breakdowns and time series shown on the dashboard and reports pages.
// Every function is pure: callers pass the records and, where the result
// depends on the calendar, the current time.
package report

import (
	"sort"

	"fintrack/internal/core"
)

// TopExpenseCategoryLimit caps FinanceSummary.TopExpenseCategories.
const TopExpenseCategoryLimit = 5

// Summary computes income, expenses, net savings, the savings rate and the
// largest expense categories over all transactions.
func Summary(txs []core.Transaction) core.FinanceSummary {
	var income, expenses core.Money
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			income = income.Add(t.Amount)
		case core.Expense:
			expenses = expenses.Add(t.Amount)
		}
	}
	net := income.Sub(expenses)

	var rate float64
	if income.Cents > 0 {
		rate = net.Percent(income)
	}

	top := ExpensesByCategory(txs)
	for i := range top {
		top[i].Percentage = top[i].Amount.Percent(expenses)
	}
	if len(top) > TopExpenseCategoryLimit {
		top = top[:TopExpenseCategoryLimit]
	}

	return core.FinanceSummary{
		TotalIncome:          income,
		TotalExpenses:        expenses,
		NetSavings:           net,
		SavingsRate:          rate,
		TopExpenseCategories: top,
	}
}

// ExpensesByCategory sums expenses per category name, largest first. Ties
// keep the order in which categories first appear.
func ExpensesByCategory(txs []core.Transaction) []core.CategoryAmount {
	index := map[string]int{}
	out := []core.CategoryAmount{}
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, core.CategoryAmount{Name: t.Category})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Amount.Cents > out[b].Amount.Cents })
	return out
}

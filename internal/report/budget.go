package report

import (
	"time"

	"fintrack/internal/core"
)

const (
	budgetDangerAbove  = 85.0
	budgetWarningAbove = 65.0
)

// LookupCategory finds a category by name, or core.UnknownCategory.
func LookupCategory(cats []core.Category, name string) core.Category {
	for _, c := range cats {
		if c.Name == name {
			return c
		}
	}
	return core.UnknownCategory
}

// categoryName resolves an id to a name; unknown or empty ids give "".
func categoryName(cats []core.Category, id string) string {
	if id == "" {
		return ""
	}
	for _, c := range cats {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

// BudgetSpent sums expenses dated within the budget's range, inclusive on
// both ends. An open-ended budget runs until today. A budget without a
// resolvable category counts every expense.
func BudgetSpent(b core.Budget, txs []core.Transaction, cats []core.Category, now time.Time) core.Money {
	name := categoryName(cats, b.CategoryID)
	end := b.EndDate
	if end.IsZero() {
		end = core.DateOf(now)
	}

	var spent core.Money
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		if t.Date.Before(b.StartDate.Time) || t.Date.After(end.Time) {
			continue
		}
		if name != "" && t.Category != name {
			continue
		}
		spent = spent.Add(t.Amount)
	}
	return spent
}

func BudgetStatusFor(progress float64) core.BudgetStatus {
	switch {
	case progress > budgetDangerAbove:
		return core.BudgetDanger
	case progress > budgetWarningAbove:
		return core.BudgetWarning
	default:
		return core.BudgetNormal
	}
}

// BudgetUsageFor reports spend, remaining headroom and status for one budget.
func BudgetUsageFor(b core.Budget, txs []core.Transaction, cats []core.Category, now time.Time) core.BudgetUsage {
	spent := BudgetSpent(b, txs, cats, now)
	progress := spent.Percent(b.Amount)
	remaining := b.Amount.Sub(spent)
	if remaining.Cents < 0 {
		remaining = core.Money{}
	}
	return core.BudgetUsage{
		Budget:     b,
		Category:   categoryName(cats, b.CategoryID),
		Spent:      spent,
		Remaining:  remaining,
		Progress:   progress,
		Status:     BudgetStatusFor(progress),
		OverBudget: progress > 100,
	}
}

func BudgetUsages(budgets []core.Budget, txs []core.Transaction, cats []core.Category, now time.Time) []core.BudgetUsage {
	out := make([]core.BudgetUsage, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, BudgetUsageFor(b, txs, cats, now))
	}
	return out
}

// DisplayWidth clamps a progress percentage to a bar width in [0, 100].
func DisplayWidth(progress float64) float64 {
	if progress > 100 {
		return 100
	}
	if progress < 0 {
		return 0
	}
	return progress
}

package report

import (
	"sort"
	"strings"

	"fintrack/internal/core"
)

// RecentTransactionLimit is how many rows the dashboard lists.
const RecentTransactionLimit = 5

// income-only categories by convention; not enforced by the data model
var incomeCategories = map[string]bool{"Salary": true, "Investment": true, "Other": true}

var incomeOnlyCategories = map[string]bool{"Salary": true, "Investment": true}

// Filter narrows the transaction list. Empty fields and "all" match everything.
type Filter struct {
	Query    string `json:"q"`
	Type     string `json:"type"`
	Category string `json:"category"`
}

// ByDateDesc returns a copy of txs, newest first.
func ByDateDesc(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(a, b int) bool { return out[a].Date.After(out[b].Date.Time) })
	return out
}

// RecentTransactions returns up to n transactions, newest first.
func RecentTransactions(txs []core.Transaction, n int) []core.Transaction {
	out := ByDateDesc(txs)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// FilterTransactions applies a case-insensitive search over description and
// category plus the type and category filters, newest first.
func FilterTransactions(txs []core.Transaction, f Filter) []core.Transaction {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if q != "" &&
			!strings.Contains(strings.ToLower(t.Description), q) &&
			!strings.Contains(strings.ToLower(t.Category), q) {
			continue
		}
		if f.Type != "" && f.Type != "all" && string(t.Type) != f.Type {
			continue
		}
		if f.Category != "" && f.Category != "all" && t.Category != f.Category {
			continue
		}
		out = append(out, t)
	}
	return ByDateDesc(out)
}

// DistinctCategories lists category names used by transactions, in first-seen order.
func DistinctCategories(txs []core.Transaction) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, t := range txs {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	return out
}

// CategoriesForType returns the categories a form offers for a transaction
// type: Salary, Investment and Other for income; everything but Salary and
// Investment for expenses.
func CategoriesForType(cats []core.Category, typ core.TransactionType) []core.Category {
	out := []core.Category{}
	for _, c := range cats {
		if typ == core.Income {
			if incomeCategories[c.Name] {
				out = append(out, c)
			}
		} else if !incomeOnlyCategories[c.Name] {
			out = append(out, c)
		}
	}
	return out
}

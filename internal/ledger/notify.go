package ledger

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

// Notifier receives the user-visible outcome of every mutation.
type Notifier interface {
	Notify(ctx context.Context, n core.Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n core.Notification)

func (f NotifierFunc) Notify(ctx context.Context, n core.Notification) { f(ctx, n) }

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, core.Notification) {}

const (
	opAdd    = "add"
	opUpdate = "update"
	opDelete = "delete"
	opExport = "export"
)

const (
	msgCategoryInUse = "Cannot delete category that is used in transactions"
	msgExported      = "Transactions exported to CSV"
	msgSettings      = "Settings updated"
)

var nouns = map[core.Collection]string{
	core.CollectionTransactions: "Transaction",
	core.CollectionCategories:   "Category",
	core.CollectionBudgets:      "Budget",
	core.CollectionGoals:        "Goal",
}

var verbs = map[string]string{
	opAdd:    "added",
	opUpdate: "updated",
	opDelete: "deleted",
}

// successMessage renders "Transaction added", "Goal deleted" and so on.
func successMessage(c core.Collection, op string) string {
	if c == core.CollectionUser {
		return msgSettings
	}
	return nouns[c] + " " + verbs[op]
}

func failureMessage(c core.Collection) string {
	return fmt.Sprintf("Failed to save %s", c)
}

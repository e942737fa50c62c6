package core

import "time"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name       string  `json:"name"`
	Amount     Money   `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// FinanceSummary is the headline view over every transaction.
type FinanceSummary struct {
	TotalIncome          Money            `json:"totalIncome"`
	TotalExpenses        Money            `json:"totalExpenses"`
	NetSavings           Money            `json:"netSavings"`
	SavingsRate          float64          `json:"savingsRate"`
	TopExpenseCategories []CategoryAmount `json:"topExpenseCategories"`
}

type BudgetStatus string

const (
	BudgetNormal  BudgetStatus = "normal"
	BudgetWarning BudgetStatus = "warning"
	BudgetDanger  BudgetStatus = "danger"
)

// BudgetUsage is a budget together with what has been spent against it.
type BudgetUsage struct {
	Budget     Budget       `json:"budget"`
	Category   string       `json:"category,omitempty"`
	Spent      Money        `json:"spent"`
	Remaining  Money        `json:"remaining"`
	Progress   float64      `json:"progress"`
	Status     BudgetStatus `json:"status"`
	OverBudget bool         `json:"overBudget"`
}

type GoalStatus string

const (
	GoalCompleted GoalStatus = "completed"
	GoalOnTrack   GoalStatus = "on-track"
	GoalBehind    GoalStatus = "behind"
	GoalAtRisk    GoalStatus = "at-risk"
)

type GoalProgress struct {
	Goal      Goal       `json:"goal"`
	Progress  float64    `json:"progress"`
	Remaining Money      `json:"remaining"`
	Completed bool       `json:"completed"`
	Overdue   bool       `json:"overdue"`
	Status    GoalStatus `json:"status"`
}

// GoalsByPriority groups goal progress the way the goals page lists them.
type GoalsByPriority struct {
	High   []GoalProgress `json:"high"`
	Medium []GoalProgress `json:"medium"`
	Low    []GoalProgress `json:"low"`
}

// TrendBucket is one labelled bucket of a time series.
type TrendBucket struct {
	Label   string `json:"label"`
	Start   Date   `json:"start"`
	Income  Money  `json:"income"`
	Expense Money  `json:"expense"`
	Savings Money  `json:"savings"`
}

type CategorySlice struct {
	Name       string  `json:"name"`
	Value      Money   `json:"value"`
	Color      string  `json:"color"`
	Percentage float64 `json:"percentage"`
}

type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

// Collection names double as the persistence keys.
type Collection string

const (
	CollectionTransactions Collection = "transactions"
	CollectionCategories   Collection = "categories"
	CollectionBudgets      Collection = "budgets"
	CollectionGoals        Collection = "goals"
	CollectionUser         Collection = "user"
)

// Notification is the user-visible outcome of a mutation.
type Notification struct {
	Kind       NotificationKind `json:"kind"`
	Message    string           `json:"message"`
	Collection Collection       `json:"collection,omitempty"`
	Operation  string           `json:"operation,omitempty"`
	ID         string           `json:"id,omitempty"`
	Time       time.Time        `json:"time"`
}

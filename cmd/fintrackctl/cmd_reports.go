package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func newSummaryCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show totals, savings rate and top expense categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			cur := a.ledger.User().Currency
			sum := a.reports.Summary()

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "Total income\t%s\n", report.FormatCurrency(sum.TotalIncome, cur))
			fmt.Fprintf(tw, "Total expenses\t%s\n", report.FormatCurrency(sum.TotalExpenses, cur))
			fmt.Fprintf(tw, "Net savings\t%s\n", report.FormatCurrency(sum.NetSavings, cur))
			fmt.Fprintf(tw, "Savings rate\t%.1f%%\n", sum.SavingsRate)
			for _, c := range sum.TopExpenseCategories {
				fmt.Fprintf(tw, "  %s\t%s\t%.1f%%\n", c.Name, report.FormatCurrency(c.Amount, cur), c.Percentage)
			}
			return tw.Flush()
		},
	}
}

func newBudgetsCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "budgets",
		Short: "Show spending against each budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			cur := a.ledger.User().Currency
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "BUDGET\tCATEGORY\tSPENT\tLIMIT\tPROGRESS\t\tSTATUS")
			for _, u := range a.reports.Budgets() {
				category := u.Category
				if category == "" {
					category = "all"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.0f%%\t%s\t%s\n", u.Budget.Name, category,
					report.FormatCurrency(u.Spent, cur), report.FormatCurrency(u.Budget.Amount, cur),
					u.Progress, progressBar(u.Progress), u.Status)
			}
			return tw.Flush()
		},
	}
}

// progressBar draws ten cells; overspent budgets stay full.
func progressBar(progress float64) string {
	filled := int(report.DisplayWidth(progress) / 10)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", 10-filled) + "]"
}

func newGoalsCmd(get func() *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "List goals by descending progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			cur := a.ledger.User().Currency
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tGOAL\tPRIORITY\tSAVED\tTARGET\tPROGRESS\tSTATUS")
			for _, p := range a.reports.TopGoals(limit) {
				status := string(p.Status)
				if p.Overdue {
					status += " (overdue)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.0f%%\t%s\n", p.Goal.ID, p.Goal.Name, p.Goal.Priority,
					report.FormatCurrency(p.Goal.CurrentAmount, cur), report.FormatCurrency(p.Goal.TargetAmount, cur),
					p.Progress, status)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", -1, "show at most n goals (-1 for all)")
	return cmd
}

func printBuckets(w io.Writer, cur string, buckets []core.TrendBucket) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "PERIOD\tINCOME\tEXPENSE\tSAVINGS")
	for _, b := range buckets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.Label,
			report.FormatCurrency(b.Income, cur), report.FormatCurrency(b.Expense, cur), report.FormatCurrency(b.Savings, cur))
	}
	return tw.Flush()
}

func newTrendCmd(get func() *app) *cobra.Command {
	var recent int
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show income and expense per calendar month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			trend := a.reports.MonthlyTrend()
			if recent > 0 {
				trend = report.RecentMonths(trend, recent)
			}
			return printBuckets(cmd.OutOrStdout(), a.ledger.User().Currency, trend)
		},
	}
	cmd.Flags().IntVar(&recent, "recent", 0, "only the n most recent months, newest first")
	return cmd
}

func newSeriesCmd(get func() *app) *cobra.Command {
	var window string
	var compare bool
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Show the reports time series for a month or year window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := report.ParseWindow(window)
			if err != nil {
				return err
			}
			a := get()
			buckets := a.reports.TimeSeries(w)
			if compare {
				buckets = a.reports.IncomeVsExpense(w)
			}
			return printBuckets(cmd.OutOrStdout(), a.ledger.User().Currency, buckets)
		},
	}
	cmd.Flags().StringVarP(&window, "window", "w", string(report.WindowMonth), "month or year")
	cmd.Flags().BoolVar(&compare, "compare", false, "income versus expense buckets instead of the time series")
	return cmd
}

// parseDateFlag accepts YYYY-MM-DD and defaults to today.
func parseDateFlag(s string) (core.Date, error) {
	if s == "" {
		return core.DateOf(time.Now()), nil
	}
	return core.ParseDate(s)
}

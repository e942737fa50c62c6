package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

func newAddCmd(get func() *app) *cobra.Command {
	var (
		amount, description, category, date string
		income                              bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long:  "Record a transaction.\n\n" + writeNote,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := core.ParseMoney(amount)
			if err != nil {
				return err
			}
			d, err := parseDateFlag(date)
			if err != nil {
				return err
			}
			typ := core.Expense
			if income {
				typ = core.Income
			}
			tx, err := get().ledger.AddTransaction(cmd.Context(), core.Transaction{
				Amount:      m,
				Description: description,
				Category:    category,
				Date:        d,
				Type:        typ,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tx.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "amount, e.g. 12.50")
	cmd.Flags().StringVarP(&description, "description", "d", "", "what the money was for")
	cmd.Flags().StringVarP(&category, "category", "c", "Other", "category name")
	cmd.Flags().StringVar(&date, "date", "", "YYYY-MM-DD, defaults to today")
	cmd.Flags().BoolVar(&income, "income", false, "record income instead of an expense")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newContributeCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "contribute <goal-id> <amount>",
		Short: "Add money to a goal, capped at its target",
		Long:  "Add money to a goal, capped at its target.\n\n" + writeNote,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := core.ParseMoney(args[1])
			if err != nil {
				return err
			}
			a := get()
			g, err := a.ledger.ContributeToGoal(cmd.Context(), args[0], delta)
			if err != nil {
				return err
			}
			cur := a.ledger.User().Currency
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s of %s\n", g.Name,
				report.FormatCurrency(g.CurrentAmount, cur), report.FormatCurrency(g.TargetAmount, cur))
			return nil
		},
	}
}

func newExportCmd(get func() *app) *cobra.Command {
	var (
		out    string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every transaction as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if !cmd.Flags().Changed("strict") {
				strict = a.cfg.CSVStrict
			}
			var buf bytes.Buffer
			if err := a.ledger.ExportCSV(cmd.Context(), &buf, strict); err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", report.CSVFileName, "output file, - for stdout")
	cmd.Flags().BoolVar(&strict, "strict", false, "RFC 4180 quoting instead of the legacy layout")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
)

func newThemeCmd(get func() *app) *cobra.Command {
	var scheme string
	cmd := &cobra.Command{
		Use:       "theme [light|dark|system|toggle]",
		Short:     "Show or change the display preferences",
		Long:      "Show or change the display preferences.\n\n" + writeNote,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "system", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			ctx := cmd.Context()
			if len(args) == 1 {
				var err error
				if args[0] == "toggle" {
					_, err = a.prefs.Toggle(ctx)
				} else {
					err = a.prefs.SetThemeMode(ctx, core.ThemeMode(args[0]))
				}
				if err != nil {
					return err
				}
			}
			if scheme != "" {
				if err := a.prefs.SetColorScheme(ctx, core.ColorScheme(scheme)); err != nil {
					return err
				}
			}
			st := a.prefs.State()
			fmt.Fprintf(cmd.OutOrStdout(), "theme=%s scheme=%s dark=%t\n", st.ThemeMode, st.ColorScheme, st.Dark)
			return nil
		},
	}
	cmd.Flags().StringVar(&scheme, "scheme", "", "blue, green, purple, teal or orange")
	return cmd
}

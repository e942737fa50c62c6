// Command fintrackctl reads and edits the ledger from the terminal, using the
// same storage configuration as the server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/prefs"
	"fintrack/internal/report"
)

// app is the opened ledger shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	ledger  *ledger.Store
	prefs   *prefs.Store
	reports *report.Cached
	cleanup backend.CleanupFunc
}

func (a *app) close() {
	if a.cleanup == nil {
		return
	}
	if err := a.cleanup(); err != nil {
		a.logger.Warn("Failed to close storage", log.FieldError, err)
	}
}

func openApp(ctx context.Context, stderr io.Writer) (*app, error) {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	lc := log.DefaultConfig()
	lc.Level = log.ParseLevel(cfg.LogLevel)
	lc.Format = cfg.LogFormat
	lc.Component = log.ComponentCLI
	lc.Output = stderr
	logger := log.New(lc)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, cleanup: res.Cleanup}

	a.ledger, err = ledger.Open(ctx, res.KV,
		ledger.WithLogger(logger),
		ledger.WithNotifier(notify.NewLogNotifier(logger)))
	if err != nil {
		a.close()
		return nil, err
	}
	a.prefs, err = prefs.Open(ctx, res.KV, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	a.reports = report.NewCached(a.ledger, cache.NewLRUCache[any](cfg.ReportCacheSize, cfg.ReportCacheTTL), time.Now)
	return a, nil
}

// writeNote is appended to the help of every command that changes records.
const writeNote = `Writes go straight to storage. A running fintrack server keeps its own
in-memory copy of the ledger and overwrites these changes on its next save,
so stop the server before using add, contribute or theme.`

// newRootCmd returns the command tree and a func that closes whatever the
// command opened. PersistentPostRun is skipped when RunE fails, so callers
// close explicitly.
func newRootCmd() (*cobra.Command, func()) {
	var a *app
	root := &cobra.Command{
		Use:   "fintrackctl",
		Short: "Inspect and edit the personal finance ledger",
		Long: `fintrackctl opens the ledger configured by the environment
(DATA_BACKEND, SQLITE_DB_PATH, ...) and runs one command against it.

Reports:
  summary, budgets, goals, trend, series
Records:
  add, contribute, export
Preferences:
  theme

` + writeNote,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opened, err := openApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a = opened
			return nil
		},
	}
	get := func() *app { return a }

	root.AddCommand(
		newSummaryCmd(get),
		newBudgetsCmd(get),
		newGoalsCmd(get),
		newTrendCmd(get),
		newSeriesCmd(get),
		newAddCmd(get),
		newContributeCmd(get),
		newExportCmd(get),
		newThemeCmd(get),
	)
	return root, func() {
		if a != nil {
			a.close()
		}
	}
}

func main() {
	cli.LoadEnvFile()
	root, closeApp := newRootCmd()
	err := root.ExecuteContext(context.Background())
	closeApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/prefs"
	"fintrack/internal/report"
)

const cacheSweepInterval = time.Minute

type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Exit(log.New(log.DefaultConfig()), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, log.ComponentApp)
	logger.Info("Starting fintrack", log.FieldOperation, log.OpStartup, "backend", cfg.DataBackend)

	ctx := context.Background()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Exit(logger, "Invalid backend configuration", err)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		cli.Exit(logger, "Failed to initialize storage", err)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to close storage", log.FieldError, err)
		}
	}()

	hub := notify.NewHub(logger)
	notifier, closeNotifier := backend.NewNotifier(cfg, hub, logger)
	defer func() {
		if err := closeNotifier(); err != nil {
			logger.Warn("Failed to close notifier", log.FieldError, err)
		}
	}()

	store, err := ledger.Open(ctx, res.KV, ledger.WithNotifier(notifier), ledger.WithLogger(logger))
	if err != nil {
		cli.Exit(logger, "Failed to load ledger", err)
	}
	preferences, err := prefs.Open(ctx, res.KV, logger)
	if err != nil {
		cli.Exit(logger, "Failed to load preferences", err)
	}
	unsubscribe := preferences.Subscribe(hub.PreferencesChanged)
	defer unsubscribe()

	reportCache := cache.NewLRUCache[any](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	sweeper := cache.NewManager(logger)
	sweeper.Register(reportCache)

	deps := apphttp.Deps{
		Ledger:  store,
		Reports: report.NewCached(store, reportCache, nil),
		Prefs:   preferences,
		Hub:     hub,
		Logger:  logger,
	}
	if p, ok := res.KV.(pinger); ok {
		deps.Ready = p.Ping
	}
	srv := apphttp.NewServer(cfg.Addr(), deps, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CSVStrict:          cfg.CSVStrict,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		hub.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(gctx, cacheSweepInterval)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "addr", cfg.Addr())
		return
	}
	<-done
	logger.Info("Server stopped gracefully")
}

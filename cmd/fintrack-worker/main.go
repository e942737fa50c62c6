package main

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Exit(log.New(log.DefaultConfig()), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting fintrack-worker", log.FieldOperation, log.OpStartup)

	if cfg.DataBackend == config.BackendMemory {
		// the worker would only ever see its own empty store
		logger.Warn("Memory backend selected; the worker cannot see the server's ledger")
	}

	ctx := context.Background()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Exit(logger, "Invalid backend configuration", err)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		cli.Exit(logger, "Failed to initialize storage", err)
	}
	defer res.Cleanup()

	exporter, err := backend.NewExporter(ctx, cfg, logger)
	if err != nil {
		cli.Exit(logger, "Failed to initialize Google Sheets client", err)
	}
	exportWorker := worker.NewExportWorker(res.KV, exporter, logger)

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	if err := exportWorker.StartupSync(runCtx); err != nil {
		// keep running; the periodic export retries
		logger.Error("Startup export failed", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(runCtx)
	if cfg.AMQPURL != "" {
		client := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		defer client.Close()
		g.Go(func() error {
			return client.ConsumeWithRetry(gctx, exportWorker.HandleEvent)
		})
	} else {
		logger.Info("AMQP disabled, relying on periodic export", "interval", cfg.ExportInterval)
	}
	g.Go(func() error {
		return exportWorker.RunPeriodic(gctx, cfg.ExportInterval)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		return
	}
	<-done
	logger.Info("Worker shutdown complete")
}

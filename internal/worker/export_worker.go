// Package worker mirrors the transaction ledger into the spreadsheet export
// target whenever the host publishes a change.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// ExportWorker rewrites the whole sheet on each relevant event. Events older
// than the last completed export are already covered and are skipped.
type ExportWorker struct {
	kv       storage.KV
	exporter sheets.TransactionExporter
	logger   *log.Logger
	now      func() time.Time

	mu         sync.Mutex
	lastExport time.Time
}

func NewExportWorker(kv storage.KV, exporter sheets.TransactionExporter, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &ExportWorker{
		kv:       kv,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentWorker),
		now:      time.Now,
	}
}

// HandleEvent is the AMQP consumer callback.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	if ev.Collection != core.CollectionTransactions {
		return nil
	}

	w.mu.Lock()
	stale := !w.lastExport.IsZero() && ev.Timestamp.Before(w.lastExport)
	w.mu.Unlock()
	if stale {
		w.logger.DebugContext(ctx, "Skipping event already covered by last export",
			log.FieldRecordID, ev.ID, log.FieldOperation, ev.Operation)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing ledger event",
		log.FieldCollection, ev.Collection,
		log.FieldOperation, ev.Operation,
		log.FieldRecordID, ev.ID)
	_, err := w.Export(ctx)
	return err
}

// Export loads the stored transactions and writes them to the exporter.
func (w *ExportWorker) Export(ctx context.Context) (int, error) {
	started := w.now()
	txs, err := w.loadTransactions(ctx)
	if err != nil {
		return 0, err
	}
	n, err := w.exporter.ExportTransactions(ctx, txs)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to export transactions", log.FieldError, err)
		return 0, fmt.Errorf("export transactions: %w", err)
	}

	w.mu.Lock()
	w.lastExport = started
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "Transactions exported",
		log.FieldOperation, log.OpExport,
		log.FieldCount, n,
		log.FieldDuration, time.Since(started).Milliseconds())
	return n, nil
}

func (w *ExportWorker) loadTransactions(ctx context.Context) ([]core.Transaction, error) {
	raw, found, err := w.kv.Get(ctx, string(core.CollectionTransactions))
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	if !found {
		return []core.Transaction{}, nil
	}
	var txs []core.Transaction
	if err := json.Unmarshal(raw, &txs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return txs, nil
}

// StartupSync exports once so the sheet catches up with changes made while
// the worker was down.
func (w *ExportWorker) StartupSync(ctx context.Context) error {
	n, err := w.Export(ctx)
	if err != nil {
		return fmt.Errorf("startup export: %w", err)
	}
	w.logger.InfoContext(ctx, "Startup export completed", log.FieldCount, n)
	return nil
}

// RunPeriodic re-exports every interval as a backstop for lost messages.
func (w *ExportWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.Export(ctx); err != nil {
				w.logger.WarnContext(ctx, "Periodic export failed", log.FieldError, err)
			}
		}
	}
}

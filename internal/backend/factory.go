package backend

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/sheets/memory"
	"fintrack/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		kv, err := storage.NewSQLiteKV(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return &BackendResult{KV: kv, Cleanup: kv.Close}, nil
	case MemoryBackend:
		f.logger.InfoContext(ctx, "Initialized memory backend; data is lost on exit")
		kv := storage.NewMemoryKV()
		return &BackendResult{KV: kv, Cleanup: kv.Close}, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// NewNotifier chains the log notifier, the websocket hub and, when an AMQP
// URL is configured, the event publisher. hub may be nil.
func NewNotifier(cfg *config.Config, hub *notify.Hub, logger *log.Logger) (ledger.Notifier, CleanupFunc) {
	if logger == nil {
		logger = log.Discard()
	}
	chain := notify.Multi{notify.NewLogNotifier(logger)}
	if hub != nil {
		chain = append(chain, hub)
	}
	if cfg.AMQPURL == "" {
		return chain, func() error { return nil }
	}

	client := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err := client.Connect(); err != nil {
		// publishing reconnects on demand
		logger.WithComponent(log.ComponentBackend).Warn("AMQP broker unavailable at startup", log.FieldError, err)
	}
	return append(chain, client), client.Close
}

// NewExporter returns the Google Sheets exporter when a spreadsheet is
// configured and an in-memory one otherwise.
func NewExporter(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.TransactionExporter, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if !cfg.SheetsEnabled() {
		logger.WithComponent(log.ComponentBackend).WarnContext(ctx, "No spreadsheet configured, exporting to memory")
		return memory.New(), nil
	}
	return gsheet.NewClient(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
}

// Package sheets mirrors the transaction ledger into an external spreadsheet.
package sheets

import (
	"context"

	"fintrack/internal/core"
)

// TransactionExporter replaces the target's contents with txs, header first,
// and returns the number of data rows written.
type TransactionExporter interface {
	ExportTransactions(ctx context.Context, txs []core.Transaction) (int, error)
}

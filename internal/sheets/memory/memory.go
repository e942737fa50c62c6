// Package memory is an in-process TransactionExporter used when no
// spreadsheet is configured and in tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/report"
	ports "fintrack/internal/sheets"
)

var _ ports.TransactionExporter = (*Store)(nil)

type Store struct {
	mu      sync.Mutex
	rows    [][]string
	exports int
}

func New() *Store {
	return &Store{}
}

// ExportTransactions replaces the stored rows, header first.
func (s *Store) ExportTransactions(_ context.Context, txs []core.Transaction) (int, error) {
	rows := report.CSVRows(txs)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
	s.exports++
	return len(txs), nil
}

func (s *Store) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = slices.Clone(r)
	}
	return out
}

// Exports counts completed exports.
func (s *Store) Exports() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exports
}

// Package ledger holds the user's records in memory and writes every change
// through to a key-value store, one key per collection.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/storage"
)

var (
	ErrCategoryInUse = errors.New("category is used in transactions")
	ErrNotFound      = errors.New("record not found")
)

// Store is the record store and mutation API. Mutations are serialized and
// each one rewrites the whole affected collection before it becomes visible.
type Store struct {
	mu       sync.RWMutex
	kv       storage.KV
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time
	newID    func() string

	version      uint64
	transactions []core.Transaction
	categories   []core.Category
	budgets      []core.Budget
	goals        []core.Goal
	user         core.User
}

type Option func(*Store)

func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentLedger)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Snapshot is a consistent copy of every collection at one version.
type Snapshot = report.Dataset

// Open loads every collection from kv. Missing keys are seeded with defaults
// and written back immediately.
func Open(ctx context.Context, kv storage.KV, opts ...Option) (*Store, error) {
	s := &Store{
		kv:       kv,
		notifier: nopNotifier{},
		logger:   log.New(log.DefaultConfig()).WithComponent(log.ComponentLedger),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	var seeded []core.Collection
	load := func(c core.Collection, dst any, seed func()) error {
		found, err := s.read(ctx, c, dst)
		if err != nil {
			return err
		}
		if !found {
			seed()
			seeded = append(seeded, c)
		}
		return nil
	}

	if err := load(core.CollectionTransactions, &s.transactions, func() { s.transactions = []core.Transaction{} }); err != nil {
		return nil, err
	}
	if err := load(core.CollectionCategories, &s.categories, func() { s.categories = DefaultCategories(s.newID) }); err != nil {
		return nil, err
	}
	if err := load(core.CollectionBudgets, &s.budgets, func() { s.budgets = []core.Budget{} }); err != nil {
		return nil, err
	}
	if err := load(core.CollectionGoals, &s.goals, func() { s.goals = []core.Goal{} }); err != nil {
		return nil, err
	}
	if err := load(core.CollectionUser, &s.user, func() { s.user = DefaultUser() }); err != nil {
		return nil, err
	}

	for _, c := range seeded {
		if err := s.write(ctx, c, s.collectionValue(c)); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Ledger loaded",
		log.FieldOperation, log.OpLoad,
		"transactions", len(s.transactions),
		"categories", len(s.categories),
		"budgets", len(s.budgets),
		"goals", len(s.goals),
		"seeded", len(seeded))
	return s, nil
}

func (s *Store) read(ctx context.Context, c core.Collection, dst any) (bool, error) {
	raw, found, err := s.kv.Get(ctx, string(c))
	if err != nil {
		return false, fmt.Errorf("load %s: %w", c, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", c, err)
	}
	return true, nil
}

func (s *Store) write(ctx context.Context, c core.Collection, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c, err)
	}
	if err := s.kv.Set(ctx, string(c), raw); err != nil {
		return fmt.Errorf("save %s: %w", c, err)
	}
	return nil
}

func (s *Store) collectionValue(c core.Collection) any {
	switch c {
	case core.CollectionTransactions:
		return s.transactions
	case core.CollectionCategories:
		return s.categories
	case core.CollectionBudgets:
		return s.budgets
	case core.CollectionGoals:
		return s.goals
	default:
		return s.user
	}
}

// commit persists next for collection c and, only when the write succeeds,
// runs apply under the write lock. The caller must hold s.mu.
func (s *Store) commit(ctx context.Context, c core.Collection, op, id string, next any, apply func()) (core.Notification, error) {
	fields := log.NewFields().WithOperation(op).WithRecord(string(c), id)
	if err := s.write(ctx, c, next); err != nil {
		s.logger.WithFields(fields.WithError(err).WithErrorType(log.ErrorTypeDatabase)).
			ErrorContext(ctx, "Failed to persist collection")
		return s.notification(core.NotifyError, failureMessage(c), c, op, id), err
	}
	apply()
	s.version++
	msg := successMessage(c, op)
	s.logger.WithFields(fields).InfoContext(ctx, msg, log.FieldVersion, s.version)
	return s.notification(core.NotifySuccess, msg, c, op, id), nil
}

func (s *Store) notification(kind core.NotificationKind, msg string, c core.Collection, op, id string) core.Notification {
	return core.Notification{
		Kind:       kind,
		Message:    msg,
		Collection: c,
		Operation:  op,
		ID:         id,
		Time:       s.now(),
	}
}

// Version increases by one on every successful mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Version:      s.version,
		Transactions: slices.Clone(s.transactions),
		Categories:   slices.Clone(s.categories),
		Budgets:      slices.Clone(s.budgets),
		Goals:        slices.Clone(s.goals),
		User:         s.user,
	}
}

func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.transactions)
}

func (s *Store) Categories() []core.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

func (s *Store) Budgets() []core.Budget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.budgets)
}

func (s *Store) Goals() []core.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.goals)
}

func (s *Store) User() core.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func indexByID[T any](items []T, id string, idOf func(T) string) int {
	return slices.IndexFunc(items, func(it T) bool { return idOf(it) == id })
}

// appended returns a new slice; the live one is never written in place.
func appended[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, items...)
	return append(out, item)
}

func replacedAt[T any](items []T, i int, item T) []T {
	out := slices.Clone(items)
	out[i] = item
	return out
}

func without[T any](items []T, id string, idOf func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if idOf(it) != id {
			out = append(out, it)
		}
	}
	return out
}

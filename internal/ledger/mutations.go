package ledger

import (
	"context"
	"fmt"
	"io"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
)

type record interface {
	Validate() error
}

// collection binds a live slice on the store to its key and id accessors.
type collection[T record] struct {
	name  core.Collection
	items *[]T
	idOf  func(T) string
	setID func(*T, string)
}

func (s *Store) transactionsC() collection[core.Transaction] {
	return collection[core.Transaction]{
		name:  core.CollectionTransactions,
		items: &s.transactions,
		idOf:  func(t core.Transaction) string { return t.ID },
		setID: func(t *core.Transaction, id string) { t.ID = id },
	}
}

func (s *Store) categoriesC() collection[core.Category] {
	return collection[core.Category]{
		name:  core.CollectionCategories,
		items: &s.categories,
		idOf:  func(c core.Category) string { return c.ID },
		setID: func(c *core.Category, id string) { c.ID = id },
	}
}

func (s *Store) budgetsC() collection[core.Budget] {
	return collection[core.Budget]{
		name:  core.CollectionBudgets,
		items: &s.budgets,
		idOf:  func(b core.Budget) string { return b.ID },
		setID: func(b *core.Budget, id string) { b.ID = id },
	}
}

func (s *Store) goalsC() collection[core.Goal] {
	return collection[core.Goal]{
		name:  core.CollectionGoals,
		items: &s.goals,
		idOf:  func(g core.Goal) string { return g.ID },
		setID: func(g *core.Goal, id string) { g.ID = id },
	}
}

func add[T record](ctx context.Context, s *Store, c collection[T], item T) (T, error) {
	var zero T
	if err := item.Validate(); err != nil {
		return zero, err
	}
	s.mu.Lock()
	c.setID(&item, s.newID())
	next := appended(*c.items, item)
	n, err := s.commit(ctx, c.name, opAdd, c.idOf(item), next, func() { *c.items = next })
	s.mu.Unlock()

	s.notifier.Notify(ctx, n)
	if err != nil {
		return zero, err
	}
	return item, nil
}

func update[T record](ctx context.Context, s *Store, c collection[T], item T) error {
	if err := item.Validate(); err != nil {
		return err
	}
	_, err := updateWith(ctx, s, c, c.idOf(item), func(T) T { return item })
	return err
}

// updateWith replaces the record id with fn(current). The lookup, fn and the
// write happen under one write lock, so read-modify-write callers never lose
// a concurrent change.
func updateWith[T record](ctx context.Context, s *Store, c collection[T], id string, fn func(T) T) (T, error) {
	var zero T
	s.mu.Lock()
	i := indexByID(*c.items, id, c.idOf)
	if i < 0 {
		s.mu.Unlock()
		return zero, fmt.Errorf("update %s %q: %w", c.name, id, ErrNotFound)
	}
	item := fn((*c.items)[i])
	c.setID(&item, id)
	if err := item.Validate(); err != nil {
		s.mu.Unlock()
		return zero, err
	}
	next := replacedAt(*c.items, i, item)
	n, err := s.commit(ctx, c.name, opUpdate, id, next, func() { *c.items = next })
	s.mu.Unlock()

	s.notifier.Notify(ctx, n)
	if err != nil {
		return zero, err
	}
	return item, nil
}

// remove deletes id from c. guard runs under the write lock and can veto the
// delete with its own notification.
func remove[T record](ctx context.Context, s *Store, c collection[T], id string, guard func() (core.Notification, error)) error {
	s.mu.Lock()
	if guard != nil {
		if n, err := guard(); err != nil {
			s.mu.Unlock()
			s.notifier.Notify(ctx, n)
			return err
		}
	}
	next := without(*c.items, id, c.idOf)
	n, err := s.commit(ctx, c.name, opDelete, id, next, func() { *c.items = next })
	s.mu.Unlock()

	s.notifier.Notify(ctx, n)
	return err
}

func (s *Store) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	return add(ctx, s, s.transactionsC(), tx)
}

func (s *Store) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	return update(ctx, s, s.transactionsC(), tx)
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	return remove(ctx, s, s.transactionsC(), id, nil)
}

func (s *Store) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	return add(ctx, s, s.categoriesC(), c)
}

func (s *Store) UpdateCategory(ctx context.Context, c core.Category) error {
	return update(ctx, s, s.categoriesC(), c)
}

// DeleteCategory refuses to remove a category whose name any transaction
// still carries; the collection is left untouched in that case.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return remove(ctx, s, s.categoriesC(), id, func() (core.Notification, error) {
		i := indexByID(s.categories, id, func(c core.Category) string { return c.ID })
		if i < 0 {
			return core.Notification{}, nil
		}
		name := s.categories[i].Name
		for _, tx := range s.transactions {
			if tx.Category == name {
				s.logger.WithFields(log.NewFields().
					WithOperation(log.OpDelete).
					WithRecord(string(core.CollectionCategories), id).
					WithErrorType(log.ErrorTypeConflict)).
					WarnContext(ctx, msgCategoryInUse, log.FieldCategory, name)
				n := s.notification(core.NotifyError, msgCategoryInUse, core.CollectionCategories, opDelete, id)
				return n, fmt.Errorf("delete category %q: %w", name, ErrCategoryInUse)
			}
		}
		return core.Notification{}, nil
	})
}

func (s *Store) AddBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	return add(ctx, s, s.budgetsC(), b)
}

func (s *Store) UpdateBudget(ctx context.Context, b core.Budget) error {
	return update(ctx, s, s.budgetsC(), b)
}

func (s *Store) DeleteBudget(ctx context.Context, id string) error {
	return remove(ctx, s, s.budgetsC(), id, nil)
}

func (s *Store) AddGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	return add(ctx, s, s.goalsC(), g)
}

func (s *Store) UpdateGoal(ctx context.Context, g core.Goal) error {
	return update(ctx, s, s.goalsC(), g)
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	return remove(ctx, s, s.goalsC(), id, nil)
}

// ContributeToGoal adds delta to the goal's saved amount, capped at its target.
func (s *Store) ContributeToGoal(ctx context.Context, id string, delta core.Money) (core.Goal, error) {
	if err := delta.Validate(); err != nil {
		return core.Goal{}, err
	}
	return updateWith(ctx, s, s.goalsC(), id, func(g core.Goal) core.Goal {
		return report.Contribute(g, delta)
	})
}

// UserPatch carries the profile fields to change; nil fields are kept.
type UserPatch struct {
	Name        *string           `json:"name,omitempty"`
	Email       *string           `json:"email,omitempty"`
	Currency    *string           `json:"currency,omitempty"`
	Preferences *core.Preferences `json:"preferences,omitempty"`
}

func (s *Store) UpdateUser(ctx context.Context, patch UserPatch) (core.User, error) {
	s.mu.Lock()
	u := s.user
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Currency != nil {
		u.Currency = *patch.Currency
	}
	if patch.Preferences != nil {
		u.Preferences = *patch.Preferences
	}
	if err := u.Validate(); err != nil {
		s.mu.Unlock()
		return core.User{}, err
	}
	n, err := s.commit(ctx, core.CollectionUser, opUpdate, u.ID, u, func() { s.user = u })
	s.mu.Unlock()

	s.notifier.Notify(ctx, n)
	if err != nil {
		return core.User{}, err
	}
	return u, nil
}

// ExportCSV writes every transaction as CSV. strict selects RFC 4180 quoting.
func (s *Store) ExportCSV(ctx context.Context, w io.Writer, strict bool) error {
	txs := s.Transactions()
	if err := report.WriteCSV(w, txs, strict); err != nil {
		return fmt.Errorf("export transactions: %w", err)
	}
	s.logger.InfoContext(ctx, msgExported, log.FieldOperation, log.OpExport, log.FieldCount, len(txs))
	s.notifier.Notify(ctx, s.notification(core.NotifySuccess, msgExported, core.CollectionTransactions, opExport, ""))
	return nil
}

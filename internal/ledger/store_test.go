package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

type recorder struct {
	mu    sync.Mutex
	items []core.Notification
}

func (r *recorder) Notify(_ context.Context, n core.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recorder) last() core.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[len(r.items)-1]
}

// flakyKV fails every Set while failing is true.
type flakyKV struct {
	*storage.MemoryKV
	failing bool
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	if f.failing {
		return errors.New("disk full")
	}
	return f.MemoryKV.Set(ctx, key, value)
}

var fixedNow = time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func openStore(t *testing.T, kv storage.KV) (*Store, *recorder) {
	t.Helper()
	rec := &recorder{}
	s, err := Open(context.Background(), kv,
		WithNotifier(rec),
		WithLogger(log.Discard()),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(sequentialIDs()))
	require.NoError(t, err)
	return s, rec
}

func sampleTx() core.Transaction {
	return core.Transaction{
		Amount:      core.Cents(4000),
		Description: "Groceries",
		Category:    "Food",
		Date:        core.NewDate(2024, 1, 15),
		Type:        core.Expense,
	}
}

func TestOpenSeedsDefaults(t *testing.T) {
	kv := storage.NewMemoryKV()
	s, _ := openStore(t, kv)

	assert.Empty(t, s.Transactions())
	assert.Len(t, s.Categories(), 11)
	assert.Equal(t, DefaultUser(), s.User())
	assert.Equal(t, []string{"budgets", "categories", "goals", "transactions", "user"}, kv.Keys())

	raw, found, err := kv.Get(context.Background(), "transactions")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestOpenLoadsExistingCollections(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "categories", []byte(`[{"id":"c1","name":"Food","color":"#22c55e"}]`)))
	require.NoError(t, kv.Set(ctx, "transactions", []byte(`[{"id":"t1","amount":12.5,"description":"Lunch","category":"Food","date":"2024-01-15","type":"expense"}]`)))

	s, _ := openStore(t, kv)
	require.Len(t, s.Categories(), 1)
	require.Len(t, s.Transactions(), 1)
	assert.Equal(t, int64(1250), s.Transactions()[0].Amount.Cents)
}

func TestOpenRejectsCorruptCollection(t *testing.T) {
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(context.Background(), "goals", []byte(`{not json`)))
	_, err := Open(context.Background(), kv, WithLogger(log.Discard()))
	assert.ErrorContains(t, err, "decode goals")
}

func TestTransactionLifecycle(t *testing.T) {
	kv := storage.NewMemoryKV()
	s, rec := openStore(t, kv)
	ctx := context.Background()

	added, err := s.AddTransaction(ctx, sampleTx())
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "Transaction added", rec.last().Message)
	v := s.Version()

	added.Amount = core.Cents(5000)
	require.NoError(t, s.UpdateTransaction(ctx, added))
	assert.Equal(t, "Transaction updated", rec.last().Message)
	assert.Equal(t, int64(5000), s.Transactions()[0].Amount.Cents)
	assert.Greater(t, s.Version(), v)

	var persisted []core.Transaction
	raw, _, _ := kv.Get(ctx, "transactions")
	require.NoError(t, json.Unmarshal(raw, &persisted))
	require.Len(t, persisted, 1)
	assert.Equal(t, int64(5000), persisted[0].Amount.Cents)

	require.NoError(t, s.DeleteTransaction(ctx, added.ID))
	assert.Equal(t, "Transaction deleted", rec.last().Message)
	assert.Empty(t, s.Transactions())
}

func TestAddAssignsUniqueIDs(t *testing.T) {
	s, _ := openStore(t, storage.NewMemoryKV())
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		tx, err := s.AddTransaction(context.Background(), sampleTx())
		require.NoError(t, err)
		assert.False(t, seen[tx.ID])
		seen[tx.ID] = true
	}
}

func TestUpdateUnknownIDIsNotFound(t *testing.T) {
	s, rec := openStore(t, storage.NewMemoryKV())
	tx := sampleTx()
	tx.ID = "missing"
	err := s.UpdateTransaction(context.Background(), tx)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, rec.items)
}

func TestValidationHappensBeforeWrite(t *testing.T) {
	s, rec := openStore(t, storage.NewMemoryKV())
	bad := sampleTx()
	bad.Description = ""
	_, err := s.AddTransaction(context.Background(), bad)
	assert.ErrorIs(t, err, core.ErrEmptyDescription)
	assert.Empty(t, s.Transactions())
	assert.Empty(t, rec.items)
}

func TestDeleteCategoryInUse(t *testing.T) {
	s, rec := openStore(t, storage.NewMemoryKV())
	ctx := context.Background()
	_, err := s.AddTransaction(ctx, sampleTx())
	require.NoError(t, err)

	var food core.Category
	for _, c := range s.Categories() {
		if c.Name == "Food" {
			food = c
		}
	}
	require.NotEmpty(t, food.ID)
	before := s.Categories()
	v := s.Version()

	err = s.DeleteCategory(ctx, food.ID)
	assert.ErrorIs(t, err, ErrCategoryInUse)
	assert.Equal(t, before, s.Categories())
	assert.Equal(t, v, s.Version())
	assert.Equal(t, core.NotifyError, rec.last().Kind)
	assert.Equal(t, "Cannot delete category that is used in transactions", rec.last().Message)

	var housing core.Category
	for _, c := range s.Categories() {
		if c.Name == "Housing" {
			housing = c
		}
	}
	require.NoError(t, s.DeleteCategory(ctx, housing.ID))
	assert.Len(t, s.Categories(), 10)
	assert.Equal(t, "Category deleted", rec.last().Message)
}

func TestPersistFailureLeavesStateUnchanged(t *testing.T) {
	kv := &flakyKV{MemoryKV: storage.NewMemoryKV()}
	s, rec := openStore(t, kv)
	kv.failing = true

	_, err := s.AddBudget(context.Background(), core.Budget{
		Name: "Food", Amount: core.Cents(20000), Period: core.Monthly, StartDate: core.NewDate(2024, 1, 1),
	})
	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, s.Budgets())
	assert.Equal(t, uint64(0), s.Version())
	assert.Equal(t, core.NotifyError, rec.last().Kind)
	assert.Equal(t, "Failed to save budgets", rec.last().Message)
}

func TestGoalContribution(t *testing.T) {
	s, rec := openStore(t, storage.NewMemoryKV())
	ctx := context.Background()
	g, err := s.AddGoal(ctx, core.Goal{
		Name: "Car", TargetAmount: core.Cents(100000), CurrentAmount: core.Cents(90000),
		StartDate: core.NewDate(2024, 1, 1), Priority: core.PriorityHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, "Goal added", rec.last().Message)

	g, err = s.ContributeToGoal(ctx, g.ID, core.Cents(50000))
	require.NoError(t, err)
	assert.Equal(t, int64(100000), g.CurrentAmount.Cents)
	assert.Equal(t, "Goal updated", rec.last().Message)

	_, err = s.ContributeToGoal(ctx, g.ID, core.Cents(0))
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	_, err = s.ContributeToGoal(ctx, "nope", core.Cents(1))
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteGoal(ctx, g.ID))
	assert.Equal(t, "Goal deleted", rec.last().Message)
}

func TestBudgetAndCategoryMessages(t *testing.T) {
	s, rec := openStore(t, storage.NewMemoryKV())
	ctx := context.Background()

	c, err := s.AddCategory(ctx, core.Category{Name: "Pets", Color: "#000000"})
	require.NoError(t, err)
	assert.Equal(t, "Category added", rec.last().Message)
	c.Color = "#ffffff"
	require.NoError(t, s.UpdateCategory(ctx, c))
	assert.Equal(t, "Category updated", rec.last().Message)

	b, err := s.AddBudget(ctx, core.Budget{Name: "Pets", Amount: core.Cents(100), Period: core.Yearly, CategoryID: c.ID, StartDate: core.NewDate(2024, 1, 1)})
	require.NoError(t, err)
	assert.Equal(t, "Budget added", rec.last().Message)
	b.Amount = core.Cents(200)
	require.NoError(t, s.UpdateBudget(ctx, b))
	assert.Equal(t, "Budget updated", rec.last().Message)
	require.NoError(t, s.DeleteBudget(ctx, b.ID))
	assert.Equal(t, "Budget deleted", rec.last().Message)
}

func TestUpdateUserMergesPatch(t *testing.T) {
	kv := storage.NewMemoryKV()
	s, rec := openStore(t, kv)
	name := "Ada"
	u, err := s.UpdateUser(context.Background(), UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, "USD", u.Currency)
	assert.Equal(t, "Settings updated", rec.last().Message)

	bad := core.Preferences{ThemeMode: "sepia", ColorScheme: core.SchemeBlue}
	_, err = s.UpdateUser(context.Background(), UserPatch{Preferences: &bad})
	assert.ErrorIs(t, err, core.ErrInvalidTheme)

	reopened, _ := openStore(t, kv)
	assert.Equal(t, "Ada", reopened.User().Name)
}

func TestExportCSV(t *testing.T) {
	s, rec := openStore(t, storage.NewMemoryKV())
	_, err := s.AddTransaction(context.Background(), sampleTx())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.ExportCSV(context.Background(), &buf, false))
	assert.Contains(t, buf.String(), `,40,"Groceries","Food","2024-01-15","expense"`)
	assert.Equal(t, "Transactions exported to CSV", rec.last().Message)
}

func TestSnapshotIsIsolated(t *testing.T) {
	s, _ := openStore(t, storage.NewMemoryKV())
	snap := s.Snapshot()
	snap.Categories[0].Name = "Changed"
	assert.NotEqual(t, "Changed", s.Categories()[0].Name)
}

// slowKV widens the window between reading a goal and persisting it.
type slowKV struct {
	*storage.MemoryKV
}

func (s slowKV) Set(ctx context.Context, key string, value []byte) error {
	time.Sleep(time.Millisecond)
	return s.MemoryKV.Set(ctx, key, value)
}

func TestConcurrentContributionsAreNotLost(t *testing.T) {
	s, _ := openStore(t, slowKV{storage.NewMemoryKV()})
	ctx := context.Background()
	g, err := s.AddGoal(ctx, core.Goal{
		Name: "House", TargetAmount: core.Cents(1000000),
		StartDate: core.NewDate(2024, 1, 1), Priority: core.PriorityMedium,
	})
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ContributeToGoal(ctx, g.ID, core.Cents(100))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	goals := s.Goals()
	require.Len(t, goals, 1)
	assert.Equal(t, int64(workers*100), goals[0].CurrentAmount.Cents)
}

func TestConcurrentContributionsStopAtTarget(t *testing.T) {
	s, _ := openStore(t, storage.NewMemoryKV())
	ctx := context.Background()
	g, err := s.AddGoal(ctx, core.Goal{
		Name: "Bike", TargetAmount: core.Cents(1000),
		StartDate: core.NewDate(2024, 1, 1), Priority: core.PriorityLow,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.ContributeToGoal(ctx, g.ID, core.Cents(100))
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1000), s.Goals()[0].CurrentAmount.Cents)
}

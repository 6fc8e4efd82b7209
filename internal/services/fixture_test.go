package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"moneta/internal/core"
	"moneta/internal/storage"
	"moneta/internal/storage/memory"
	"moneta/internal/timezone"
)

type fixture struct {
	store    *memory.Store
	clock    *timezone.FixedClock
	tz       *timezone.Normalizer
	agg      *LedgerAggregator
	ledger   *LedgerService
	budgets  *BudgetTracker
	reporter *BalanceReporter
	user     *core.User
	category *core.Category
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	clock := timezone.NewFixedClock(now)
	tz, err := timezone.New(timezone.DefaultZone, clock)
	if err != nil {
		t.Fatalf("timezone.New: %v", err)
	}
	store := memory.New()
	agg := NewLedgerAggregator(store)
	f := &fixture{
		store:    store,
		clock:    clock,
		tz:       tz,
		agg:      agg,
		ledger:   NewLedgerService(store, tz, 10),
		budgets:  NewBudgetTracker(store, agg, tz, 10),
		reporter: NewBalanceReporter(agg, tz),
	}

	ctx := context.Background()
	f.user = &core.User{Username: "alice", PasswordHash: "x", CreatedAt: now}
	if err := store.CreateUser(ctx, f.user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	f.category = &core.Category{Name: "Food", UserID: f.user.ID}
	if err := store.CreateCategory(ctx, f.category); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return f
}

// civil builds an instant in the civil zone.
func (f *fixture) civil(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, f.tz.Location())
}

func (f *fixture) record(t *testing.T, kind core.EntryKind, amount string, at time.Time) *core.LedgerEntry {
	t.Helper()
	e, err := f.ledger.Create(context.Background(), CreateEntryInput{
		Kind:       kind,
		UserID:     f.user.ID,
		CategoryID: f.category.ID,
		Amount:     dec(amount),
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("record %s %s: %v", kind, amount, err)
	}
	return e
}

// chain returns every budget of the fixture user, oldest period first.
func (f *fixture) chain(t *testing.T) []core.Budget {
	t.Helper()
	budgets, _, err := f.store.ListBudgets(context.Background(),
		storage.BudgetFilter{UserID: f.user.ID}, core.PageRequest{Page: 1, Take: 100})
	if err != nil {
		t.Fatalf("ListBudgets: %v", err)
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].StartDate.Before(budgets[j].StartDate) })
	return budgets
}

func (f *fixture) chainLength(t *testing.T) int {
	t.Helper()
	return len(f.chain(t))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", what, got, want)
	}
}

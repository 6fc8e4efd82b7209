// Package storage provides abstractions for persistent data storage.
//
// The record store is the only place state lives; services hold no mutable
// state of their own. Every lookup by id returns an error matching
// core.ErrNotFound when the record is absent.
package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"moneta/internal/core"
)

// Ports consumed by the services.
type (
	UserStore interface {
		CreateUser(ctx context.Context, u *core.User) error
		GetUser(ctx context.Context, id string) (*core.User, error)
		GetUserByUsername(ctx context.Context, username string) (*core.User, error)
	}

	CategoryStore interface {
		CreateCategory(ctx context.Context, c *core.Category) error
		GetCategory(ctx context.Context, id string) (*core.Category, error)
		UpdateCategory(ctx context.Context, c *core.Category) error
		ListCategories(ctx context.Context, userID string) ([]core.Category, error)
		// CategoryInUse reports whether any entry or budget references the category.
		CategoryInUse(ctx context.Context, id string) (bool, error)
		DeleteCategory(ctx context.Context, id string) error
	}

	EntryStore interface {
		CreateEntry(ctx context.Context, e *core.LedgerEntry) error
		GetEntry(ctx context.Context, kind core.EntryKind, id string) (*core.LedgerEntry, error)
		UpdateEntry(ctx context.Context, e *core.LedgerEntry) error
		// DeleteEntry is a no-op when the entry does not exist.
		DeleteEntry(ctx context.Context, kind core.EntryKind, id string) error
		// ListEntries returns one page ordered by OccurredAt descending plus the total count.
		ListEntries(ctx context.Context, f EntryFilter, page core.PageRequest) ([]core.LedgerEntry, int, error)
		// SumEntries returns zero, never an error, when nothing matches.
		SumEntries(ctx context.Context, f EntryFilter) (decimal.Decimal, error)
	}

	BudgetStore interface {
		CreateBudget(ctx context.Context, b *core.Budget) error
		GetBudget(ctx context.Context, id string) (*core.Budget, error)
		UpdateBudget(ctx context.Context, b *core.Budget) error
		// DeleteBudget is a no-op when the budget does not exist.
		DeleteBudget(ctx context.Context, id string) error
		// ListBudgets returns one page ordered by CreatedAt descending plus the total count.
		ListBudgets(ctx context.Context, f BudgetFilter, page core.PageRequest) ([]core.Budget, int, error)
		// ListRecurringBudgets returns the recurring budgets that have not been rolled over yet.
		ListRecurringBudgets(ctx context.Context) ([]core.Budget, error)
		// RolloverBudget marks the predecessor rolled over, deactivates it and inserts
		// successor atomically. It returns core.ErrAlreadyRolledOver when the predecessor
		// was rolled over before, even if that successor has since been deleted.
		RolloverBudget(ctx context.Context, predecessorID string, successor *core.Budget) error
	}

	Store interface {
		UserStore
		CategoryStore
		EntryStore
		BudgetStore
		Close() error
	}
)

// EntryFilter selects ledger entries. Zero-valued fields do not filter.
type EntryFilter struct {
	// Kinds restricts the entry kinds; empty means both.
	Kinds      []core.EntryKind
	UserID     string
	CategoryID string
	// Interval bounds are inclusive on both ends.
	Interval *core.Interval
	// OldestFirst orders a listing by OccurredAt ascending instead of newest first.
	OldestFirst bool
}

// BudgetFilter selects budgets. ActiveAt keeps budgets whose [StartDate, EndDate] contains it.
type BudgetFilter struct {
	UserID   string
	ActiveAt *time.Time
}

// Matches applies the filter in memory. Stores that cannot push the predicate
// down to their query language use it directly.
func (f EntryFilter) Matches(e core.LedgerEntry) bool {
	if len(f.Kinds) > 0 {
		found := false
		for _, k := range f.Kinds {
			if e.Kind == k {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.CategoryID != "" && e.CategoryID != f.CategoryID {
		return false
	}
	if f.Interval != nil && !f.Interval.Contains(e.OccurredAt) {
		return false
	}
	return true
}

// OrderBy is the SQL ordering of a listing, ties broken by creation then id.
func (f EntryFilter) OrderBy() string {
	if f.OldestFirst {
		return " ORDER BY occurred_at ASC, created_at ASC, id"
	}
	return " ORDER BY occurred_at DESC, created_at DESC, id"
}

// Less reports whether a sorts before b in a listing.
func (f EntryFilter) Less(a, b core.LedgerEntry) bool {
	if !a.OccurredAt.Equal(b.OccurredAt) {
		return a.OccurredAt.After(b.OccurredAt) != f.OldestFirst
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt) != f.OldestFirst
	}
	return a.ID < b.ID
}

func (f BudgetFilter) Matches(b core.Budget) bool {
	if f.UserID != "" && b.UserID != f.UserID {
		return false
	}
	if f.ActiveAt != nil {
		iv := core.Interval{From: b.StartDate, To: b.EndDate}
		if !iv.Contains(*f.ActiveAt) {
			return false
		}
	}
	return true
}

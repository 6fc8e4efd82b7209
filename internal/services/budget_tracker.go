package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"moneta/internal/core"
	mlog "moneta/internal/log"
	"moneta/internal/storage"
	"moneta/internal/timezone"
)

// BudgetStores is what the tracker needs from the record store.
type BudgetStores interface {
	storage.UserStore
	storage.CategoryStore
	storage.BudgetStore
}

// CreateBudgetInput carries the caller-owned fields of a new budget.
type CreateBudgetInput struct {
	UserID      string          `json:"-"`
	CategoryID  string          `json:"categoryId"`
	Amount      decimal.Decimal `json:"amount"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"`
	IsRecurring bool            `json:"isRecurring"`
}

// BudgetTracker creates, lists, patches and removes budgets. CurrentSpending is a
// snapshot taken at creation and only recomputed by RefreshSpending.
type BudgetTracker struct {
	store           BudgetStores
	agg             *LedgerAggregator
	tz              *timezone.Normalizer
	defaultPageSize int
}

func NewBudgetTracker(store BudgetStores, agg *LedgerAggregator, tz *timezone.Normalizer, defaultPageSize int) *BudgetTracker {
	return &BudgetTracker{store: store, agg: agg, tz: tz, defaultPageSize: defaultPageSize}
}

func (t *BudgetTracker) Create(ctx context.Context, in CreateBudgetInput) (*core.Budget, error) {
	now := t.tz.Now()
	b := core.Budget{
		Amount:      in.Amount.Round(core.MinorUnitExponent),
		StartDate:   t.tz.ToZoned(in.StartDate),
		EndDate:     t.tz.ToZoned(in.EndDate),
		IsRecurring: in.IsRecurring,
		IsActive:    true,
		CategoryID:  in.CategoryID,
		UserID:      in.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := b.Validate(); err != nil {
		return nil, core.Invalid(err)
	}
	if _, err := t.store.GetCategory(ctx, b.CategoryID); err != nil {
		return nil, err
	}
	if _, err := t.store.GetUser(ctx, b.UserID); err != nil {
		return nil, err
	}

	spending, err := t.agg.Sum(ctx, core.Expense, b.UserID, b.CategoryID, &core.Interval{From: b.StartDate, To: b.EndDate})
	if err != nil {
		return nil, fmt.Errorf("snapshot spending: %w", err)
	}
	b.CurrentSpending = spending

	if err := t.store.CreateBudget(ctx, &b); err != nil {
		return nil, fmt.Errorf("save budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget created",
		mlog.FieldBudgetID, b.ID,
		mlog.FieldUserID, b.UserID,
		mlog.FieldCategoryID, b.CategoryID,
		mlog.FieldAmount, b.Amount.String(),
		"current_spending", b.CurrentSpending.String(),
		"is_recurring", b.IsRecurring)

	return t.zoned(&b), nil
}

func (t *BudgetTracker) Get(ctx context.Context, id string) (*core.Budget, error) {
	b, err := t.store.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}
	return t.zoned(b), nil
}

// FindActiveForDate pages through the budgets whose interval contains date
// (now when nil), newest created first.
func (t *BudgetTracker) FindActiveForDate(ctx context.Context, userID string, date *time.Time, page core.PageRequest) (core.Page[core.Budget], error) {
	at := t.tz.Now()
	if date != nil {
		at = t.tz.ToZoned(*date)
	}
	page = page.Normalize(t.defaultPageSize)

	budgets, total, err := t.store.ListBudgets(ctx, storage.BudgetFilter{UserID: userID, ActiveAt: &at}, page)
	if err != nil {
		return core.Page[core.Budget]{}, fmt.Errorf("list budgets: %w", err)
	}
	for i := range budgets {
		budgets[i] = *t.zoned(&budgets[i])
	}
	return core.NewPage(budgets, page, total), nil
}

// Update applies the patch verbatim. CurrentSpending is left as it was.
func (t *BudgetTracker) Update(ctx context.Context, id string, patch core.BudgetPatch) (*core.Budget, error) {
	cur, err := t.store.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.CategoryID != nil && *patch.CategoryID != cur.CategoryID {
		if _, err := t.store.GetCategory(ctx, *patch.CategoryID); err != nil {
			return nil, err
		}
	}

	next := cur.Apply(patch)
	next.Amount = next.Amount.Round(core.MinorUnitExponent)
	next.StartDate = t.tz.ToZoned(next.StartDate)
	next.EndDate = t.tz.ToZoned(next.EndDate)
	next.UpdatedAt = t.tz.Now()
	if err := next.Validate(); err != nil {
		return nil, core.Invalid(err)
	}

	if err := t.store.UpdateBudget(ctx, &next); err != nil {
		return nil, fmt.Errorf("update budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget updated", mlog.FieldBudgetID, id)
	return t.zoned(&next), nil
}

// Remove deletes the budget; a missing id is not an error.
func (t *BudgetTracker) Remove(ctx context.Context, id string) error {
	if err := t.store.DeleteBudget(ctx, id); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	slog.InfoContext(ctx, "Budget removed", mlog.FieldBudgetID, id)
	return nil
}

// RefreshSpending recomputes the snapshot over the budget's own interval.
func (t *BudgetTracker) RefreshSpending(ctx context.Context, id string) (*core.Budget, error) {
	b, err := t.store.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}

	spending, err := t.agg.Sum(ctx, core.Expense, b.UserID, b.CategoryID, &core.Interval{From: b.StartDate, To: b.EndDate})
	if err != nil {
		return nil, fmt.Errorf("recompute spending: %w", err)
	}
	previous := b.CurrentSpending
	b.CurrentSpending = spending
	b.UpdatedAt = t.tz.Now()

	if err := t.store.UpdateBudget(ctx, b); err != nil {
		return nil, fmt.Errorf("update budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget spending refreshed",
		mlog.FieldBudgetID, id,
		"previous", previous.String(),
		"current", spending.String())
	return t.zoned(b), nil
}

func (t *BudgetTracker) zoned(b *core.Budget) *core.Budget {
	b.StartDate = t.tz.ToZoned(b.StartDate)
	b.EndDate = t.tz.ToZoned(b.EndDate)
	b.CreatedAt = t.tz.ToZoned(b.CreatedAt)
	b.UpdatedAt = t.tz.ToZoned(b.UpdatedAt)
	return b
}

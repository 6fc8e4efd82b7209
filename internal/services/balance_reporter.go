package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"moneta/internal/core"
	"moneta/internal/timezone"
)

// BalanceReporter derives balance and month-over-month figures. It only reads.
type BalanceReporter struct {
	agg *LedgerAggregator
	tz  *timezone.Normalizer
}

func NewBalanceReporter(agg *LedgerAggregator, tz *timezone.Normalizer) *BalanceReporter {
	return &BalanceReporter{agg: agg, tz: tz}
}

// GetBalance is all-time income minus all-time expense.
func (r *BalanceReporter) GetBalance(ctx context.Context, userID string) (core.Balance, error) {
	var income, expense decimal.Decimal

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		income, err = r.agg.Sum(gctx, core.Income, userID, "", nil)
		return err
	})
	g.Go(func() (err error) {
		expense, err = r.agg.Sum(gctx, core.Expense, userID, "", nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Balance{}, err
	}

	return core.Balance{Balance: income.Sub(expense)}, nil
}

// GetOverview sums both kinds over the calendar month containing date and the
// month before it. A nil date means now in the civil zone.
func (r *BalanceReporter) GetOverview(ctx context.Context, userID string, date *time.Time) (core.Overview, error) {
	at := r.tz.Now()
	if date != nil {
		at = r.tz.ToZoned(*date)
	}
	cur := r.tz.MonthWindow(at)
	prev := r.tz.PreviousMonthWindow(at)

	var ov core.Overview
	g, gctx := errgroup.WithContext(ctx)
	sum := func(dst *decimal.Decimal, kind core.EntryKind, iv core.Interval) {
		g.Go(func() (err error) {
			*dst, err = r.agg.Sum(gctx, kind, userID, "", &iv)
			return err
		})
	}
	sum(&ov.TotalExpense, core.Expense, cur)
	sum(&ov.TotalIncome, core.Income, cur)
	sum(&ov.TotalExpensePrevMonth, core.Expense, prev)
	sum(&ov.TotalIncomePrevMonth, core.Income, prev)
	if err := g.Wait(); err != nil {
		return core.Overview{}, err
	}

	ov.TotalSaving = ov.TotalIncome.Sub(ov.TotalExpense)
	ov.TotalSavingPrevMonth = ov.TotalIncomePrevMonth.Sub(ov.TotalExpensePrevMonth)
	return ov, nil
}

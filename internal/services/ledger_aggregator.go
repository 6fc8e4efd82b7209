// Package services holds the budget lifecycle and aggregation engine together
// with the CRUD orchestration the HTTP API calls into.
package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"moneta/internal/core"
	"moneta/internal/storage"
)

// LedgerAggregator sums ledger entries of either kind with one contract.
type LedgerAggregator struct {
	entries storage.EntryStore
}

func NewLedgerAggregator(entries storage.EntryStore) *LedgerAggregator {
	return &LedgerAggregator{entries: entries}
}

// Sum totals the entries of kind owned by userID. An empty categoryID spans all
// categories and a nil interval spans all time; interval bounds are inclusive.
// No match yields zero.
func (a *LedgerAggregator) Sum(ctx context.Context, kind core.EntryKind, userID, categoryID string, interval *core.Interval) (decimal.Decimal, error) {
	if !kind.Valid() {
		return decimal.Zero, core.Invalid(core.ErrInvalidKind)
	}
	sum, err := a.entries.SumEntries(ctx, storage.EntryFilter{
		Kinds:      []core.EntryKind{kind},
		UserID:     userID,
		CategoryID: categoryID,
		Interval:   interval,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum %s: %w", kind, err)
	}
	return sum, nil
}

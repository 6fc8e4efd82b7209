package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"moneta/internal/core"
)

func TestLedgerService_CreateDefaultsAndValidation(t *testing.T) {
	now := time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC)
	f := newFixture(t, now)
	ctx := context.Background()

	e, err := f.ledger.Create(ctx, CreateEntryInput{
		Kind:       core.Expense,
		UserID:     f.user.ID,
		CategoryID: f.category.ID,
		Amount:     dec("12.345"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !e.OccurredAt.Equal(now) {
		t.Errorf("OccurredAt = %v, want clock now %v", e.OccurredAt, now)
	}
	if e.OccurredAt.Location() != f.tz.Location() {
		t.Errorf("OccurredAt not in civil zone: %v", e.OccurredAt.Location())
	}
	assertAmount(t, "rounded amount", e.Amount, "12.35")

	tests := []struct {
		name    string
		in      CreateEntryInput
		wantErr error
	}{
		{
			name:    "unknown kind",
			in:      CreateEntryInput{Kind: "transfer", UserID: f.user.ID, CategoryID: f.category.ID, Amount: dec("1")},
			wantErr: core.ErrValidation,
		},
		{
			name:    "negative amount",
			in:      CreateEntryInput{Kind: core.Income, UserID: f.user.ID, CategoryID: f.category.ID, Amount: dec("-5")},
			wantErr: core.ErrValidation,
		},
		{
			name:    "unknown category",
			in:      CreateEntryInput{Kind: core.Income, UserID: f.user.ID, CategoryID: "missing", Amount: dec("5")},
			wantErr: core.ErrNotFound,
		},
		{
			name:    "unknown user",
			in:      CreateEntryInput{Kind: core.Income, UserID: "nobody", CategoryID: f.category.ID, Amount: dec("5")},
			wantErr: core.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.ledger.Create(ctx, tt.in); !errors.Is(err, tt.wantErr) {
				t.Errorf("Create err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLedgerService_Listings(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 20, 5, 0, 0, 0, time.UTC))
	ctx := context.Background()

	f.record(t, core.Expense, "10", f.civil(2024, 3, 15, 0))
	f.record(t, core.Expense, "20", f.civil(2024, 3, 15, 23))
	f.record(t, core.Expense, "30", f.civil(2024, 3, 16, 0))
	f.record(t, core.Income, "40", f.civil(2024, 3, 15, 12))
	f.record(t, core.Expense, "50", f.civil(2024, 2, 15, 12))

	date := f.civil(2024, 3, 15, 8)

	tests := []struct {
		name       string
		list       func() (core.Page[core.LedgerEntry], error)
		wantAmount []string
	}{
		{
			name: "all expenses newest first",
			list: func() (core.Page[core.LedgerEntry], error) {
				return f.ledger.List(ctx, f.user.ID, core.Expense, core.PageRequest{})
			},
			wantAmount: []string{"30", "20", "10", "50"},
		},
		{
			name: "expenses of one civil day oldest first",
			list: func() (core.Page[core.LedgerEntry], error) {
				return f.ledger.ListByDay(ctx, f.user.ID, core.Expense, &date, core.PageRequest{})
			},
			wantAmount: []string{"10", "20"},
		},
		{
			name: "expenses of one month oldest first",
			list: func() (core.Page[core.LedgerEntry], error) {
				return f.ledger.ListByMonth(ctx, f.user.ID, core.Expense, &date, core.PageRequest{})
			},
			wantAmount: []string{"10", "20", "30"},
		},
		{
			name: "recent activity merges kinds",
			list: func() (core.Page[core.LedgerEntry], error) {
				return f.ledger.RecentActivity(ctx, f.user.ID, &date, core.PageRequest{})
			},
			wantAmount: []string{"30", "20", "40", "10"},
		},
		{
			name: "month paged oldest first",
			list: func() (core.Page[core.LedgerEntry], error) {
				return f.ledger.ListByMonth(ctx, f.user.ID, core.Expense, &date, core.PageRequest{Page: 2, Take: 2})
			},
			wantAmount: []string{"30"},
		},
		{
			name: "paged",
			list: func() (core.Page[core.LedgerEntry], error) {
				return f.ledger.List(ctx, f.user.ID, core.Expense, core.PageRequest{Page: 2, Take: 3})
			},
			wantAmount: []string{"50"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := tt.list()
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(page.Data) != len(tt.wantAmount) {
				t.Fatalf("got %d entries, want %d", len(page.Data), len(tt.wantAmount))
			}
			for i, want := range tt.wantAmount {
				if !page.Data[i].Amount.Equal(dec(want)) {
					t.Errorf("entry %d amount = %s, want %s", i, page.Data[i].Amount, want)
				}
			}
		})
	}
}

func TestLedgerService_UpdateAndDelete(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 20, 5, 0, 0, 0, time.UTC))
	ctx := context.Background()

	e := f.record(t, core.Expense, "10", f.civil(2024, 3, 15, 0))

	amount := dec("99.99")
	desc := "groceries"
	got, err := f.ledger.Update(ctx, core.Expense, e.ID, core.EntryPatch{Amount: &amount, Description: &desc})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	assertAmount(t, "amount", got.Amount, "99.99")
	if got.Description != desc || !got.OccurredAt.Equal(e.OccurredAt) {
		t.Errorf("Update = %+v", got)
	}

	if _, err := f.ledger.Update(ctx, core.Income, e.ID, core.EntryPatch{}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("update with wrong kind err = %v, want not found", err)
	}

	if err := f.ledger.Delete(ctx, core.Expense, e.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := f.ledger.Delete(ctx, core.Expense, e.ID); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := f.ledger.Get(ctx, core.Expense, e.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get after Delete err = %v, want not found", err)
	}
}

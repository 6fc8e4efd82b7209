package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestBudgetValidate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	good := Budget{
		Amount:     decimal.NewFromInt(500),
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, 30),
		CategoryID: "cat",
		UserID:     "user",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	same := good
	same.EndDate = same.StartDate
	if err := same.Validate(); err != nil {
		t.Fatalf("start == end should be valid, got %v", err)
	}

	inverted := good
	inverted.EndDate = start.AddDate(0, 0, -1)
	if err := inverted.Validate(); !errors.Is(err, ErrInvertedInterval) {
		t.Fatalf("expected ErrInvertedInterval, got %v", err)
	}

	negative := good
	negative.Amount = decimal.NewFromInt(-1)
	if err := negative.Validate(); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}

	huge := good
	huge.Amount = decimal.RequireFromString("100000000000000000")
	if err := huge.Validate(); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestBudgetApplyKeepsSystemFields(t *testing.T) {
	b := Budget{
		ID:              "b1",
		Amount:          decimal.NewFromInt(100),
		CurrentSpending: decimal.NewFromInt(42),
		UserID:          "u1",
		CategoryID:      "c1",
		PredecessorID:   "b0",
		IsActive:        true,
	}
	amount := decimal.NewFromInt(250)
	inactive := false
	got := b.Apply(BudgetPatch{Amount: &amount, IsActive: &inactive})

	if !got.Amount.Equal(amount) {
		t.Errorf("amount = %s, want %s", got.Amount, amount)
	}
	if got.IsActive {
		t.Error("expected budget to be deactivated")
	}
	if got.ID != "b1" || got.UserID != "u1" || got.PredecessorID != "b0" {
		t.Errorf("system fields changed: %+v", got)
	}
	if !got.CurrentSpending.Equal(decimal.NewFromInt(42)) {
		t.Errorf("current spending changed to %s", got.CurrentSpending)
	}
	if !b.IsActive {
		t.Error("Apply must not mutate the receiver")
	}
}

func TestLedgerEntryValidate(t *testing.T) {
	good := LedgerEntry{
		Kind:       Expense,
		Amount:     decimal.NewFromInt(10),
		OccurredAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		CategoryID: "c",
		UserID:     "u",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := good
	zero.Amount = decimal.Zero
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be accepted, got %v", err)
	}

	limit := good
	limit.Amount = MaxAmount
	if err := limit.Validate(); err != nil {
		t.Fatalf("MaxAmount should be accepted, got %v", err)
	}
	limit.Amount = MaxAmount.Add(decimal.New(1, -2))
	if err := limit.Validate(); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}

	bads := []LedgerEntry{
		{Kind: "transfer", Amount: decimal.NewFromInt(1), OccurredAt: good.OccurredAt, CategoryID: "c", UserID: "u"},
		{Kind: Income, Amount: decimal.NewFromInt(-1), OccurredAt: good.OccurredAt, CategoryID: "c", UserID: "u"},
		{Kind: Income, Amount: decimal.NewFromInt(1), CategoryID: "c", UserID: "u"},
		{Kind: Income, Amount: decimal.NewFromInt(1), OccurredAt: good.OccurredAt, UserID: "u"},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseEntryKind(t *testing.T) {
	cases := map[string]EntryKind{"expense": Expense, "Expenses": Expense, "income": Income, " incomes ": Income}
	for in, want := range cases {
		got, err := ParseEntryKind(in)
		if err != nil || got != want {
			t.Errorf("ParseEntryKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseEntryKind("transfer"); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("expected ErrInvalidKind, got %v", err)
	}
}

func TestIntervalContainsIsInclusive(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	iv := Interval{From: from, To: to}

	if !iv.Contains(from) || !iv.Contains(to) {
		t.Error("bounds must be included")
	}
	if iv.Contains(from.Add(-time.Millisecond)) || iv.Contains(to.Add(time.Millisecond)) {
		t.Error("instants outside the bounds must be excluded")
	}
}

func TestNotFoundError(t *testing.T) {
	err := NotFound("budget", "b1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("NotFoundError should match ErrNotFound")
	}
	if err.Error() != `budget "b1" not found` {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(Invalid(ErrNegativeAmount), ErrValidation) || !errors.Is(Invalid(ErrNegativeAmount), ErrNegativeAmount) {
		t.Error("Invalid should wrap both the taxonomy and the cause")
	}
}

package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"moneta/internal/core"
)

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@localhost:5432/moneta", "pgx5://u:p@localhost:5432/moneta"},
		{"postgresql://localhost/moneta?sslmode=disable", "pgx5://localhost/moneta?sslmode=disable"},
		{"pgx5://localhost/moneta", "pgx5://localhost/moneta"},
	}
	for _, tt := range tests {
		if got := migrateURL(tt.in); got != tt.want {
			t.Errorf("migrateURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestArgsPlaceholders(t *testing.T) {
	var a args
	if got := a.add("x"); got != "$1" {
		t.Errorf("first placeholder = %s", got)
	}
	if got := a.add(2); got != "$2" {
		t.Errorf("second placeholder = %s", got)
	}
	if len(a) != 2 {
		t.Errorf("len = %d", len(a))
	}
}

// TestPostgresRollover runs against a live database when MONETA_TEST_DATABASE_URL is set.
func TestPostgresRollover(t *testing.T) {
	url := os.Getenv("MONETA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("MONETA_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	store, err := New(ctx, url)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer store.Close()

	now := time.Now().UTC().Truncate(time.Millisecond)
	user := &core.User{Username: "pg-" + now.Format("150405.000"), PasswordHash: "x", CreatedAt: now}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	cat := &core.Category{Name: "Food", UserID: user.ID}
	if err := store.CreateCategory(ctx, cat); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	pred := &core.Budget{
		Amount: decimal.NewFromInt(100), StartDate: now, EndDate: now.Add(72 * time.Hour),
		IsRecurring: true, IsActive: true, CategoryID: cat.ID, UserID: user.ID,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := store.CreateBudget(ctx, pred); err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}

	next := func() *core.Budget {
		return &core.Budget{
			Amount: pred.Amount, StartDate: now.Add(96 * time.Hour), EndDate: now.Add(168 * time.Hour),
			IsRecurring: true, IsActive: true, CategoryID: cat.ID, UserID: user.ID,
			CreatedAt: now, UpdatedAt: now,
		}
	}
	first := next()
	if err := store.RolloverBudget(ctx, pred.ID, first); err != nil {
		t.Fatalf("RolloverBudget: %v", err)
	}
	if err := store.RolloverBudget(ctx, pred.ID, next()); !errors.Is(err, core.ErrAlreadyRolledOver) {
		t.Errorf("second rollover err = %v, want ErrAlreadyRolledOver", err)
	}

	if err := store.DeleteBudget(ctx, first.ID); err != nil {
		t.Fatalf("DeleteBudget: %v", err)
	}
	if err := store.RolloverBudget(ctx, pred.ID, next()); !errors.Is(err, core.ErrAlreadyRolledOver) {
		t.Errorf("rollover after successor delete err = %v, want ErrAlreadyRolledOver", err)
	}
	got, err := store.GetBudget(ctx, pred.ID)
	if err != nil {
		t.Fatalf("GetBudget: %v", err)
	}
	if got.RolledOverAt == nil || got.IsActive {
		t.Errorf("predecessor = %+v, want inactive and marked rolled over", got)
	}
	pending, err := store.ListRecurringBudgets(ctx)
	if err != nil {
		t.Fatalf("ListRecurringBudgets: %v", err)
	}
	for _, b := range pending {
		if b.ID == pred.ID {
			t.Error("rolled over budget still pending")
		}
	}
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"moneta/internal/core"
	"moneta/internal/storage"
)

const budgetColumns = "id, amount_cents, start_date, end_date, is_recurring, is_active, " +
	"current_spending_cents, category_id, user_id, predecessor_id, rolled_over_at, created_at, updated_at"

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *Store) CreateBudget(ctx context.Context, b *core.Budget) error {
	return insertBudget(ctx, s.pool, b)
}

func insertBudget(ctx context.Context, q querier, b *core.Budget) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	var predecessor *string
	if b.PredecessorID != "" {
		predecessor = &b.PredecessorID
	}
	var id string
	err := q.QueryRow(ctx,
		"INSERT INTO budgets ("+budgetColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id",
		b.ID, core.ToMinorUnits(b.Amount), b.StartDate, b.EndDate, b.IsRecurring, b.IsActive,
		core.ToMinorUnits(b.CurrentSpending), b.CategoryID, b.UserID, predecessor, b.RolledOverAt, b.CreatedAt, b.UpdatedAt,
	).Scan(&id)
	if err != nil {
		if b.PredecessorID != "" && isUniqueViolation(err) {
			return fmt.Errorf("budget %s: %w", b.PredecessorID, core.ErrAlreadyRolledOver)
		}
		return fmt.Errorf("create budget: %w", err)
	}
	return nil
}

func (s *Store) GetBudget(ctx context.Context, id string) (*core.Budget, error) {
	b, err := scanBudget(s.pool.QueryRow(ctx, "SELECT "+budgetColumns+" FROM budgets WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.NotFound("budget", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (s *Store) UpdateBudget(ctx context.Context, b *core.Budget) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE budgets
		SET amount_cents = $1, start_date = $2, end_date = $3, is_recurring = $4, is_active = $5,
		    current_spending_cents = $6, category_id = $7, updated_at = $8
		WHERE id = $9`,
		core.ToMinorUnits(b.Amount), b.StartDate, b.EndDate, b.IsRecurring, b.IsActive,
		core.ToMinorUnits(b.CurrentSpending), b.CategoryID, b.UpdatedAt, b.ID,
	)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.NotFound("budget", b.ID)
	}
	return nil
}

func (s *Store) DeleteBudget(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM budgets WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

func (s *Store) ListBudgets(ctx context.Context, f storage.BudgetFilter, page core.PageRequest) ([]core.Budget, int, error) {
	var (
		a       args
		clauses []string
	)
	if f.UserID != "" {
		clauses = append(clauses, "user_id = "+a.add(f.UserID))
	}
	if f.ActiveAt != nil {
		at := a.add(*f.ActiveAt)
		clauses = append(clauses, "start_date <= "+at+" AND end_date >= "+at)
	}
	cond := where(clauses)

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM budgets"+cond, a...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count budgets: %w", err)
	}

	query := "SELECT " + budgetColumns + " FROM budgets" + cond +
		" ORDER BY created_at DESC, id LIMIT " + a.add(page.Take) + " OFFSET " + a.add(page.Skip())
	out, err := s.queryBudgets(ctx, query, a...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) ListRecurringBudgets(ctx context.Context) ([]core.Budget, error) {
	return s.queryBudgets(ctx,
		"SELECT "+budgetColumns+" FROM budgets WHERE is_recurring AND rolled_over_at IS NULL ORDER BY end_date, id")
}

func (s *Store) RolloverBudget(ctx context.Context, predecessorID string, successor *core.Budget) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// The conditional update locks the row, so concurrent sweeps serialize on it.
	tag, err := tx.Exec(ctx,
		"UPDATE budgets SET is_active = FALSE, rolled_over_at = $1, updated_at = $1 WHERE id = $2 AND rolled_over_at IS NULL",
		successor.CreatedAt, predecessorID,
	)
	if err != nil {
		return fmt.Errorf("mark budget rolled over: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM budgets WHERE id = $1)", predecessorID).Scan(&exists); err != nil {
			return fmt.Errorf("check budget: %w", err)
		}
		if !exists {
			return core.NotFound("budget", predecessorID)
		}
		return fmt.Errorf("budget %s: %w", predecessorID, core.ErrAlreadyRolledOver)
	}

	successor.PredecessorID = predecessorID
	if err := insertBudget(ctx, tx, successor); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit rollover: %w", err)
	}
	return nil
}

func (s *Store) queryBudgets(ctx context.Context, query string, a ...any) ([]core.Budget, error) {
	rows, err := s.pool.Query(ctx, query, a...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}

func scanBudget(row pgx.Row) (*core.Budget, error) {
	var (
		b                core.Budget
		amount, spending int64
		predecessor      *string
	)
	if err := row.Scan(&b.ID, &amount, &b.StartDate, &b.EndDate, &b.IsRecurring, &b.IsActive, &spending,
		&b.CategoryID, &b.UserID, &predecessor, &b.RolledOverAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Amount = core.FromMinorUnits(amount)
	b.CurrentSpending = core.FromMinorUnits(spending)
	if predecessor != nil {
		b.PredecessorID = *predecessor
	}
	return &b, nil
}

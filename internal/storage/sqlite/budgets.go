package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"moneta/internal/core"
	"moneta/internal/storage"
)

const budgetColumns = "id, amount_cents, start_date, end_date, is_recurring, is_active, " +
	"current_spending_cents, category_id, user_id, predecessor_id, rolled_over_at, created_at, updated_at"

func (s *Store) CreateBudget(ctx context.Context, b *core.Budget) error {
	return insertBudget(ctx, s.db, b)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertBudget(ctx context.Context, db execer, b *core.Budget) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	var (
		predecessor sql.NullString
		rolledOver  sql.NullInt64
	)
	if b.PredecessorID != "" {
		predecessor = sql.NullString{String: b.PredecessorID, Valid: true}
	}
	if b.RolledOverAt != nil {
		rolledOver = sql.NullInt64{Int64: toMillis(*b.RolledOverAt), Valid: true}
	}
	_, err := db.ExecContext(ctx,
		"INSERT INTO budgets ("+budgetColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		b.ID, core.ToMinorUnits(b.Amount), toMillis(b.StartDate), toMillis(b.EndDate),
		boolToInt(b.IsRecurring), boolToInt(b.IsActive), core.ToMinorUnits(b.CurrentSpending),
		b.CategoryID, b.UserID, predecessor, rolledOver, toMillis(b.CreatedAt), toMillis(b.UpdatedAt),
	)
	if err != nil {
		if b.PredecessorID != "" && isUniqueViolation(err) {
			return fmt.Errorf("budget %s: %w", b.PredecessorID, core.ErrAlreadyRolledOver)
		}
		return fmt.Errorf("create budget: %w", err)
	}
	return nil
}

func (s *Store) GetBudget(ctx context.Context, id string) (*core.Budget, error) {
	b, err := scanBudget(s.db.QueryRowContext(ctx,
		"SELECT "+budgetColumns+" FROM budgets WHERE id = ?", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NotFound("budget", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (s *Store) UpdateBudget(ctx context.Context, b *core.Budget) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE budgets
		SET amount_cents = ?, start_date = ?, end_date = ?, is_recurring = ?, is_active = ?,
		    current_spending_cents = ?, category_id = ?, updated_at = ?
		WHERE id = ?`,
		core.ToMinorUnits(b.Amount), toMillis(b.StartDate), toMillis(b.EndDate),
		boolToInt(b.IsRecurring), boolToInt(b.IsActive), core.ToMinorUnits(b.CurrentSpending),
		b.CategoryID, toMillis(b.UpdatedAt), b.ID,
	)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return requireAffected(res, "budget", b.ID)
}

func (s *Store) DeleteBudget(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

func (s *Store) ListBudgets(ctx context.Context, f storage.BudgetFilter, page core.PageRequest) ([]core.Budget, int, error) {
	var (
		clauses []string
		args    []any
	)
	if f.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.ActiveAt != nil {
		clauses = append(clauses, "start_date <= ? AND end_date >= ?")
		at := toMillis(*f.ActiveAt)
		args = append(args, at, at)
	}
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM budgets"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count budgets: %w", err)
	}

	out, err := s.queryBudgets(ctx,
		"SELECT "+budgetColumns+" FROM budgets"+where+" ORDER BY created_at DESC, id LIMIT ? OFFSET ?",
		append(args, page.Take, page.Skip())...,
	)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) ListRecurringBudgets(ctx context.Context) ([]core.Budget, error) {
	return s.queryBudgets(ctx,
		"SELECT "+budgetColumns+" FROM budgets WHERE is_recurring = 1 AND rolled_over_at IS NULL ORDER BY end_date, id",
	)
}

func (s *Store) RolloverBudget(ctx context.Context, predecessorID string, successor *core.Budget) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	at := toMillis(successor.CreatedAt)
	res, err := tx.ExecContext(ctx,
		"UPDATE budgets SET is_active = 0, rolled_over_at = ?, updated_at = ? WHERE id = ? AND rolled_over_at IS NULL",
		at, at, predecessorID,
	)
	if err != nil {
		return fmt.Errorf("mark budget rolled over: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark budget rolled over: %w", err)
	}
	if n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM budgets WHERE id = ?)", predecessorID,
		).Scan(&exists); err != nil {
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

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rollover: %w", err)
	}
	return nil
}

func (s *Store) queryBudgets(ctx context.Context, query string, args ...any) ([]core.Budget, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
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

func scanBudget(r scanner) (*core.Budget, error) {
	var (
		b                    core.Budget
		amount, spending     int64
		start, end           int64
		recurring, active    int
		predecessor          sql.NullString
		rolledOver           sql.NullInt64
		createdAt, updatedAt int64
	)
	if err := r.Scan(&b.ID, &amount, &start, &end, &recurring, &active, &spending,
		&b.CategoryID, &b.UserID, &predecessor, &rolledOver, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	b.Amount = core.FromMinorUnits(amount)
	b.CurrentSpending = core.FromMinorUnits(spending)
	b.StartDate = fromMillis(start)
	b.EndDate = fromMillis(end)
	b.IsRecurring = recurring != 0
	b.IsActive = active != 0
	b.PredecessorID = predecessor.String
	if rolledOver.Valid {
		at := fromMillis(rolledOver.Int64)
		b.RolledOverAt = &at
	}
	b.CreatedAt = fromMillis(createdAt)
	b.UpdatedAt = fromMillis(updatedAt)
	return &b, nil
}

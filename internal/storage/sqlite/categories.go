package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"moneta/internal/core"
)

func (s *Store) CreateCategory(ctx context.Context, c *core.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, color, icon, user_id) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.Name, c.Color, c.Icon, c.UserID,
	)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*core.Category, error) {
	var c core.Category
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, color, icon, user_id FROM categories WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &c.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NotFound("category", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *core.Category) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, color = ?, icon = ? WHERE id = ?",
		c.Name, c.Color, c.Icon, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireAffected(res, "category", c.ID)
}

func (s *Store) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, color, icon, user_id FROM categories WHERE user_id = ? ORDER BY name",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &c.UserID); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (s *Store) CategoryInUse(ctx context.Context, id string) (bool, error) {
	var inUse bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE category_id = ?)
		    OR EXISTS (SELECT 1 FROM budgets WHERE category_id = ?)`,
		id, id,
	).Scan(&inUse)
	if err != nil {
		return false, fmt.Errorf("check category references: %w", err)
	}
	return inUse, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func requireAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.NotFound(resource, id)
	}
	return nil
}

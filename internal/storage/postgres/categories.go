package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"moneta/internal/core"
)

func (s *Store) CreateCategory(ctx context.Context, c *core.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		"INSERT INTO categories (id, name, color, icon, user_id) VALUES ($1, $2, $3, $4, $5)",
		c.ID, c.Name, c.Color, c.Icon, c.UserID,
	)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*core.Category, error) {
	var c core.Category
	err := s.pool.QueryRow(ctx,
		"SELECT id, name, color, icon, user_id FROM categories WHERE id = $1", id,
	).Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &c.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.NotFound("category", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *core.Category) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE categories SET name = $1, color = $2, icon = $3 WHERE id = $4",
		c.Name, c.Color, c.Icon, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.NotFound("category", c.ID)
	}
	return nil
}

func (s *Store) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, name, color, icon, user_id FROM categories WHERE user_id = $1 ORDER BY name",
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
	return out, rows.Err()
}

func (s *Store) CategoryInUse(ctx context.Context, id string) (bool, error) {
	var inUse bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE category_id = $1)
		    OR EXISTS (SELECT 1 FROM budgets WHERE category_id = $1)`, id,
	).Scan(&inUse)
	if err != nil {
		return false, fmt.Errorf("check category references: %w", err)
	}
	return inUse, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM categories WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

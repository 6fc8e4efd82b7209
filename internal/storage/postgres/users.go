package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"moneta/internal/core"
)

func (s *Store) CreateUser(ctx context.Context, u *core.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, refresh_token_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Username, u.PasswordHash, u.RefreshTokenHash, u.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("username %q: %w", u.Username, core.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*core.User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	return s.getUser(ctx, "username", username)
}

func (s *Store) getUser(ctx context.Context, column, value string) (*core.User, error) {
	var u core.User
	err := s.pool.QueryRow(ctx,
		"SELECT id, username, password_hash, refresh_token_hash, created_at FROM users WHERE "+column+" = $1",
		value,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.RefreshTokenHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.NotFound("user", value)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

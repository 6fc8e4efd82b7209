package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"moneta/internal/core"
)

func (s *Store) CreateUser(ctx context.Context, u *core.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, refresh_token_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, u.RefreshTokenHash, toMillis(u.CreatedAt),
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
	var (
		u         core.User
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, refresh_token_hash, created_at FROM users WHERE "+column+" = ?",
		value,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.RefreshTokenHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NotFound("user", value)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = fromMillis(createdAt)
	return &u, nil
}

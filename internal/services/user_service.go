package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"moneta/internal/core"
	mlog "moneta/internal/log"
	"moneta/internal/storage"
	"moneta/internal/timezone"
)

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
)

type UserService struct {
	store storage.UserStore
	tz    *timezone.Normalizer
	cost  int
}

func NewUserService(store storage.UserStore, tz *timezone.Normalizer) *UserService {
	return &UserService{store: store, tz: tz, cost: bcrypt.DefaultCost}
}

// Register stores a new user with a bcrypt password hash.
func (s *UserService) Register(ctx context.Context, username, password string) (*core.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, core.Invalid(ErrUsernameRequired)
	}
	if len(password) < 8 {
		return nil, core.Invalid(ErrPasswordTooShort)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &core.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.tz.Now(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "User registered", mlog.FieldUserID, u.ID, "username", u.Username)
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*core.User, error) {
	return s.store.GetUser(ctx, id)
}

// CheckPassword reports whether password matches the stored hash of username.
func (s *UserService) CheckPassword(ctx context.Context, username, password string) (*core.User, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, core.Invalid(errors.New("invalid credentials"))
	}
	return u, nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"moneta/internal/core"
	mlog "moneta/internal/log"
	"moneta/internal/storage"
)

type CategoryStores interface {
	storage.UserStore
	storage.CategoryStore
}

type CategoryService struct {
	store CategoryStores
}

func NewCategoryService(store CategoryStores) *CategoryService {
	return &CategoryService{store: store}
}

func (s *CategoryService) Create(ctx context.Context, c core.Category) (*core.Category, error) {
	if err := c.Validate(); err != nil {
		return nil, core.Invalid(err)
	}
	if _, err := s.store.GetUser(ctx, c.UserID); err != nil {
		return nil, err
	}
	if err := s.store.CreateCategory(ctx, &c); err != nil {
		return nil, fmt.Errorf("save category: %w", err)
	}
	slog.InfoContext(ctx, "Category created", mlog.FieldCategoryID, c.ID, mlog.FieldUserID, c.UserID, "name", c.Name)
	return &c, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*core.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *CategoryService) List(ctx context.Context, userID string) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if cats == nil {
		cats = []core.Category{}
	}
	return cats, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, patch core.CategoryPatch) (*core.Category, error) {
	cur, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	next := cur.Apply(patch)
	if err := next.Validate(); err != nil {
		return nil, core.Invalid(err)
	}
	if err := s.store.UpdateCategory(ctx, &next); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return &next, nil
}

// Delete refuses to remove a category that entries or budgets still reference.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	inUse, err := s.store.CategoryInUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("category %q is still referenced: %w", id, core.ErrConflict)
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	slog.InfoContext(ctx, "Category deleted", mlog.FieldCategoryID, id)
	return nil
}

// Package memory is a process-local storage.Store used for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"moneta/internal/core"
	"moneta/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type Store struct {
	mu         sync.Mutex
	users      map[string]core.User
	categories map[string]core.Category
	entries    map[string]core.LedgerEntry
	budgets    map[string]core.Budget
}

func New() *Store {
	return &Store{
		users:      map[string]core.User{},
		categories: map[string]core.Category{},
		entries:    map[string]core.LedgerEntry{},
		budgets:    map[string]core.Budget{},
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) CreateUser(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return fmt.Errorf("username %q: %w", u.Username, core.ErrConflict)
		}
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, core.NotFound("user", id)
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, core.NotFound("user", username)
}

func (s *Store) CreateCategory(_ context.Context, c *core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) GetCategory(_ context.Context, id string) (*core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, core.NotFound("category", id)
	}
	return &c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c *core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return core.NotFound("category", c.ID)
	}
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) ListCategories(_ context.Context, userID string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CategoryInUse(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.CategoryID == id {
			return true, nil
		}
	}
	for _, b := range s.budgets {
		if b.CategoryID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.categories, id)
	return nil
}

func (s *Store) CreateEntry(_ context.Context, e *core.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	s.entries[e.ID] = *e
	return nil
}

func (s *Store) GetEntry(_ context.Context, kind core.EntryKind, id string) (*core.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || e.Kind != kind {
		return nil, core.NotFound(string(kind), id)
	}
	return &e, nil
}

func (s *Store) UpdateEntry(_ context.Context, e *core.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.entries[e.ID]
	if !ok || cur.Kind != e.Kind {
		return core.NotFound(string(e.Kind), e.ID)
	}
	s.entries[e.ID] = *e
	return nil
}

func (s *Store) DeleteEntry(_ context.Context, kind core.EntryKind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok && e.Kind == kind {
		delete(s.entries, id)
	}
	return nil
}

func (s *Store) ListEntries(_ context.Context, f storage.EntryFilter, page core.PageRequest) ([]core.LedgerEntry, int, error) {
	s.mu.Lock()
	matched := s.matchEntries(f)
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return f.Less(matched[i], matched[j]) })
	return window(matched, page), len(matched), nil
}

func (s *Store) SumEntries(_ context.Context, f storage.EntryFilter) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := decimal.Zero
	for _, e := range s.matchEntries(f) {
		sum = sum.Add(e.Amount)
	}
	return sum, nil
}

func (s *Store) matchEntries(f storage.EntryFilter) []core.LedgerEntry {
	var out []core.LedgerEntry
	for _, e := range s.entries {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) CreateBudget(_ context.Context, b *core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertBudget(b)
}

func (s *Store) insertBudget(b *core.Budget) error {
	if b.PredecessorID != "" && s.hasSuccessor(b.PredecessorID) {
		return fmt.Errorf("budget %s: %w", b.PredecessorID, core.ErrAlreadyRolledOver)
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	s.budgets[b.ID] = *b
	return nil
}

func (s *Store) GetBudget(_ context.Context, id string) (*core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return nil, core.NotFound("budget", id)
	}
	return &b, nil
}

func (s *Store) UpdateBudget(_ context.Context, b *core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.budgets[b.ID]
	if !ok {
		return core.NotFound("budget", b.ID)
	}
	b.PredecessorID = cur.PredecessorID
	b.RolledOverAt = cur.RolledOverAt
	b.CreatedAt = cur.CreatedAt
	s.budgets[b.ID] = *b
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.budgets, id)
	for bid, b := range s.budgets {
		if b.PredecessorID == id {
			b.PredecessorID = ""
			s.budgets[bid] = b
		}
	}
	return nil
}

func (s *Store) ListBudgets(_ context.Context, f storage.BudgetFilter, page core.PageRequest) ([]core.Budget, int, error) {
	s.mu.Lock()
	var matched []core.Budget
	for _, b := range s.budgets {
		if f.Matches(b) {
			matched = append(matched, b)
		}
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return window(matched, page), len(matched), nil
}

func (s *Store) ListRecurringBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if b.IsRecurring && b.RolledOverAt == nil {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EndDate.Equal(out[j].EndDate) {
			return out[i].EndDate.Before(out[j].EndDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) hasSuccessor(budgetID string) bool {
	for _, b := range s.budgets {
		if b.PredecessorID == budgetID {
			return true
		}
	}
	return false
}

func (s *Store) RolloverBudget(_ context.Context, predecessorID string, successor *core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pred, ok := s.budgets[predecessorID]
	if !ok {
		return core.NotFound("budget", predecessorID)
	}
	if pred.RolledOverAt != nil {
		return fmt.Errorf("budget %s: %w", predecessorID, core.ErrAlreadyRolledOver)
	}
	successor.PredecessorID = predecessorID
	if err := s.insertBudget(successor); err != nil {
		return err
	}
	at := successor.CreatedAt
	pred.IsActive = false
	pred.RolledOverAt = &at
	pred.UpdatedAt = at
	s.budgets[predecessorID] = pred
	return nil
}

func window[T any](items []T, page core.PageRequest) []T {
	skip := page.Skip()
	if skip >= len(items) {
		return nil
	}
	end := len(items)
	if page.Take > 0 && skip+page.Take < end {
		end = skip + page.Take
	}
	return items[skip:end]
}

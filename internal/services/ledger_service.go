package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"moneta/internal/core"
	mlog "moneta/internal/log"
	"moneta/internal/storage"
	"moneta/internal/timezone"
)

// LedgerStores is what the ledger service needs from the record store.
type LedgerStores interface {
	storage.UserStore
	storage.CategoryStore
	storage.EntryStore
}

type CreateEntryInput struct {
	Kind        core.EntryKind  `json:"-"`
	UserID      string          `json:"-"`
	CategoryID  string          `json:"categoryId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	// OccurredAt defaults to now when zero.
	OccurredAt time.Time `json:"occurredAt"`
}

// LedgerService records incomes and expenses. Both kinds share every operation.
type LedgerService struct {
	store           LedgerStores
	tz              *timezone.Normalizer
	defaultPageSize int
}

func NewLedgerService(store LedgerStores, tz *timezone.Normalizer, defaultPageSize int) *LedgerService {
	return &LedgerService{store: store, tz: tz, defaultPageSize: defaultPageSize}
}

func (s *LedgerService) Create(ctx context.Context, in CreateEntryInput) (*core.LedgerEntry, error) {
	now := s.tz.Now()
	e := core.LedgerEntry{
		Kind:        in.Kind,
		Amount:      in.Amount.Round(core.MinorUnitExponent),
		Description: in.Description,
		OccurredAt:  s.tz.ToZoned(in.OccurredAt),
		CategoryID:  in.CategoryID,
		UserID:      in.UserID,
		CreatedAt:   now,
	}
	if in.OccurredAt.IsZero() {
		e.OccurredAt = now
	}
	if err := e.Validate(); err != nil {
		return nil, core.Invalid(err)
	}
	if _, err := s.store.GetCategory(ctx, e.CategoryID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetUser(ctx, e.UserID); err != nil {
		return nil, err
	}

	if err := s.store.CreateEntry(ctx, &e); err != nil {
		return nil, fmt.Errorf("save %s: %w", e.Kind, err)
	}

	slog.InfoContext(ctx, "Ledger entry created",
		"id", e.ID,
		mlog.FieldEntryKind, e.Kind,
		mlog.FieldUserID, e.UserID,
		mlog.FieldCategoryID, e.CategoryID,
		mlog.FieldAmount, e.Amount.String())
	return &e, nil
}

func (s *LedgerService) Get(ctx context.Context, kind core.EntryKind, id string) (*core.LedgerEntry, error) {
	e, err := s.store.GetEntry(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return s.zoned(e), nil
}

func (s *LedgerService) Update(ctx context.Context, kind core.EntryKind, id string, patch core.EntryPatch) (*core.LedgerEntry, error) {
	cur, err := s.store.GetEntry(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if patch.CategoryID != nil && *patch.CategoryID != cur.CategoryID {
		if _, err := s.store.GetCategory(ctx, *patch.CategoryID); err != nil {
			return nil, err
		}
	}

	next := cur.Apply(patch)
	next.Amount = next.Amount.Round(core.MinorUnitExponent)
	next.OccurredAt = s.tz.ToZoned(next.OccurredAt)
	if err := next.Validate(); err != nil {
		return nil, core.Invalid(err)
	}
	if err := s.store.UpdateEntry(ctx, &next); err != nil {
		return nil, fmt.Errorf("update %s: %w", kind, err)
	}

	slog.InfoContext(ctx, "Ledger entry updated", "id", id, mlog.FieldEntryKind, kind)
	return s.zoned(&next), nil
}

// Delete removes the entry; a missing id is not an error.
func (s *LedgerService) Delete(ctx context.Context, kind core.EntryKind, id string) error {
	if err := s.store.DeleteEntry(ctx, kind, id); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	slog.InfoContext(ctx, "Ledger entry deleted", "id", id, mlog.FieldEntryKind, kind)
	return nil
}

// List pages through every entry of kind, newest first.
func (s *LedgerService) List(ctx context.Context, userID string, kind core.EntryKind, page core.PageRequest) (core.Page[core.LedgerEntry], error) {
	return s.page(ctx, storage.EntryFilter{Kinds: []core.EntryKind{kind}, UserID: userID}, page)
}

// ListByDay returns the entries of kind within the civil day containing date,
// oldest first.
func (s *LedgerService) ListByDay(ctx context.Context, userID string, kind core.EntryKind, date *time.Time, page core.PageRequest) (core.Page[core.LedgerEntry], error) {
	day := s.tz.DayWindow(s.at(date))
	return s.page(ctx, storage.EntryFilter{Kinds: []core.EntryKind{kind}, UserID: userID, Interval: &day, OldestFirst: true}, page)
}

// ListByMonth returns the entries of kind within the calendar month containing
// date, oldest first.
func (s *LedgerService) ListByMonth(ctx context.Context, userID string, kind core.EntryKind, date *time.Time, page core.PageRequest) (core.Page[core.LedgerEntry], error) {
	month := s.tz.MonthWindow(s.at(date))
	return s.page(ctx, storage.EntryFilter{Kinds: []core.EntryKind{kind}, UserID: userID, Interval: &month, OldestFirst: true}, page)
}

// RecentActivity merges both kinds within the month containing date, newest first.
func (s *LedgerService) RecentActivity(ctx context.Context, userID string, date *time.Time, page core.PageRequest) (core.Page[core.LedgerEntry], error) {
	month := s.tz.MonthWindow(s.at(date))
	return s.page(ctx, storage.EntryFilter{UserID: userID, Interval: &month}, page)
}

func (s *LedgerService) page(ctx context.Context, f storage.EntryFilter, page core.PageRequest) (core.Page[core.LedgerEntry], error) {
	for _, k := range f.Kinds {
		if !k.Valid() {
			return core.Page[core.LedgerEntry]{}, core.Invalid(core.ErrInvalidKind)
		}
	}
	page = page.Normalize(s.defaultPageSize)
	entries, total, err := s.store.ListEntries(ctx, f, page)
	if err != nil {
		return core.Page[core.LedgerEntry]{}, fmt.Errorf("list entries: %w", err)
	}
	for i := range entries {
		entries[i] = *s.zoned(&entries[i])
	}
	return core.NewPage(entries, page, total), nil
}

func (s *LedgerService) at(date *time.Time) time.Time {
	if date == nil {
		return s.tz.Now()
	}
	return s.tz.ToZoned(*date)
}

func (s *LedgerService) zoned(e *core.LedgerEntry) *core.LedgerEntry {
	e.OccurredAt = s.tz.ToZoned(e.OccurredAt)
	e.CreatedAt = s.tz.ToZoned(e.CreatedAt)
	return e
}

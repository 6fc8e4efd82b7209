package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"moneta/internal/core"
	"moneta/internal/storage"
)

const entryColumns = "id, kind, amount_cents, description, occurred_at, category_id, user_id, created_at"

func (s *Store) CreateEntry(ctx context.Context, e *core.LedgerEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO ledger_entries ("+entryColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, string(e.Kind), core.ToMinorUnits(e.Amount), e.Description,
		toMillis(e.OccurredAt), e.CategoryID, e.UserID, toMillis(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", e.Kind, err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, kind core.EntryKind, id string) (*core.LedgerEntry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM ledger_entries WHERE id = ? AND kind = ?",
		id, string(kind),
	)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NotFound(string(kind), id)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}
	return e, nil
}

func (s *Store) UpdateEntry(ctx context.Context, e *core.LedgerEntry) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE ledger_entries
		SET amount_cents = ?, description = ?, occurred_at = ?, category_id = ?
		WHERE id = ? AND kind = ?`,
		core.ToMinorUnits(e.Amount), e.Description, toMillis(e.OccurredAt), e.CategoryID,
		e.ID, string(e.Kind),
	)
	if err != nil {
		return fmt.Errorf("update %s: %w", e.Kind, err)
	}
	return requireAffected(res, string(e.Kind), e.ID)
}

func (s *Store) DeleteEntry(ctx context.Context, kind core.EntryKind, id string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM ledger_entries WHERE id = ? AND kind = ?", id, string(kind),
	); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return nil
}

func (s *Store) ListEntries(ctx context.Context, f storage.EntryFilter, page core.PageRequest) ([]core.LedgerEntry, int, error) {
	where, args := entryWhere(f)

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ledger_entries"+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	query := "SELECT " + entryColumns + " FROM ledger_entries" + where +
		f.OrderBy() + " LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, query, append(args, page.Take, page.Skip())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []core.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate entries: %w", err)
	}
	return out, total, nil
}

func (s *Store) SumEntries(ctx context.Context, f storage.EntryFilter) (decimal.Decimal, error) {
	where, args := entryWhere(f)

	var cents int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount_cents), 0) FROM ledger_entries"+where, args...,
	).Scan(&cents); err != nil {
		return decimal.Zero, fmt.Errorf("sum entries: %w", err)
	}
	return core.FromMinorUnits(cents), nil
}

func entryWhere(f storage.EntryFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if len(f.Kinds) > 0 {
		marks := make([]string, len(f.Kinds))
		for i, k := range f.Kinds {
			marks[i] = "?"
			args = append(args, string(k))
		}
		clauses = append(clauses, "kind IN ("+strings.Join(marks, ", ")+")")
	}
	if f.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.CategoryID != "" {
		clauses = append(clauses, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Interval != nil {
		clauses = append(clauses, "occurred_at BETWEEN ? AND ?")
		args = append(args, toMillis(f.Interval.From), toMillis(f.Interval.To))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(r scanner) (*core.LedgerEntry, error) {
	var (
		e                     core.LedgerEntry
		kind                  string
		cents                 int64
		occurredAt, createdAt int64
	)
	if err := r.Scan(&e.ID, &kind, &cents, &e.Description, &occurredAt, &e.CategoryID, &e.UserID, &createdAt); err != nil {
		return nil, err
	}
	e.Kind = core.EntryKind(kind)
	e.Amount = core.FromMinorUnits(cents)
	e.OccurredAt = fromMillis(occurredAt)
	e.CreatedAt = fromMillis(createdAt)
	return &e, nil
}

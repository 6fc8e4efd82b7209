package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"moneta/internal/core"
	"moneta/internal/storage"
)

const entryColumns = "id, kind, amount_cents, description, occurred_at, category_id, user_id, created_at"

func (s *Store) CreateEntry(ctx context.Context, e *core.LedgerEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		"INSERT INTO ledger_entries ("+entryColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		e.ID, string(e.Kind), core.ToMinorUnits(e.Amount), e.Description,
		e.OccurredAt, e.CategoryID, e.UserID, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", e.Kind, err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, kind core.EntryKind, id string) (*core.LedgerEntry, error) {
	e, err := scanEntry(s.pool.QueryRow(ctx,
		"SELECT "+entryColumns+" FROM ledger_entries WHERE id = $1 AND kind = $2", id, string(kind),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.NotFound(string(kind), id)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}
	return e, nil
}

func (s *Store) UpdateEntry(ctx context.Context, e *core.LedgerEntry) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE ledger_entries
		SET amount_cents = $1, description = $2, occurred_at = $3, category_id = $4
		WHERE id = $5 AND kind = $6`,
		core.ToMinorUnits(e.Amount), e.Description, e.OccurredAt, e.CategoryID, e.ID, string(e.Kind),
	)
	if err != nil {
		return fmt.Errorf("update %s: %w", e.Kind, err)
	}
	if tag.RowsAffected() == 0 {
		return core.NotFound(string(e.Kind), e.ID)
	}
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, kind core.EntryKind, id string) error {
	if _, err := s.pool.Exec(ctx,
		"DELETE FROM ledger_entries WHERE id = $1 AND kind = $2", id, string(kind),
	); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return nil
}

func (s *Store) ListEntries(ctx context.Context, f storage.EntryFilter, page core.PageRequest) ([]core.LedgerEntry, int, error) {
	var a args
	cond := entryWhere(f, &a)

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM ledger_entries"+cond, a...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	query := "SELECT " + entryColumns + " FROM ledger_entries" + cond +
		f.OrderBy() + " LIMIT " + a.add(page.Take) + " OFFSET " + a.add(page.Skip())
	rows, err := s.pool.Query(ctx, query, a...)
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
	var a args
	cond := entryWhere(f, &a)

	var cents int64
	if err := s.pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(amount_cents), 0)::BIGINT FROM ledger_entries"+cond, a...,
	).Scan(&cents); err != nil {
		return decimal.Zero, fmt.Errorf("sum entries: %w", err)
	}
	return core.FromMinorUnits(cents), nil
}

func entryWhere(f storage.EntryFilter, a *args) string {
	var clauses []string
	if len(f.Kinds) > 0 {
		kinds := make([]string, len(f.Kinds))
		for i, k := range f.Kinds {
			kinds[i] = string(k)
		}
		clauses = append(clauses, "kind = ANY("+a.add(kinds)+")")
	}
	if f.UserID != "" {
		clauses = append(clauses, "user_id = "+a.add(f.UserID))
	}
	if f.CategoryID != "" {
		clauses = append(clauses, "category_id = "+a.add(f.CategoryID))
	}
	if f.Interval != nil {
		clauses = append(clauses, "occurred_at BETWEEN "+a.add(f.Interval.From)+" AND "+a.add(f.Interval.To))
	}
	return where(clauses)
}

func scanEntry(row pgx.Row) (*core.LedgerEntry, error) {
	var (
		e     core.LedgerEntry
		kind  string
		cents int64
	)
	if err := row.Scan(&e.ID, &kind, &cents, &e.Description, &e.OccurredAt, &e.CategoryID, &e.UserID, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Kind = core.EntryKind(kind)
	e.Amount = core.FromMinorUnits(cents)
	return &e, nil
}

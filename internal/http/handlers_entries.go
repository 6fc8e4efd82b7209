package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"moneta/internal/core"
	"moneta/internal/services"
)

type entryRequest struct {
	CategoryID  string       `json:"categoryId"`
	Amount      *amountInput `json:"amount"`
	Description string       `json:"description"`
	OccurredAt  *string      `json:"occurredAt"`
}

type entryPatchRequest struct {
	Amount      *amountInput `json:"amount"`
	Description *string      `json:"description"`
	OccurredAt  *string      `json:"occurredAt"`
	CategoryID  *string      `json:"categoryId"`
}

// ownEntry resolves an entry of kind owned by userID.
func (h *handlers) ownEntry(ctx context.Context, userID string, kind core.EntryKind, id string) (*core.LedgerEntry, error) {
	e, err := h.svc.Ledger.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if e.UserID != userID {
		return nil, core.NotFound(string(kind), id)
	}
	return e, nil
}

func (h *handlers) createEntry(w http.ResponseWriter, r *http.Request, userID string) {
	kind, err := parseKind(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req entryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := requireAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	occurredAt, err := parseOptionalDate(h.tz, "occurredAt", req.OccurredAt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.ownCategory(r.Context(), userID, req.CategoryID); err != nil {
		writeError(w, r, err)
		return
	}

	in := services.CreateEntryInput{
		Kind:        kind,
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Amount:      amount,
		Description: sanitizeInput(req.Description),
	}
	if occurredAt != nil {
		in.OccurredAt = *occurredAt
	}
	e, err := h.svc.Ledger.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *handlers) getEntry(w http.ResponseWriter, r *http.Request, userID string) {
	kind, err := parseKind(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := h.ownEntry(r.Context(), userID, kind, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *handlers) updateEntry(w http.ResponseWriter, r *http.Request, userID string) {
	kind, err := parseKind(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := r.PathValue("id")
	var req entryPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := optionalAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	occurredAt, err := parseOptionalDate(h.tz, "occurredAt", req.OccurredAt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.ownEntry(r.Context(), userID, kind, id); err != nil {
		writeError(w, r, err)
		return
	}
	if req.CategoryID != nil {
		if _, err := h.ownCategory(r.Context(), userID, *req.CategoryID); err != nil {
			writeError(w, r, err)
			return
		}
	}

	e, err := h.svc.Ledger.Update(r.Context(), kind, id, core.EntryPatch{
		Amount:      amount,
		Description: sanitizeOptional(req.Description),
		OccurredAt:  occurredAt,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *handlers) deleteEntry(w http.ResponseWriter, r *http.Request, userID string) {
	kind, err := parseKind(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := r.PathValue("id")
	if _, err := h.ownEntry(r.Context(), userID, kind, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeError(w, r, err)
		return
	}
	if err := h.svc.Ledger.Delete(r.Context(), kind, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type entryLister func(ctx context.Context, userID string, kind core.EntryKind, date *time.Time, page core.PageRequest) (core.Page[core.LedgerEntry], error)

// listEntries serves the paginated listings. When dated is false the date
// query is ignored and every entry of the kind is listed.
func (h *handlers) listEntries(list entryLister, dated bool) userHandler {
	return func(w http.ResponseWriter, r *http.Request, userID string) {
		kind, err := parseKind(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		page, err := parsePage(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var date *time.Time
		if dated {
			if date, err = parseDateQuery(r, h.tz); err != nil {
				writeError(w, r, err)
				return
			}
		}
		result, err := list(r.Context(), userID, kind, date, page)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (h *handlers) listAll(ctx context.Context, userID string, kind core.EntryKind, _ *time.Time, page core.PageRequest) (core.Page[core.LedgerEntry], error) {
	return h.svc.Ledger.List(ctx, userID, kind, page)
}

func (h *handlers) recentActivity(w http.ResponseWriter, r *http.Request, userID string) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseDateQuery(r, h.tz)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.svc.Ledger.RecentActivity(r.Context(), userID, date, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

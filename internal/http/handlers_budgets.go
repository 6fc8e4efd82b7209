package http

import (
	"context"
	"errors"
	"net/http"

	"moneta/internal/core"
	"moneta/internal/services"
)

type budgetRequest struct {
	CategoryID  string       `json:"categoryId"`
	Amount      *amountInput `json:"amount"`
	StartDate   string       `json:"startDate"`
	EndDate     string       `json:"endDate"`
	IsRecurring bool         `json:"isRecurring"`
}

type budgetPatchRequest struct {
	Amount      *amountInput `json:"amount"`
	CategoryID  *string      `json:"categoryId"`
	StartDate   *string      `json:"startDate"`
	EndDate     *string      `json:"endDate"`
	IsRecurring *bool        `json:"isRecurring"`
	IsActive    *bool        `json:"isActive"`
}

func (h *handlers) ownBudget(ctx context.Context, userID, id string) (*core.Budget, error) {
	b, err := h.svc.Budgets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, core.NotFound("budget", id)
	}
	return b, nil
}

func (h *handlers) createBudget(w http.ResponseWriter, r *http.Request, userID string) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := requireAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, err := parseOptionalDate(h.tz, "startDate", &req.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := parseOptionalDate(h.tz, "endDate", &req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.ownCategory(r.Context(), userID, req.CategoryID); err != nil {
		writeError(w, r, err)
		return
	}

	b, err := h.svc.Budgets.Create(r.Context(), services.CreateBudgetInput{
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Amount:      amount,
		StartDate:   *start,
		EndDate:     *end,
		IsRecurring: req.IsRecurring,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *handlers) listActiveBudgets(w http.ResponseWriter, r *http.Request, userID string) {
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
	result, err := h.svc.Budgets.FindActiveForDate(r.Context(), userID, date, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) getBudget(w http.ResponseWriter, r *http.Request, userID string) {
	b, err := h.ownBudget(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *handlers) updateBudget(w http.ResponseWriter, r *http.Request, userID string) {
	id := r.PathValue("id")
	var req budgetPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := optionalAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, err := parseOptionalDate(h.tz, "startDate", req.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := parseOptionalDate(h.tz, "endDate", req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.ownBudget(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	if req.CategoryID != nil {
		if _, err := h.ownCategory(r.Context(), userID, *req.CategoryID); err != nil {
			writeError(w, r, err)
			return
		}
	}

	b, err := h.svc.Budgets.Update(r.Context(), id, core.BudgetPatch{
		Amount:      amount,
		CategoryID:  req.CategoryID,
		StartDate:   start,
		EndDate:     end,
		IsRecurring: req.IsRecurring,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *handlers) deleteBudget(w http.ResponseWriter, r *http.Request, userID string) {
	id := r.PathValue("id")
	if _, err := h.ownBudget(r.Context(), userID, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeError(w, r, err)
		return
	}
	if err := h.svc.Budgets.Remove(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) refreshBudget(w http.ResponseWriter, r *http.Request, userID string) {
	id := r.PathValue("id")
	if _, err := h.ownBudget(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.svc.Budgets.RefreshSpending(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

package http

import (
	"context"
	"net/http"
	"strings"

	"moneta/internal/core"
	"moneta/internal/services"
	"moneta/internal/timezone"
)

// Services groups the application services the API calls into.
type Services struct {
	Users      *services.UserService
	Categories *services.CategoryService
	Ledger     *services.LedgerService
	Budgets    *services.BudgetTracker
	Reports    *services.BalanceReporter
}

type handlers struct {
	svc Services
	tz  *timezone.Normalizer
}

type userHandler func(w http.ResponseWriter, r *http.Request, userID string)

// authed trusts the gateway-provided X-User-ID header.
func (h *handlers) authed(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(userIDHeader))
		if userID == "" {
			writeError(w, r, errMissingUser)
			return
		}
		next(w, r, userID)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ownCategory resolves a category and hides other users' records as not found.
func (h *handlers) ownCategory(ctx context.Context, userID, id string) (*core.Category, error) {
	c, err := h.svc.Categories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, core.NotFound("category", id)
	}
	return c, nil
}

// --- reports ---

func (h *handlers) getBalance(w http.ResponseWriter, r *http.Request, userID string) {
	balance, err := h.svc.Reports.GetBalance(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (h *handlers) getOverview(w http.ResponseWriter, r *http.Request, userID string) {
	date, err := parseDateQuery(r, h.tz)
	if err != nil {
		writeError(w, r, err)
		return
	}
	overview, err := h.svc.Reports.GetOverview(r.Context(), userID, date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// --- users ---

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *handlers) registerUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.Users.Register(r.Context(), sanitizeInput(req.Username), req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *handlers) getMe(w http.ResponseWriter, r *http.Request, userID string) {
	u, err := h.svc.Users.Get(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

package http

import (
	"errors"
	"net/http"

	"moneta/internal/core"
)

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func (h *handlers) listCategories(w http.ResponseWriter, r *http.Request, userID string) {
	cats, err := h.svc.Categories.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *handlers) createCategory(w http.ResponseWriter, r *http.Request, userID string) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.Categories.Create(r.Context(), core.Category{
		Name:   sanitizeInput(req.Name),
		Color:  sanitizeInput(req.Color),
		Icon:   sanitizeInput(req.Icon),
		UserID: userID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *handlers) getCategory(w http.ResponseWriter, r *http.Request, userID string) {
	c, err := h.ownCategory(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handlers) updateCategory(w http.ResponseWriter, r *http.Request, userID string) {
	id := r.PathValue("id")
	var patch core.CategoryPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.ownCategory(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}

	patch.Name = sanitizeOptional(patch.Name)
	patch.Color = sanitizeOptional(patch.Color)
	patch.Icon = sanitizeOptional(patch.Icon)
	c, err := h.svc.Categories.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handlers) deleteCategory(w http.ResponseWriter, r *http.Request, userID string) {
	id := r.PathValue("id")
	if _, err := h.ownCategory(r.Context(), userID, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeError(w, r, err)
		return
	}
	if err := h.svc.Categories.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

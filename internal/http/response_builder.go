package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"moneta/internal/core"
	mlog "moneta/internal/log"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var malformed *malformedError
	switch {
	case errors.As(err, &malformed):
		return http.StatusBadRequest
	case errors.Is(err, errMissingUser):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrConflict), errors.Is(err, core.ErrAlreadyRolledOver):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders {"error": msg}. Internal failures are logged and hidden.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		mlog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			mlog.FieldError, err,
			mlog.FieldMethod, r.Method,
			mlog.FieldPath, r.URL.Path)
		msg = "internal server error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}

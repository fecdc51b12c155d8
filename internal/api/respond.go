package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/salaryrace/salaryrace-go/internal/domain"
	"github.com/salaryrace/salaryrace-go/internal/ratelimit"
	"github.com/salaryrace/salaryrace-go/internal/store"
)

// Error messages shared with existing clients.
const (
	msgNotFound       = "Not found"
	msgSchemaMissing  = "Database schema missing"
	msgTooManyRequest = "Too many requests"
)

type errorBody struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeServiceError maps service and store errors to responses. fallback is
// the message for unexpected failures, which are logged.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Msg)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, ratelimit.ErrBudgetExceeded):
		writeError(w, http.StatusTooManyRequests, msgTooManyRequest)
	case errors.Is(err, store.ErrSchemaMissing):
		slog.ErrorContext(r.Context(), "database schema missing", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: msgSchemaMissing, Hint: store.SchemaHint})
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "request_id", w.Header().Get("X-Request-ID"), "error", err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Strob0t/powerscrape/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps err to a status code. Upstream and extraction
// failures are reported with their detail so callers can tell them apart.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	// Once the request context is done the timeout middleware owns the
	// response (504), or the client is gone and nothing can be written.
	if ctxErr := r.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		slog.DebugContext(r.Context(), "request abandoned", "path", r.URL.Path, "error", err)
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, domain.ErrNotFound.Error())
	case errors.Is(err, domain.ErrFetch), errors.Is(err, domain.ErrParse):
		slog.ErrorContext(r.Context(), "lottery read failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		slog.ErrorContext(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

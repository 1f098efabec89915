// Package respond writes JSON responses and maps domain errors onto status
// codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/infaq/internal/ledger"
)

// GenericFailure is shown for storage failures; the cause only goes to logs.
const GenericFailure = "could not complete the operation, try again"

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Row   int    `json:"row,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err with the status its kind calls for.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *ledger.ValidationError

	switch {
	case errors.As(err, &vErr):
		JSON(w, http.StatusUnprocessableEntity, errorResponse{Error: vErr.Error(), Field: vErr.Field, Row: vErr.Row})
	case errors.Is(err, ledger.ErrNotFound):
		JSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		JSON(w, http.StatusInternalServerError, errorResponse{Error: GenericFailure})
	}
}

// BadRequest reports a malformed request.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

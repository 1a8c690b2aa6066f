package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as JSON with a stable machine-readable code
//   - Mapped from core sentinels to the right HTTP status
//
// Validation failures carry the full per-field error list so clients can
// attach messages to individual form fields.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rsharma-dev/leadbook/internal/core"
	"github.com/rsharma-dev/leadbook/internal/logging"
)

// ErrorResponse is the JSON structure for API error responses. Fields is
// only present for validation failures.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields []core.FieldError `json:"fields,omitempty"`
}

// respondError maps an error to an HTTP status and writes the JSON body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classifyError(err)

	logger := logging.FromContext(r.Context())
	logger.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", code,
		"request_id", chimiddleware.GetReqID(r.Context()),
	)

	var fieldErrs core.FieldErrors
	if errors.As(err, &fieldErrs) {
		writeJSON(w, status, ErrorResponse{
			Error:  "validation failed",
			Code:   code,
			Fields: fieldErrs,
		})
		return
	}

	respondErrorJSON(w, status, code, err.Error())
}

// classifyError maps core sentinels onto status codes. Unknown errors are
// treated as internal and their text is not leaked to the client.
func classifyError(err error) (int, string) {
	var fieldErrs core.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		return http.StatusUnprocessableEntity, "VALIDATION_FAILED"
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, core.ErrNotOwner):
		return http.StatusForbidden, "NOT_OWNER"
	case errors.Is(err, core.ErrTooManyRows):
		return http.StatusBadRequest, "TOO_MANY_ROWS"
	case errors.Is(err, core.ErrEmptyFile):
		return http.StatusBadRequest, "EMPTY_FILE"
	case errors.Is(err, core.ErrBadCSV):
		return http.StatusBadRequest, "BAD_CSV"
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

// respondErrorJSON writes a simple JSON error body.
func respondErrorJSON(w http.ResponseWriter, status int, code, message string) {
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// writeJSON encodes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; nothing to do but note it.
		slog.Error("json encode failed", "error", err)
	}
}

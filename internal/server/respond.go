package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/raphaelgruber/flowmind/internal/analyzer"
	"github.com/raphaelgruber/flowmind/internal/flow"
	"github.com/raphaelgruber/flowmind/internal/service"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// errorResponse is the JSON body for all error replies.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeAndValidate parses the JSON body into dst and runs validation.
// Writes the error response itself and reports whether to continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return false
	}
	return true
}

// writeServiceError maps domain sentinel errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRefreshToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrAccountLocked):
		writeError(w, http.StatusLocked, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidActionToken),
		errors.Is(err, analyzer.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, flow.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-user-accounts/internal/domain"
	"github.com/go-user-accounts/internal/pkg/validate"
	"go.uber.org/zap"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with its mapped status. Infrastructure details
// are logged and replaced by a generic message.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusServiceUnavailable:
		log.Error("backing service unavailable", zap.Error(err))
		writeError(w, status, "service temporarily unavailable")
	case http.StatusInternalServerError:
		log.Error("request failed", zap.Error(err))
		writeError(w, status, "internal server error")
	default:
		writeError(w, status, err.Error())
	}
}

// decode reads a JSON body into dst and validates it. It writes the error
// response and returns false when the request should stop.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

package handler

import (
	"net/http"

	"github.com/go-user-accounts/internal/application/account"
	"github.com/go-user-accounts/internal/domain"
	"github.com/go-user-accounts/internal/transport/http/middleware"
	"go.uber.org/zap"
)

// SessionHandler handles login, the current session and logout.
type SessionHandler struct {
	svc account.Service
	log *zap.Logger
}

func NewSessionHandler(svc account.Service, log *zap.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, log: log}
}

// Login answers 401 with the structured result when the credentials are wrong.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.svc.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if resp.Error != nil {
		writeJSON(w, http.StatusUnauthorized, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, h.svc.GetLoggedInUser(identity))
}

// Logout is client-side: tokens stay valid until they expire.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, h.svc.Logout(identity))
}

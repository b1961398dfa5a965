package handler

import (
	"net/http"

	"github.com/go-user-accounts/internal/application/account"
	"github.com/go-user-accounts/internal/domain"
	"go.uber.org/zap"
)

// AccountHandler handles registration, activation and user listing.
type AccountHandler struct {
	svc account.Service
	log *zap.Logger
}

func NewAccountHandler(svc account.Service, log *zap.Logger) *AccountHandler {
	return &AccountHandler{svc: svc, log: log}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.svc.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AccountHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req domain.ActivationRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.svc.ActivateUser(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.GetAllUser(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

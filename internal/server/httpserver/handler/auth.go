package handler

import (
	"net/http"

	"github.com/yndnr/tokgate-go/internal/core/domain"
)

// handleSendCode handles POST /auth/send_code.
func (h *Handler) handleSendCode(w http.ResponseWriter, r *http.Request) {
	var req SendCodeRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	res, err := h.auth.SendCode(r.Context(), req.Phone, domain.APICredentials{ID: req.APIID, Hash: req.APIHash})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, res)
}

// handleVerifyCode handles POST /auth/verify_code.
func (h *Handler) handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	res, err := h.auth.VerifyCode(r.Context(), SessionToken(r.Context()), req.Code)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, res)
}

// handleVerifyPassword handles POST /auth/verify_password.
func (h *Handler) handleVerifyPassword(w http.ResponseWriter, r *http.Request) {
	var req VerifyPasswordRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	res, err := h.auth.VerifyPassword(r.Context(), SessionToken(r.Context()), req.Password)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, res)
}

// handleLogout handles DELETE /auth/logout.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), SessionToken(r.Context())); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, LogoutResponse{Message: "Successfully logged out"})
}

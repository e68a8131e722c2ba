package handlers

import (
	"net/http"

	"github.com/baharkarakas/approval-backend/internal/api/httpx"
	"github.com/baharkarakas/approval-backend/internal/auth"
	"github.com/baharkarakas/approval-backend/internal/middleware"
)

type AuthHandler struct {
	TM     *auth.TokenManager
	AppEnv string
}

func NewAuthHandler(tm *auth.TokenManager, appEnv string) *AuthHandler {
	return &AuthHandler{TM: tm, AppEnv: appEnv}
}

type tokenReq struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Role   string `json:"role" validate:"omitempty,oneof=admin maker checker"`
}

// Token issues a token pair for any user id. Session lookup lives outside
// this service, so this endpoint only exists in dev.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if h.AppEnv != "dev" {
		httpx.WriteError(w, http.StatusNotImplemented, "not_implemented", "token issuance is only available in dev", nil)
		return
	}
	var req tokenReq
	if !decode(w, r, &req) {
		return
	}
	if req.Role == "" {
		req.Role = middleware.RoleMaker
	}
	pair, err := h.TM.GeneratePair(req.UserID, req.Role)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "token generation failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if !decode(w, r, &req) {
		return
	}
	claims, err := h.TM.ParseRefresh(req.RefreshToken)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid refresh token", nil)
		return
	}
	pair, err := h.TM.GeneratePair(claims.UserID, claims.Role)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "token generation failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

package handler

import (
	"contest_hub/internal/app/service"
	"contest_hub/internal/common"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// AuthHandler exposes token issuance for deployments using locally signed tokens.
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/token", h.issueToken)
}

func (h *AuthHandler) issueToken(w http.ResponseWriter, r *http.Request) {
	var req service.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.authService.IssueToken(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

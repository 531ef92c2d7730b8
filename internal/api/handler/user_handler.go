package handler

import (
	"contest_hub/internal/api/middleware"
	"contest_hub/internal/app/service"
	"contest_hub/internal/common"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	userService *service.UserService
	auth        Middleware
}

func NewUserHandler(us *service.UserService, auth Middleware) *UserHandler {
	return &UserHandler{userService: us, auth: auth}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{email}/role", h.getRole) // Public

	r.Group(func(authed chi.Router) {
		authed.Use(h.auth)
		authed.Post("/", h.createUser)

		authed.Group(func(admin chi.Router) {
			admin.Use(middleware.AdminOnly(h.userService))
			admin.Get("/", h.listUsers)
			admin.Patch("/{userID}/role", h.updateRole)
		})
	})
}

func (h *UserHandler) createUser(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	var req service.CreateUserRequest
	// The body is optional; the email always comes from the token.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	user, created, err := h.userService.EnsureUser(r.Context(), email, req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	if !created {
		common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "user exists"})
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			common.RespondWithError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	users, err := h.userService.ListUsers(r.Context(), limit)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, users)
}

func (h *UserHandler) getRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.userService.GetRole(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"role": role})
}

func (h *UserHandler) updateRole(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	user, err := h.userService.UpdateRole(r.Context(), chi.URLParam(r, "userID"), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

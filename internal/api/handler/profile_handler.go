package handler

import (
	"contest_hub/internal/app/service"
	"contest_hub/internal/common"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ProfileHandler struct {
	profileService *service.ProfileService
	userService    *service.UserService
	auth           Middleware
}

func NewProfileHandler(ps *service.ProfileService, us *service.UserService, auth Middleware) *ProfileHandler {
	return &ProfileHandler{profileService: ps, userService: us, auth: auth}
}

func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Get("/leaderboard", h.leaderboard) // Public

	r.Group(func(authed chi.Router) {
		authed.Use(h.auth)
		authed.Get("/my-participated-contests", h.participated)
		authed.Get("/my-winning-contests", h.winning)
		authed.Get("/my-profile", h.summary)
		authed.Patch("/my-profile", h.updateProfile)
	})
}

func (h *ProfileHandler) participated(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}
	contests, err := h.profileService.ParticipatedContests(r.Context(), email)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, contests)
}

func (h *ProfileHandler) winning(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}
	contests, err := h.profileService.WinningContests(r.Context(), email)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, contests)
}

func (h *ProfileHandler) summary(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}
	summary, err := h.profileService.Summary(r.Context(), email)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, summary)
}

func (h *ProfileHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}
	req, err := service.DecodeProfileUpdate(r.Body)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	user, err := h.userService.UpdateProfile(r.Context(), email, req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *ProfileHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.profileService.Leaderboard(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}

package handler

import (
	"contest_hub/internal/app/service"
	"contest_hub/internal/common"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ContestHandler struct {
	contestService *service.ContestService
	auth           Middleware
}

func NewContestHandler(cs *service.ContestService, auth Middleware) *ContestHandler {
	return &ContestHandler{contestService: cs, auth: auth}
}

func (h *ContestHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listContests)                // GET /contests?email=&type=&status=&sort=
	r.Get("/contest_type", h.listContestTypes) // GET /contests/contest_type
	r.Get("/{contestID}", h.getContest)

	r.Group(func(authed chi.Router) {
		authed.Use(h.auth)
		authed.Post("/", h.createContest)
		authed.Patch("/{contestID}", h.updateContest)
		authed.Delete("/{contestID}", h.deleteContest)
		authed.Get("/{contestID}/submissions", h.listSubmissions)
		authed.Post("/{contestID}/submit-task", h.submitTask)
		authed.Patch("/{contestID}/declare-winner", h.declareWinner)
	})
}

func (h *ContestHandler) listContests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	contests, err := h.contestService.ListContests(r.Context(), service.ListContestsQuery{
		Email:  q.Get("email"),
		Type:   q.Get("type"),
		Status: q.Get("status"),
		Sort:   q.Get("sort"),
	})
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, contests)
}

func (h *ContestHandler) listContestTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.contestService.ContestTypes(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, types)
}

func (h *ContestHandler) getContest(w http.ResponseWriter, r *http.Request) {
	contest, err := h.contestService.GetContest(r.Context(), chi.URLParam(r, "contestID"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, contest)
}

func (h *ContestHandler) createContest(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	var req service.CreateContestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	contest, err := h.contestService.CreateContest(r.Context(), email, req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, contest)
}

func (h *ContestHandler) updateContest(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	req, err := service.DecodeContestUpdate(r.Body)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}

	contest, err := h.contestService.UpdateContest(r.Context(), email, chi.URLParam(r, "contestID"), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, contest)
}

func (h *ContestHandler) deleteContest(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}
	if err := h.contestService.DeleteContest(r.Context(), email, chi.URLParam(r, "contestID")); err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *ContestHandler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}
	subs, err := h.contestService.ListSubmissions(r.Context(), email, chi.URLParam(r, "contestID"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, subs)
}

func (h *ContestHandler) submitTask(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	var req service.SubmitTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	sub, created, err := h.contestService.SubmitTask(r.Context(), email, chi.URLParam(r, "contestID"), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK // Identical entry already on file
	}
	common.RespondWithJSON(w, status, sub)
}

func (h *ContestHandler) declareWinner(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	var req service.DeclareWinnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	contest, err := h.contestService.DeclareWinner(r.Context(), email, chi.URLParam(r, "contestID"), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, contest)
}

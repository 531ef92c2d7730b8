package handler

import (
	"contest_hub/internal/app/service"
	"contest_hub/internal/common"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	auth           Middleware
}

func NewPaymentHandler(ps *service.PaymentService, auth Middleware) *PaymentHandler {
	return &PaymentHandler{paymentService: ps, auth: auth}
}

func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(authed chi.Router) {
		authed.Use(h.auth)
		authed.Post("/payment-checkout-session", h.createCheckoutSession)
		authed.Post("/payments/confirm", h.confirmPayment)
	})
}

func (h *PaymentHandler) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	var req service.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	session, err := h.paymentService.CreateCheckoutSession(r.Context(), email, req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, session)
}

func (h *PaymentHandler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	var req service.ConfirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.paymentService.ConfirmPayment(r.Context(), email, req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

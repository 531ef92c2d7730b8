package service

import (
	"contest_hub/internal/common"
	"contest_hub/internal/domain/model"
	"contest_hub/internal/domain/repository"
	"contest_hub/internal/platform/payment"
	"contest_hub/internal/platform/queue"
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentService struct {
	paymentRepo repository.PaymentRepository
	contestRepo repository.ContestRepository
	gateway     payment.Gateway
	events      queue.EventPublisher
	siteDomain  string
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	contestRepo repository.ContestRepository,
	gateway payment.Gateway,
	events queue.EventPublisher,
	siteDomain string,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		contestRepo: contestRepo,
		gateway:     gateway,
		events:      events,
		siteDomain:  siteDomain,
	}
}

type CheckoutRequest struct {
	ContestID string `json:"contest_id" validate:"required"`
}

type ConfirmPaymentRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

type ConfirmPaymentResponse struct {
	Success          bool   `json:"success"`
	ContestID        string `json:"contest_id"`
	AlreadyConfirmed bool   `json:"already_confirmed"`
}

// CreateCheckoutSession opens a hosted checkout for the contest's entry fee.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, email string, req CheckoutRequest) (*payment.CheckoutSession, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	email = model.NormalizeEmail(email)

	contest, err := s.contestRepo.FindByID(ctx, req.ContestID)
	if err != nil {
		return nil, common.Errorf("contest %s: %w", req.ContestID, err)
	}
	if contest.Status != model.StatusApproved {
		return nil, common.Errorf("contest is not open for registration: %w", common.ErrInvalidState)
	}
	if contest.DeadlinePassed(time.Now().UTC()) {
		return nil, common.Errorf("contest deadline has passed: %w", common.ErrInvalidState)
	}
	if contest.IsRegistered(email) {
		return nil, common.Errorf("already registered for this contest: %w", common.ErrInvalidState)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		ContestID:     contest.ID,
		ProductName:   "Please pay for: " + contest.Name,
		CustomerEmail: email,
		AmountCents:   contest.Price.Shift(2).Round(0).IntPart(),
		Currency:      model.CurrencyUSD,
		SuccessURL:    s.siteDomain + "/dashboard/payment-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.siteDomain + "/dashboard/payment-cancelled",
	})
	if err != nil {
		return nil, common.Errorf("failed to create checkout session: %w", err)
	}
	log.Printf("INFO: Checkout session %s opened for contest %s by %s (%s)", session.ID, contest.ID, email, s.gateway.Name())
	return session, nil
}

// ConfirmPayment verifies a checkout session with the gateway and registers its payer.
// Repeating it for the same session changes nothing.
func (s *PaymentService) ConfirmPayment(ctx context.Context, email string, req ConfirmPaymentRequest) (*ConfirmPaymentResponse, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	email = model.NormalizeEmail(email)

	// A recorded session was paid already; answer without asking the gateway again.
	recorded, err := s.paymentRepo.FindBySessionID(ctx, req.SessionID)
	switch {
	case err == nil:
		if recorded.Email != email {
			return nil, common.Errorf("checkout session belongs to another user: %w", common.ErrForbidden)
		}
		return &ConfirmPaymentResponse{Success: true, ContestID: recorded.ContestID, AlreadyConfirmed: true}, nil
	case !errors.Is(err, common.ErrNotFound):
		return nil, common.Errorf("failed to look up payment: %w", err)
	}

	session, err := s.gateway.RetrieveSession(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("checkout session %s: %w", req.SessionID, common.ErrNotFound)
		}
		return nil, common.Errorf("failed to retrieve checkout session: %w", err)
	}
	if !session.IsPaid() {
		return nil, common.ErrPaymentIncomplete
	}
	if model.NormalizeEmail(session.CustomerEmail) != email {
		return nil, common.Errorf("checkout session belongs to another user: %w", common.ErrForbidden)
	}
	if session.ContestID == "" {
		return nil, common.Errorf("checkout session carries no contest: %w", common.ErrBadRequest)
	}
	if _, err := s.contestRepo.FindByID(ctx, session.ContestID); err != nil {
		return nil, common.Errorf("contest %s: %w", session.ContestID, err)
	}

	p := &model.Payment{
		ID:        uuid.NewString(),
		ContestID: session.ContestID,
		Email:     email,
		Amount:    decimal.New(session.AmountTotal, -2),
		Currency:  session.Currency,
		SessionID: session.ID,
		PaidAt:    time.Now().UTC(),
	}
	if p.Currency == "" {
		p.Currency = model.CurrencyUSD
	}
	res, err := s.paymentRepo.RecordConfirmed(ctx, p)
	if err != nil {
		return nil, common.Errorf("failed to record payment: %w", err)
	}

	if res.PaymentRecorded {
		log.Printf("INFO: Payment %s recorded for contest %s by %s (registered: %t)", session.ID, p.ContestID, email, res.Registered)
		if err := s.events.Publish(ctx, model.EventPaymentConfirmed, p.ContestID, email); err != nil {
			log.Printf("WARN: Failed to publish payment event for session %s: %v", session.ID, err)
		}
	}
	return &ConfirmPaymentResponse{
		Success:          true,
		ContestID:        p.ContestID,
		AlreadyConfirmed: !res.PaymentRecorded,
	}, nil
}

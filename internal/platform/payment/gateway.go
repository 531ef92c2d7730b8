// Package payment talks to the hosted checkout provider.
package payment

import (
	"contest_hub/internal/platform/config"
	"context"
	"fmt"
)

const (
	StatusPaid              = "paid"
	StatusUnpaid            = "unpaid"
	StatusNoPaymentRequired = "no_payment_required"
)

type CheckoutRequest struct {
	ContestID     string
	ProductName   string
	CustomerEmail string
	AmountCents   int64
	Currency      string
	SuccessURL    string
	CancelURL     string
}

type CheckoutSession struct {
	ID  string `json:"session_id"`
	URL string `json:"url"`
}

// Session is the gateway's view of a checkout session.
type Session struct {
	ID            string
	PaymentStatus string
	ContestID     string
	CustomerEmail string
	AmountTotal   int64 // Minor units
	Currency      string
}

func (s *Session) IsPaid() bool {
	return s.PaymentStatus == StatusPaid
}

type Gateway interface {
	Name() string
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
}

// NewGateway picks the gateway named by cfg.PaymentProvider.
func NewGateway(cfg *config.Config) (Gateway, error) {
	switch cfg.PaymentProvider {
	case config.PaymentStripe:
		if cfg.StripeSecret == "" {
			return nil, fmt.Errorf("STRIPE_SECRET is empty")
		}
		return NewStripeGateway(cfg.StripeSecret), nil
	case config.PaymentStub:
		return NewStubGateway(cfg.PaymentStubAutoPay), nil
	default:
		return nil, fmt.Errorf("unknown payment provider: %s", cfg.PaymentProvider)
	}
}

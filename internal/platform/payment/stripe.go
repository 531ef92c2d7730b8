package payment

import (
	"contest_hub/internal/common"
	"context"
	"errors"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

const metadataContestID = "contestId"

type stripeGateway struct {
	sc *client.API
}

func NewStripeGateway(secretKey string) Gateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &stripeGateway{sc: sc}
}

func (g *stripeGateway) Name() string { return "stripe" }

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(req.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(req.CustomerEmail),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata(metadataContestID, req.ContestID)

	s, err := g.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, mapStripeError("create checkout session", err)
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (g *stripeGateway) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := g.sc.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, mapStripeError("retrieve checkout session", err)
	}

	email := s.CustomerEmail
	if email == "" && s.CustomerDetails != nil {
		email = s.CustomerDetails.Email
	}
	return &Session{
		ID:            s.ID,
		PaymentStatus: string(s.PaymentStatus),
		ContestID:     s.Metadata[metadataContestID],
		CustomerEmail: email,
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
	}, nil
}

func mapStripeError(op string, err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) && serr.HTTPStatusCode == http.StatusNotFound {
		return common.Errorf("stripe %s: %w", op, common.ErrNotFound)
	}
	return common.Errorf("stripe %s: %v: %w", op, err, common.ErrServiceUnavailable)
}

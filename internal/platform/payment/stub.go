package payment

import (
	"contest_hub/internal/common"
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// StubGateway keeps sessions in memory. With autoPay every new session is already paid,
// which lets the full flow run locally without a payment account.
type StubGateway struct {
	mu       sync.Mutex
	autoPay  bool
	sessions map[string]*Session
}

func NewStubGateway(autoPay bool) *StubGateway {
	return &StubGateway{autoPay: autoPay, sessions: make(map[string]*Session)}
}

func (g *StubGateway) Name() string { return "stub" }

func (g *StubGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	id := "cs_stub_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	status := StatusUnpaid
	if g.autoPay {
		status = StatusPaid
	}

	g.mu.Lock()
	g.sessions[id] = &Session{
		ID:            id,
		PaymentStatus: status,
		ContestID:     req.ContestID,
		CustomerEmail: req.CustomerEmail,
		AmountTotal:   req.AmountCents,
		Currency:      req.Currency,
	}
	g.mu.Unlock()

	url := strings.ReplaceAll(req.SuccessURL, "{CHECKOUT_SESSION_ID}", id)
	return &CheckoutSession{ID: id, URL: url}, nil
}

func (g *StubGateway) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[sessionID]
	if !ok {
		return nil, common.Errorf("checkout session %s: %w", sessionID, common.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

// SetStatus changes the payment status of an existing session.
func (g *StubGateway) SetStatus(sessionID, status string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[sessionID]
	if ok {
		s.PaymentStatus = status
	}
	return ok
}

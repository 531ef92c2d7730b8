package service

import (
	"contest_hub/internal/common"
	"contest_hub/internal/domain/model"
	"contest_hub/internal/platform/payment"
	"contest_hub/internal/testutil"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const siteDomain = "https://contests.example.com"

func newPaymentFixture(t *testing.T, autoPay bool) (*PaymentService, *testutil.Store, *payment.StubGateway, *testutil.Publisher) {
	t.Helper()
	store := testutil.NewStore()
	gw := payment.NewStubGateway(autoPay)
	pub := &testutil.Publisher{}
	return NewPaymentService(store.Payments, store.Contests, gw, pub, siteDomain), store, gw, pub
}

func TestCreateCheckoutSession(t *testing.T) {
	svc, store, gw, _ := newPaymentFixture(t, false)
	seedContest(t, store, "c1", time.Now().Add(time.Hour))
	ctx := context.Background()

	session, err := svc.CreateCheckoutSession(ctx, player, CheckoutRequest{ContestID: "c1"})
	if err != nil {
		t.Fatalf("CreateCheckoutSession failed: %v", err)
	}
	if !strings.HasPrefix(session.URL, siteDomain+"/dashboard/payment-success?session_id=") {
		t.Errorf("Unexpected checkout URL %s", session.URL)
	}

	got, err := gw.RetrieveSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("RetrieveSession failed: %v", err)
	}
	if got.AmountTotal != 1000 || got.Currency != model.CurrencyUSD {
		t.Errorf("Expected 1000 usd cents, got %d %s", got.AmountTotal, got.Currency)
	}
	if got.ContestID != "c1" || got.CustomerEmail != player {
		t.Errorf("Expected session bound to c1/%s, got %s/%s", player, got.ContestID, got.CustomerEmail)
	}
	if got.IsPaid() {
		t.Errorf("Expected new session to be unpaid")
	}
}

func TestCreateCheckoutSessionRejections(t *testing.T) {
	svc, store, _, _ := newPaymentFixture(t, false)
	ctx := context.Background()
	seedContest(t, store, "open", time.Now().Add(time.Hour), player)
	seedContest(t, store, "closed", time.Now().Add(-time.Hour))
	pending := model.StatusPending
	seedContest(t, store, "pending", time.Now().Add(time.Hour))
	store.Contests.Update(ctx, "pending", model.ContestUpdate{Status: &pending})

	tests := []struct {
		name      string
		contestID string
		wantCode  int
	}{
		{"missing contest", "nope", 404},
		{"already registered", "open", 400},
		{"deadline passed", "closed", 400},
		{"not approved", "pending", 400},
		{"no contest id", "", 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCheckoutSession(ctx, player, CheckoutRequest{ContestID: tt.contestID})
			if code := common.HTTPStatusFromError(err); code != tt.wantCode {
				t.Errorf("Expected status %d, got %d (%v)", tt.wantCode, code, err)
			}
		})
	}
}

func TestConfirmPaymentIsIdempotent(t *testing.T) {
	svc, store, _, pub := newPaymentFixture(t, true)
	seedContest(t, store, "c1", time.Now().Add(time.Hour))
	ctx := context.Background()

	session, err := svc.CreateCheckoutSession(ctx, player, CheckoutRequest{ContestID: "c1"})
	if err != nil {
		t.Fatalf("CreateCheckoutSession failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		resp, err := svc.ConfirmPayment(ctx, player, ConfirmPaymentRequest{SessionID: session.ID})
		if err != nil {
			t.Fatalf("ConfirmPayment #%d failed: %v", i+1, err)
		}
		if !resp.Success || resp.ContestID != "c1" {
			t.Errorf("Unexpected response %+v", resp)
		}
		if resp.AlreadyConfirmed != (i > 0) {
			t.Errorf("Confirm #%d: expected already_confirmed=%v", i+1, i > 0)
		}
	}

	contest, _ := store.Contests.FindByID(ctx, "c1")
	if contest.Participants != 1 || len(contest.RegisteredUsers) != 1 || contest.RegisteredUsers[0] != player {
		t.Errorf("Expected exactly one registration, got %d / %v", contest.Participants, contest.RegisteredUsers)
	}
	if store.Payments.PaymentCount() != 1 {
		t.Errorf("Expected one payment, got %d", store.Payments.PaymentCount())
	}
	p, err := store.Payments.FindBySessionID(ctx, session.ID)
	if err != nil || !p.Amount.Equal(decimal.RequireFromString("10")) {
		t.Errorf("Expected stored amount 10, got %v (%v)", p, err)
	}
	if pub.Count(model.EventPaymentConfirmed) != 1 {
		t.Errorf("Expected one payment_confirmed event, got %d", pub.Count(model.EventPaymentConfirmed))
	}
}

func TestConfirmPaymentUnpaidWritesNothing(t *testing.T) {
	svc, store, gw, _ := newPaymentFixture(t, false)
	seedContest(t, store, "c1", time.Now().Add(time.Hour))
	ctx := context.Background()

	session, _ := svc.CreateCheckoutSession(ctx, player, CheckoutRequest{ContestID: "c1"})
	_, err := svc.ConfirmPayment(ctx, player, ConfirmPaymentRequest{SessionID: session.ID})
	if !errors.Is(err, common.ErrPaymentIncomplete) {
		t.Fatalf("Expected payment incomplete, got %v", err)
	}
	if common.HTTPStatusFromError(err) != 400 {
		t.Errorf("Expected 400, got %d", common.HTTPStatusFromError(err))
	}
	if store.Payments.PaymentCount() != 0 {
		t.Errorf("Expected no payment rows")
	}

	gw.SetStatus(session.ID, payment.StatusPaid)
	if _, err := svc.ConfirmPayment(ctx, player, ConfirmPaymentRequest{SessionID: session.ID}); err != nil {
		t.Errorf("Expected confirmation after payment, got %v", err)
	}
}

func TestConfirmPaymentRejections(t *testing.T) {
	svc, store, _, _ := newPaymentFixture(t, true)
	seedContest(t, store, "c1", time.Now().Add(time.Hour))
	ctx := context.Background()
	session, _ := svc.CreateCheckoutSession(ctx, player, CheckoutRequest{ContestID: "c1"})

	if _, err := svc.ConfirmPayment(ctx, outsider, ConfirmPaymentRequest{SessionID: session.ID}); !errors.Is(err, common.ErrForbidden) {
		t.Errorf("Expected forbidden for another user's session, got %v", err)
	}
	if _, err := svc.ConfirmPayment(ctx, player, ConfirmPaymentRequest{SessionID: "cs_missing"}); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected not found for unknown session, got %v", err)
	}

	store.Contests.Delete(ctx, "c1")
	if _, err := svc.ConfirmPayment(ctx, player, ConfirmPaymentRequest{SessionID: session.ID}); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected not found for deleted contest, got %v", err)
	}
	if store.Payments.PaymentCount() != 0 {
		t.Errorf("Expected no payment rows after rejections")
	}
}

func TestConfirmPaymentReplaySkipsGateway(t *testing.T) {
	svc, store, gw, _ := newPaymentFixture(t, true)
	seedContest(t, store, "c1", time.Now().Add(time.Hour))
	ctx := context.Background()
	session, _ := svc.CreateCheckoutSession(ctx, player, CheckoutRequest{ContestID: "c1"})
	if _, err := svc.ConfirmPayment(ctx, player, ConfirmPaymentRequest{SessionID: session.ID}); err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}

	// The stored payment answers replays even if the gateway now reports otherwise.
	gw.SetStatus(session.ID, payment.StatusUnpaid)
	resp, err := svc.ConfirmPayment(ctx, player, ConfirmPaymentRequest{SessionID: session.ID})
	if err != nil || !resp.AlreadyConfirmed || resp.ContestID != "c1" {
		t.Errorf("Expected already confirmed replay for c1, got %+v (%v)", resp, err)
	}
	if _, err := svc.ConfirmPayment(ctx, outsider, ConfirmPaymentRequest{SessionID: session.ID}); !errors.Is(err, common.ErrForbidden) {
		t.Errorf("Expected forbidden replay by another user, got %v", err)
	}
}

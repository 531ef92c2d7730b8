package worker

import (
	"contest_hub/internal/domain/model"
	"contest_hub/internal/testutil"
	"context"
	"testing"
	"time"
)

func TestHandleEvent(t *testing.T) {
	tests := []struct {
		name            string
		eventType       string
		wantInvalidates int
	}{
		{"winner declared clears leaderboard", model.EventWinnerDeclared, 1},
		{"decided contest deleted clears leaderboard", model.EventContestDeleted, 1},
		{"payment confirmed leaves leaderboard", model.EventPaymentConfirmed, 0},
		{"unknown type is ignored", "contest_archived", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := &testutil.Cache{}
			w := NewEventWorker(nil, cache, "test_queue", time.Minute)
			ev := model.ContestEvent{ID: "e1", Type: tt.eventType, ContestID: "c1", Email: "winner@example.com"}

			if err := w.handleEvent(context.Background(), ev); err != nil {
				t.Fatalf("handleEvent failed: %v", err)
			}
			if cache.Invalidates != tt.wantInvalidates {
				t.Errorf("Expected %d invalidations, got %d", tt.wantInvalidates, cache.Invalidates)
			}
		})
	}
}

func TestProcessDropsMalformedEvent(t *testing.T) {
	cache := &testutil.Cache{}
	w := NewEventWorker(nil, cache, "test_queue", time.Minute)

	w.process(context.Background(), "{not json")

	if cache.Invalidates != 0 {
		t.Errorf("Expected malformed event to be dropped")
	}
}

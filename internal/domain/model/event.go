package model

import "time"

const (
	EventPaymentConfirmed = "payment_confirmed"
	EventWinnerDeclared   = "winner_declared"
	EventContestDeleted   = "contest_deleted"
)

// ContestEvent is pushed to the event queue after a state change worth reacting to.
type ContestEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ContestID  string    `json:"contest_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

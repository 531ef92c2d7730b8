package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const CurrencyUSD = "usd"

type Payment struct {
	ID        string          `json:"id"`
	ContestID string          `json:"contest_id"`
	Email     string          `json:"email"`
	Amount    decimal.Decimal `json:"amount"` // Major units, e.g. 12.50
	Currency  string          `json:"currency"`
	SessionID string          `json:"session_id"`
	PaidAt    time.Time       `json:"paid_at"`
}

// ConfirmationResult reports which of the confirmation writes actually happened.
type ConfirmationResult struct {
	PaymentRecorded bool
	Registered      bool
}

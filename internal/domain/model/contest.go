package model

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

type ContestStatus string

const (
	StatusPending  ContestStatus = "pending"
	StatusApproved ContestStatus = "approved"
	StatusRejected ContestStatus = "rejected"
)

func (s ContestStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// TopContestsLimit caps the "popular contests" listing.
const TopContestsLimit = 6

type Contest struct {
	ID              string          `json:"id"`
	Slug            string          `json:"slug"`
	Name            string          `json:"name"`
	Image           string          `json:"image"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	PrizeMoney      decimal.Decimal `json:"prize_money"`
	TaskInstruction string          `json:"task_instruction"`
	ContestType     string          `json:"contest_type"`
	Deadline        time.Time       `json:"deadline"`
	CreatorEmail    string          `json:"creator_email"`
	Status          ContestStatus   `json:"status"`
	Participants    int             `json:"participants"`
	RegisteredUsers []string        `json:"registered_users,omitempty"` // Only loaded on detail reads
	Winner          *Winner         `json:"winner"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// DeadlinePassed reports whether the submission window is closed at now.
func (c *Contest) DeadlinePassed(now time.Time) bool {
	return !now.Before(c.Deadline)
}

func (c *Contest) IsCreator(email string) bool {
	return c.CreatorEmail != "" && c.CreatorEmail == NormalizeEmail(email)
}

func (c *Contest) IsRegistered(email string) bool {
	return slices.Contains(c.RegisteredUsers, NormalizeEmail(email))
}

func (c *Contest) HasWinner() bool {
	return c.Winner != nil
}

// ContestFilter drives the contest listing query. Zero values mean "no filter".
type ContestFilter struct {
	CreatorEmail string
	Status       ContestStatus
	Type         string // case-insensitive substring of contest_type
	Top          bool   // order by participants desc, capped at TopContestsLimit
}

// ContestUpdate carries the fields a client may change on an existing contest.
// Nil pointers are left untouched.
type ContestUpdate struct {
	Name            *string
	Image           *string
	Description     *string
	Price           *decimal.Decimal
	PrizeMoney      *decimal.Decimal
	TaskInstruction *string
	ContestType     *string
	Deadline        *time.Time
	Status          *ContestStatus
	Slug            *string
}

func (u ContestUpdate) IsEmpty() bool {
	return u.Name == nil && u.Image == nil && u.Description == nil && u.Price == nil &&
		u.PrizeMoney == nil && u.TaskInstruction == nil && u.ContestType == nil &&
		u.Deadline == nil && u.Status == nil
}

package model

import (
	"strings"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Photo     string    `json:"photo"`
	Bio       string    `json:"bio"`
	Address   string    `json:"address"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// NormalizeEmail is applied to every email before it is stored or compared.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ProfileUpdate carries the self-editable profile fields. Nil pointers are left untouched.
type ProfileUpdate struct {
	Name    *string
	Photo   *string
	Bio     *string
	Address *string
}

func (u ProfileUpdate) IsEmpty() bool {
	return u.Name == nil && u.Photo == nil && u.Bio == nil && u.Address == nil
}

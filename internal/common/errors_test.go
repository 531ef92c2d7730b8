package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", fmt.Errorf("contest x: %w", ErrNotFound), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", Errorf("nope: %w", ErrForbidden), http.StatusForbidden},
		{"validation", ErrValidation, http.StatusBadRequest},
		{"invalid state", ErrInvalidState, http.StatusBadRequest},
		{"payment incomplete", ErrPaymentIncomplete, http.StatusBadRequest},
		{"conflict", ErrConflict, http.StatusConflict},
		{"unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), http.StatusConflict},
		{"unavailable", ErrServiceUnavailable, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusFromError(tt.err); got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestPublicMessageHidesInternalErrors(t *testing.T) {
	if got := PublicMessage(errors.New("dial tcp 10.0.0.3:5432: refused")); got != ErrInternalServer.Error() {
		t.Errorf("Expected generic message, got %q", got)
	}
	err := Errorf("contest c1: %w", ErrNotFound)
	if got := PublicMessage(err); got != err.Error() {
		t.Errorf("Expected %q, got %q", err.Error(), got)
	}
}

func TestValidateStruct(t *testing.T) {
	type req struct {
		Email string `json:"winner_email" validate:"required,email"`
	}
	err := ValidateStruct(req{Email: "nope"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if want := "validation failed: winner_email (email)"; err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
	if err := ValidateStruct(req{Email: "a@example.com"}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

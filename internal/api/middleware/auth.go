package middleware

import (
	"contest_hub/internal/common"
	"contest_hub/internal/domain/model"
	"contest_hub/internal/platform/identity"
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const UserEmailCtxKey contextKey = "userEmail"

// RoleLookup resolves the stored role for an email.
type RoleLookup interface {
	GetRole(ctx context.Context, email string) (string, error)
}

// Authenticator verifies the bearer token with verifier and stores the caller's email in
// the request context.
func Authenticator(verifier identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := jwtauth.TokenFromHeader(r)
			if raw == "" {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
				return
			}

			principal, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			email := model.NormalizeEmail(principal.Email)
			if email == "" {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: email missing")
				return
			}

			ctx := context.WithValue(r.Context(), UserEmailCtxKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly must run after Authenticator. The role is read from storage on every request
// so promotions and demotions apply immediately.
func AdminOnly(roles RoleLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, ok := GetEmailFromContext(r.Context())
			if !ok {
				common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
				return
			}
			role, err := roles.GetRole(r.Context(), email)
			if err != nil {
				common.RespondWithServiceError(w, r, err)
				return
			}
			if role != model.RoleAdmin {
				common.RespondWithError(w, http.StatusForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Helper to get the verified email from context
func GetEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailCtxKey).(string)
	return email, ok && email != ""
}

// Package identity verifies bearer credentials and turns them into a Principal.
package identity

import (
	"contest_hub/internal/common/security"
	"contest_hub/internal/platform/config"
	"context"
	"fmt"
)

// Principal is the verified identity behind a request.
type Principal struct {
	Email string
}

type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Principal, error)
}

// NewVerifier picks the verifier named by cfg.IdentityProvider.
func NewVerifier(ctx context.Context, cfg *config.Config) (Verifier, error) {
	switch cfg.IdentityProvider {
	case config.IdentityFirebase:
		return NewFirebaseVerifier(ctx, cfg.FirebaseServiceKey)
	case config.IdentityJWT:
		return NewJWTVerifier(security.TokenAuth), nil
	default:
		return nil, fmt.Errorf("unknown identity provider: %s", cfg.IdentityProvider)
	}
}

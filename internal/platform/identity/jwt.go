package identity

import (
	"contest_hub/internal/common"
	"contest_hub/internal/common/security"
	"contest_hub/internal/domain/model"
	"context"

	"github.com/go-chi/jwtauth/v5"
)

type jwtVerifier struct {
	ja *jwtauth.JWTAuth
}

// NewJWTVerifier accepts HS256 tokens signed with the service's own key.
func NewJWTVerifier(ja *jwtauth.JWTAuth) Verifier {
	return &jwtVerifier{ja: ja}
}

func (v *jwtVerifier) Verify(ctx context.Context, rawToken string) (*Principal, error) {
	token, err := jwtauth.VerifyToken(v.ja, rawToken)
	if err != nil {
		return nil, common.Errorf("invalid token: %w", common.ErrUnauthorized)
	}
	claims, err := token.AsMap(ctx)
	if err != nil {
		return nil, common.Errorf("invalid token claims: %w", common.ErrUnauthorized)
	}
	email, err := security.GetEmailFromClaims(claims)
	if err != nil {
		return nil, common.Errorf("%v: %w", err, common.ErrUnauthorized)
	}
	email = model.NormalizeEmail(email)
	return &Principal{Email: email}, nil
}

package identity

import (
	"contest_hub/internal/common"
	"contest_hub/internal/domain/model"
	"context"
	"encoding/base64"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

type firebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier builds a verifier from a base64-encoded service account JSON.
func NewFirebaseVerifier(ctx context.Context, serviceKeyB64 string) (Verifier, error) {
	if serviceKeyB64 == "" {
		return nil, fmt.Errorf("FB_SERVICE_KEY is empty")
	}
	decoded, err := base64.StdEncoding.DecodeString(serviceKeyB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode firebase service key: %w", err)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(decoded))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}
	return &firebaseVerifier{client: client}, nil
}

func (v *firebaseVerifier) Verify(ctx context.Context, rawToken string) (*Principal, error) {
	token, err := v.client.VerifyIDToken(ctx, rawToken)
	if err != nil {
		return nil, common.Errorf("invalid id token: %w", common.ErrUnauthorized)
	}
	email, _ := token.Claims["email"].(string)
	email = model.NormalizeEmail(email)
	if email == "" {
		return nil, common.Errorf("id token carries no email: %w", common.ErrUnauthorized)
	}
	return &Principal{Email: email}, nil
}

package security

import (
	"contest_hub/internal/platform/config"
	"errors"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var (
	TokenAuth *jwtauth.JWTAuth
	tokenExp  time.Duration
)

func InitJWT() {
	Configure(config.AppConfig.JWTKey, config.AppConfig.JWTExp)
}

// Configure sets the signing key and token lifetime used by GenerateToken.
func Configure(key []byte, exp time.Duration) {
	TokenAuth = jwtauth.New("HS256", key, nil)
	tokenExp = exp
}

// GenerateToken issues a development token for email. Production deployments verify
// identity-provider tokens instead.
func GenerateToken(email string) (string, error) {
	if TokenAuth == nil {
		return "", errors.New("jwt auth is not initialized")
	}
	claims := jwt.MapClaims{
		"email": strings.ToLower(strings.TrimSpace(email)),
		"exp":   time.Now().Add(tokenExp).Unix(),
		"iat":   time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

func GetEmailFromClaims(claims map[string]interface{}) (string, error) {
	email, ok := claims["email"].(string)
	if !ok || strings.TrimSpace(email) == "" {
		return "", errors.New("email claim is missing or not a string")
	}
	return email, nil
}

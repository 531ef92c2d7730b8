package service

import (
	"contest_hub/internal/common"
	"contest_hub/internal/common/security"
	"contest_hub/internal/domain/model"
	"context"
	"fmt"
)

// AuthService issues locally signed tokens when the service runs without an external
// identity provider.
type AuthService struct {
	users *UserService
}

func NewAuthService(users *UserService) *AuthService {
	return &AuthService{users: users}
}

type TokenRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *AuthService) IssueToken(ctx context.Context, req TokenRequest) (*AuthResponse, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	user, _, err := s.users.EnsureUser(ctx, req.Email, CreateUserRequest{Name: req.Name, Photo: req.Photo})
	if err != nil {
		return nil, err
	}
	token, err := security.GenerateToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{User: user, Token: token}, nil
}

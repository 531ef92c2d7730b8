package service

import (
	"contest_hub/internal/common"
	"contest_hub/internal/domain/model"
	"contest_hub/internal/domain/repository"
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultUserListLimit = 5
	MaxUserListLimit     = 100
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

type CreateUserRequest struct {
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type UpdateProfileRequest struct {
	Name    *string `json:"name,omitempty"`
	Photo   *string `json:"photo,omitempty"`
	Bio     *string `json:"bio,omitempty"`
	Address *string `json:"address,omitempty"`
}

// EnsureUser stores the caller's user record on first sign-in. The boolean is false
// when a record already existed; the existing record is returned untouched.
func (s *UserService) EnsureUser(ctx context.Context, email string, req CreateUserRequest) (*model.User, bool, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return nil, false, common.Errorf("email is required: %w", common.ErrBadRequest)
	}
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, false, common.Errorf("failed to look up user: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      req.Name,
		Photo:     req.Photo,
		Role:      model.RoleUser, // Default role
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			// Concurrent first sign-in.
			existing, ferr := s.userRepo.FindByEmail(ctx, email)
			if ferr == nil {
				return existing, false, nil
			}
		}
		return nil, false, common.Errorf("failed to create user: %w", err)
	}
	log.Printf("INFO: User %s created", email)
	return user, true, nil
}

func (s *UserService) ListUsers(ctx context.Context, limit int) ([]model.User, error) {
	if limit <= 0 {
		limit = DefaultUserListLimit
	}
	if limit > MaxUserListLimit {
		limit = MaxUserListLimit
	}
	return s.userRepo.ListRecent(ctx, limit)
}

// GetRole returns the stored role, or RoleUser for unknown emails.
func (s *UserService) GetRole(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return model.RoleUser, nil
		}
		return "", common.Errorf("failed to look up role: %w", err)
	}
	return user.Role, nil
}

// UpdateRole sets the role of user id and returns the updated record.
func (s *UserService) UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (*model.User, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	if !model.IsValidRole(req.Role) {
		return nil, common.Errorf("unknown role %q: %w", req.Role, common.ErrValidation)
	}
	if err := s.userRepo.UpdateRole(ctx, id, req.Role); err != nil {
		return nil, common.Errorf("failed to update role of user %s: %w", id, err)
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, common.Errorf("failed to reload user %s: %w", id, err)
	}
	log.Printf("INFO: User %s (%s) role set to %s", id, user.Email, user.Role)
	return user, nil
}

// DecodeProfileUpdate reads a profile patch, refusing fields other than name, photo, bio and address.
func DecodeProfileUpdate(r io.Reader) (UpdateProfileRequest, error) {
	var req UpdateProfileRequest
	err := decodeStrict(r, &req)
	return req, err
}

func (s *UserService) UpdateProfile(ctx context.Context, email string, req UpdateProfileRequest) (*model.User, error) {
	upd := model.ProfileUpdate{Name: req.Name, Photo: req.Photo, Bio: req.Bio, Address: req.Address}
	if upd.IsEmpty() {
		return nil, common.Errorf("no profile fields supplied: %w", common.ErrBadRequest)
	}
	user, err := s.userRepo.UpdateProfile(ctx, model.NormalizeEmail(email), upd)
	if err != nil {
		return nil, common.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

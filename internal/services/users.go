package services

import (
	"context"
	"errors"
	"strings"

	"github.com/vaughan-dsouza/storerate/internal/apperr"
	"github.com/vaughan-dsouza/storerate/internal/auth"
	"github.com/vaughan-dsouza/storerate/internal/models"
	"github.com/vaughan-dsouza/storerate/internal/query"
	"github.com/vaughan-dsouza/storerate/internal/validation"
)

type CreateUserInput struct {
	Name     string      `json:"name" validate:"min=20,max=60"`
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"password"`
	Address  string      `json:"address" validate:"max=400"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=admin store_owner user"`
}

// UserService backs the admin user-management endpoints.
type UserService struct {
	users  UserRepository
	hasher *auth.PasswordHasher
}

func NewUserService(users UserRepository, hasher *auth.PasswordHasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (models.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if err := validation.Struct(in); err != nil {
		return models.User{}, err
	}

	return createUser(ctx, s.users, s.hasher, models.User{
		Name:    in.Name,
		Email:   in.Email,
		Address: in.Address,
		Role:    in.Role,
	}, in.Password)
}

func (s *UserService) List(ctx context.Context, req query.Request) ([]models.UserListing, error) {
	return s.users.List(ctx, query.Users.Build(req))
}

func (s *UserService) Get(ctx context.Context, id int64) (models.UserListing, error) {
	return s.users.GetListing(ctx, id)
}

// EnsureAdmin creates an admin account for email unless one is registered.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	_, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return false, err
	}

	_, err = s.Create(ctx, CreateUserInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
	})
	if errors.Is(err, apperr.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

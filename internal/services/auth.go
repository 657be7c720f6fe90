package services

import (
	"context"
	"errors"
	"strings"

	"github.com/vaughan-dsouza/storerate/internal/apperr"
	"github.com/vaughan-dsouza/storerate/internal/auth"
	"github.com/vaughan-dsouza/storerate/internal/models"
	"github.com/vaughan-dsouza/storerate/internal/validation"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = apperr.New(apperr.KindUnauthenticated, "invalid credentials")

type RegisterInput struct {
	Name     string `json:"name" validate:"min=20,max=60"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"password"`
	Address  string `json:"address" validate:"max=400"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User    models.User  `json:"user"`
	Token   string       `json:"token"`
	Session auth.Session `json:"-"`
}

type AuthService struct {
	users  UserRepository
	hasher *auth.PasswordHasher
	codec  *auth.TokenCodec
}

func NewAuthService(users UserRepository, hasher *auth.PasswordHasher, codec *auth.TokenCodec) *AuthService {
	return &AuthService{users: users, hasher: hasher, codec: codec}
}

// Register creates a plain user account and signs them in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	if err := validation.Struct(in); err != nil {
		return AuthResult{}, err
	}

	user, err := createUser(ctx, s.users, s.hasher, models.User{
		Name:    in.Name,
		Email:   in.Email,
		Address: in.Address,
		Role:    models.RoleUser,
	}, in.Password)
	if err != nil {
		return AuthResult{}, err
	}
	return s.signIn(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if !s.hasher.Verify(in.Password, user.Password) {
		return AuthResult{}, ErrInvalidCredentials
	}
	return s.signIn(user)
}

// UpdatePassword replaces the caller's own password.
func (s *AuthService) UpdatePassword(ctx context.Context, userID int64, password string) error {
	if err := validation.Password(password); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "hash password", err)
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

func (s *AuthService) Me(ctx context.Context, userID int64) (models.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) signIn(user models.User) (AuthResult, error) {
	token, session, err := s.codec.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Token: token, Session: session}, nil
}

// createUser checks the email is free, hashes the password and inserts the
// row. The unique constraint still decides races the pre-check cannot see.
func createUser(ctx context.Context, users UserRepository, hasher *auth.PasswordHasher, u models.User, password string) (models.User, error) {
	exists, err := users.EmailExists(ctx, u.Email)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, apperr.New(apperr.KindConflict, "user already exists")
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.KindInternal, "hash password", err)
	}
	u.Password = hash

	return users.Create(ctx, u)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Package service provides the implementation of account business logic.
package service

import (
	"context"
	"errors"
	"fmt"

	usererrors "github.com/akopato/storefront/internal/user/errors"
	"github.com/akopato/storefront/internal/user/store"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(subject, role string) (string, error)
}

// UserService defines the methods for managing accounts.
type UserService interface {
	// Register creates a new customer account.
	// Returns ErrUserAlreadyExists when the email is taken.
	Register(ctx context.Context, userDto RegisterDto) (*UserDto, error)

	// Login verifies credentials and returns a signed bearer token.
	// Returns ErrInvalidCredentials on a bad email or password.
	Login(ctx context.Context, creds LoginDto) (*SessionDto, error)

	// FindByID retrieves a user by its unique identifier.
	// Returns ErrUserNotFound if no user exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*UserDto, error)
}

// Service implements UserService.
type Service struct {
	repository store.UserStore
	issuer     TokenIssuer
}

// NewService creates a new instance of UserService with the provided repository and issuer.
func NewService(repo store.UserStore, issuer TokenIssuer) *Service {
	return &Service{
		repository: repo,
		issuer:     issuer,
	}
}

// RegisterDto represents the data transfer object for creating an account.
type RegisterDto struct {
	Email    string `json:"email"    validate:"required,email"`
	Name     string `json:"name"     validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginDto represents the data transfer object for a login attempt.
type LoginDto struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserDto represents the data transfer object for an account.
type UserDto struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// SessionDto couples a signed token with the account it identifies.
type SessionDto struct {
	Token string  `json:"token"`
	User  UserDto `json:"user"`
}

// Register creates a customer account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, userDto RegisterDto) (*UserDto, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(userDto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repository.Create(ctx, userDto.Email, userDto.Name, string(hash), store.RoleCustomer)
	if err != nil {
		return nil, fmt.Errorf("failed to register user %s: %w", userDto.Email, err)
	}
	return toDto(user), nil
}

// Login verifies the credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, creds LoginDto) (*SessionDto, error) {
	user, err := s.repository.FindByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, usererrors.ErrUserNotFound) {
			return nil, usererrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, usererrors.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID.String(), user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &SessionDto{Token: token, User: *toDto(user)}, nil
}

// FindByID retrieves an account by its ID.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*UserDto, error) {
	user, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user by ID %s: %w", id, err)
	}
	return toDto(user), nil
}

// toDto converts a store.User to a UserDto. The password hash never leaves the service.
func toDto(user *store.User) *UserDto {
	return &UserDto{
		ID:    user.ID.String(),
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}
}

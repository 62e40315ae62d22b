// Package store provides an interface for user storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role values gate access to the administration routes.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is the persisted shape of an account.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// UserStore is an interface for user storage operations.
type UserStore interface {
	// Create adds a new user account.
	// Returns ErrUserAlreadyExists when the email is taken.
	Create(ctx context.Context, email, name, passwordHash, role string) (*User, error)

	// FindByEmail retrieves a user by email.
	// Returns ErrUserNotFound if no user exists with the given email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByID retrieves a user by its unique identifier.
	// Returns ErrUserNotFound if no user exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
}

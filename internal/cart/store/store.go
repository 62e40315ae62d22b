// Package store provides an interface for cart storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CartItem is one product line in a user's cart.
type CartItem struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	CreatedAt time.Time
}

// CartStore is an interface for cart storage operations.
type CartStore interface {
	// ItemsByUser returns all cart lines for the user, oldest first.
	// Returns an empty slice for an empty cart.
	ItemsByUser(ctx context.Context, userID uuid.UUID) ([]CartItem, error)

	// Upsert sets the quantity for a product line, inserting it if absent.
	Upsert(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*CartItem, error)

	// Remove deletes a product line.
	// Returns ErrItemNotFound if the line does not exist.
	Remove(ctx context.Context, userID, productID uuid.UUID) error

	// Clear empties the user's cart.
	Clear(ctx context.Context, userID uuid.UUID) error
}

// Package store provides an interface for order storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Order status values.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// Order is the persisted shape of an order.
type Order struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Status     string
	TotalPrice int64
	Version    int32
	CreatedAt  time.Time
}

// OrderItem is one product line of an order, priced at purchase time.
type OrderItem struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	ProductID    uuid.UUID
	Quantity     int32
	PricePerItem int64
	Price        int64
}

// CreateItemParams carries one line of a new order.
type CreateItemParams struct {
	ProductID    uuid.UUID
	Quantity     int32
	PricePerItem int64
	Price        int64
}

// ListParams slices a user's order history.
type ListParams struct {
	UserID uuid.UUID
	Offset int32
	Limit  int32
}

// OrderStore is an interface for order storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type OrderStore interface {
	// FindByID retrieves a single order with its lines.
	// Returns ErrOrderNotFound if no order exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Order, []OrderItem, error)

	// FindOrdersByUserID returns the user's orders, newest first.
	// Returns an empty slice if no orders exist.
	FindOrdersByUserID(ctx context.Context, params ListParams) ([]Order, error)

	// CreateOrder atomically inserts the order with its lines and decrements
	// product stock. Returns ErrInsufficientStock when any product cannot
	// cover its requested quantity.
	CreateOrder(ctx context.Context, userID uuid.UUID, totalPrice int64, items []CreateItemParams) (*Order, []OrderItem, error)

	// UpdateStatus changes the order's status, gated by version.
	// Returns ErrOrderNotFound or ErrOptimisticLock accordingly.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, version int32) (*Order, error)
}

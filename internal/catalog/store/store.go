// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product is the persisted shape of a catalog product.
type Product struct {
	ID            uuid.UUID
	Name          string
	Description   string
	Price         int64
	StockQuantity int32
	Category      string
	Brand         string
	ImageURLs     []string
	Version       int32
	CreatedAt     time.Time
}

// ListParams narrows and slices the product listing.
type ListParams struct {
	Offset int32
	Limit  int32
	// Search is a case-insensitive substring match on the product name.
	Search string
	// Category is an exact category filter. Empty means all categories.
	Category string
}

// CreateParams carries the fields of a new product.
type CreateParams struct {
	Name        string
	Description string
	Price       int64
	Stock       int32
	Category    string
	Brand       string
	ImageURLs   []string
}

// UpdateParams carries a full product replacement, gated by Version.
type UpdateParams struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       int64
	Stock       int32
	Category    string
	Brand       string
	ImageURLs   []string
	Version     int32
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// List returns one page of products plus the total count for the same
	// filter. Rows are ordered by creation time then ID so pages stay
	// stable as products are inserted.
	List(ctx context.Context, params ListParams) ([]Product, int64, error)

	// Create adds a new product to the system.
	// Returns error if the product cannot be created.
	Create(ctx context.Context, params CreateParams) (*Product, error)

	// Update modifies an existing product's details.
	// Returns ErrProductNotFound if no product exists with the given ID and version.
	Update(ctx context.Context, params UpdateParams) (*Product, error)

	// UpdateStock adjusts the stock quantity of a product.
	// Returns ErrProductNotFound if no product exists with the given ID and version.
	UpdateStock(ctx context.Context, id uuid.UUID, stock int32, version int32) (*Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID and version.
	DeleteByID(ctx context.Context, id uuid.UUID, version int32) error
}

// Package service provides the implementation of cart business logic.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/akopato/storefront/internal/cart/store"
	catalogerrors "github.com/akopato/storefront/internal/catalog/errors"
	catalogservice "github.com/akopato/storefront/internal/catalog/service"
	"github.com/google/uuid"
)

// CartService defines the methods for managing the shopping cart.
type CartService interface {
	// Get returns the user's cart, priced against the current catalog.
	Get(ctx context.Context, userID uuid.UUID) (*CartDto, error)

	// SetItem sets a product line's quantity, adding the line if absent.
	// Returns ErrProductNotFound when the product does not exist.
	SetItem(ctx context.Context, userID uuid.UUID, item ItemSetDto) (*CartDto, error)

	// RemoveItem deletes a product line.
	// Returns ErrItemNotFound if the line does not exist.
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error

	// Clear empties the user's cart.
	Clear(ctx context.Context, userID uuid.UUID) error
}

// Service implements CartService and prices lines against the catalog.
type Service struct {
	repository store.CartStore
	catalog    catalogservice.CatalogService
}

// NewService creates a new instance of CartService with the provided repository and catalog.
func NewService(repo store.CartStore, catalog catalogservice.CatalogService) *Service {
	return &Service{
		repository: repo,
		catalog:    catalog,
	}
}

// ItemSetDto represents the data transfer object for setting a cart line.
type ItemSetDto struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int32     `json:"quantity"   validate:"required,min=1"`
}

// ItemDto is one cart line with a snapshot of its product.
type ItemDto struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Quantity  int32     `json:"quantity"`
	ImageURL  string    `json:"image_url,omitempty"`
}

// CartDto is the full cart with a computed total.
type CartDto struct {
	Items []ItemDto `json:"items"`
	Total int64     `json:"total"`
}

// Get returns the user's cart priced against the current catalog.
// Lines whose product was deleted from the catalog are skipped.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*CartDto, error) {
	items, err := s.repository.ItemsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart for user %s: %w", userID, err)
	}

	cart := &CartDto{Items: make([]ItemDto, 0, len(items))}
	for _, item := range items {
		product, err := s.catalog.FindByID(ctx, item.ProductID)
		if errors.Is(err, catalogerrors.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to price cart line %s: %w", item.ProductID, err)
		}
		line := ItemDto{
			ProductID: item.ProductID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
		}
		if len(product.ImageURLs) > 0 {
			line.ImageURL = product.ImageURLs[0]
		}
		cart.Items = append(cart.Items, line)
		cart.Total += product.Price * int64(item.Quantity)
	}
	return cart, nil
}

// SetItem sets a product line's quantity, adding the line if absent.
func (s *Service) SetItem(ctx context.Context, userID uuid.UUID, item ItemSetDto) (*CartDto, error) {
	// The product must exist before it can enter a cart.
	if _, err := s.catalog.FindByID(ctx, item.ProductID); err != nil {
		return nil, fmt.Errorf("failed to verify product %s: %w", item.ProductID, err)
	}
	if _, err := s.repository.Upsert(ctx, userID, item.ProductID, item.Quantity); err != nil {
		return nil, fmt.Errorf("failed to set cart item: %w", err)
	}
	return s.Get(ctx, userID)
}

// RemoveItem deletes a product line.
func (s *Service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return s.repository.Remove(ctx, userID, productID)
}

// Clear empties the user's cart.
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.repository.Clear(ctx, userID)
}

// Package service provides the implementation of catalog business logic.
package service

import (
	"context"
	"fmt"

	catalogerrors "github.com/akopato/storefront/internal/catalog/errors"
	"github.com/akopato/storefront/internal/catalog/store"
	"github.com/google/uuid"
)

// CatalogService defines the methods for managing the product catalog.
// It abstracts the underlying business logic and data access.
type CatalogService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)

	// List returns one page of products with pagination metadata.
	// Returns ErrInvalidPage when page or pageSize is not positive.
	List(ctx context.Context, page, pageSize int32, search, category string) (*ProductPageDto, error)

	// Create adds a new product to the system.
	// Returns ErrNoImages when the product carries no image locators.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update modifies an existing product's details.
	// Returns ErrProductNotFound if no product exists with the given ID and version.
	Update(ctx context.Context, product ProductDto) (*ProductDto, error)

	// UpdateStock adjusts the stock quantity of a product.
	// Returns ErrProductNotFound if no product exists with the given ID and version.
	UpdateStock(ctx context.Context, id uuid.UUID, stock int32, version int32) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID, version int32) error
}

// Service implements CatalogService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
}

// NewService creates a new instance of CatalogService with the provided repository.
func NewService(repo store.ProductStore) *Service {
	return &Service{
		repository: repo,
	}
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Name        string   `json:"name"        validate:"required,max=100"`
	Description string   `json:"description" validate:"max=2000"`
	Price       int64    `json:"price"       validate:"required,min=0"`
	Stock       int32    `json:"stock"       validate:"min=0"`
	Category    string   `json:"category"    validate:"required,max=50"`
	Brand       string   `json:"brand"       validate:"max=100"`
	ImageURLs   []string `json:"image_urls"  validate:"required,gt=0,dive,required,url"`
}

// ProductDto represents the data transfer object for a product.
// Version is read-only and used for optimistic concurrency control.
type ProductDto struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"        validate:"required,max=100"`
	Description string   `json:"description" validate:"max=2000"`
	Price       int64    `json:"price"       validate:"required,min=0"`
	Stock       int32    `json:"stock"       validate:"min=0"`
	Category    string   `json:"category"    validate:"required,max=50"`
	Brand       string   `json:"brand"       validate:"max=100"`
	ImageURLs   []string `json:"image_urls"  validate:"required,gt=0,dive,required,url"`
	Version     int32    `json:"version"     validate:"required,min=1"`
}

// StockUpdateDto represents the data transfer object for updating product stock.
type StockUpdateDto struct {
	Stock   int32 `json:"stock"   validate:"min=0"`
	Version int32 `json:"version" validate:"required,min=1"`
}

// ProductPageDto is one page of the catalog listing.
type ProductPageDto struct {
	Products    []ProductDto `json:"products"`
	Total       int64        `json:"total"`
	CurrentPage int32        `json:"currentPage"`
	TotalPages  int32        `json:"totalPages"`
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return toDto(product), nil
}

// List retrieves one catalog page and its pagination metadata.
// A page past the end of the collection yields an empty product slice with
// the correct total. An empty catalog still reports one page.
func (s *Service) List(ctx context.Context, page, pageSize int32, search, category string) (*ProductPageDto, error) {
	if page < 1 || pageSize < 1 {
		return nil, fmt.Errorf("page=%d pageSize=%d: %w", page, pageSize, catalogerrors.ErrInvalidPage)
	}

	products, total, err := s.repository.List(ctx, store.ListParams{
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
		Search:   search,
		Category: category,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	productDTOs := make([]ProductDto, len(products))
	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}

	totalPages := int32((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}

	return &ProductPageDto{
		Products:    productDTOs,
		Total:       total,
		CurrentPage: page,
		TotalPages:  totalPages,
	}, nil
}

// Create creates a new product and returns it as a ProductDto.
// Returns ErrNoImages when the product carries no image locators.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	if len(product.ImageURLs) == 0 {
		return nil, catalogerrors.ErrNoImages
	}
	p, err := s.repository.Create(ctx, store.CreateParams{
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		Category:    product.Category,
		Brand:       product.Brand,
		ImageURLs:   product.ImageURLs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return toDto(p), nil
}

// Update modifies an existing product's details and returns the updated product as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID and version.
func (s *Service) Update(ctx context.Context, product ProductDto) (*ProductDto, error) {
	id, err := uuid.Parse(product.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid product ID %q: %w", product.ID, err)
	}
	updated, err := s.repository.Update(ctx, store.UpdateParams{
		ID:          id,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		Category:    product.Category,
		Brand:       product.Brand,
		ImageURLs:   product.ImageURLs,
		Version:     product.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", product.ID, err)
	}
	return toDto(updated), nil
}

// UpdateStock adjusts the stock quantity of a product and returns the updated product as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID and version.
func (s *Service) UpdateStock(ctx context.Context, id uuid.UUID, stock int32, version int32) (*ProductDto, error) {
	product, err := s.repository.UpdateStock(ctx, id, stock, version)
	if err != nil {
		return nil, fmt.Errorf("failed to update stock for product with ID %s: %w", id, err)
	}
	return toDto(product), nil
}

// DeleteByID deletes a product by its ID.
// Returns ErrProductNotFound if no product exists with the given ID and version.
func (s *Service) DeleteByID(ctx context.Context, id uuid.UUID, version int32) error {
	return s.repository.DeleteByID(ctx, id, version)
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.StockQuantity,
		Category:    product.Category,
		Brand:       product.Brand,
		ImageURLs:   product.ImageURLs,
		Version:     product.Version,
	}
}

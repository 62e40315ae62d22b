// Package service provides the implementation of order business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cartservice "github.com/akopato/storefront/internal/cart/service"
	ordererrors "github.com/akopato/storefront/internal/order/errors"
	"github.com/akopato/storefront/internal/order/store"
	"github.com/akopato/storefront/pkg/messaging"
	"github.com/akopato/storefront/pkg/messaging/events"
	"github.com/google/uuid"
)

// OrderService defines the methods for managing orders.
type OrderService interface {
	// CreateFromCart converts the user's cart into a pending order.
	// Returns ErrEmptyCart when the cart has no lines and
	// ErrInsufficientStock when stock cannot cover a line.
	CreateFromCart(ctx context.Context, userID uuid.UUID) (*OrderDto, error)

	// FindByID retrieves an order visible to the requesting user.
	// Returns ErrOrderNotFound if no such order exists and ErrAccessDenied
	// when the order belongs to another user and the requester is not an admin.
	FindByID(ctx context.Context, id, requesterID uuid.UUID, admin bool) (*OrderDto, error)

	// FindOrdersByUserID returns one page of the user's order history.
	FindOrdersByUserID(ctx context.Context, userID uuid.UUID, page, pageSize int32) ([]OrderDto, error)

	// UpdateStatus changes the order status.
	// Returns ErrOrderNotFound or ErrOptimisticLock accordingly.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, version int32) (*OrderDto, error)
}

// Service implements OrderService on top of the order store and the cart.
type Service struct {
	repository store.OrderStore
	cart       cartservice.CartService
	publisher  messaging.Publisher
	logger     *slog.Logger
}

// NewService creates a new instance of OrderService.
func NewService(repo store.OrderStore, cart cartservice.CartService, publisher messaging.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repository: repo,
		cart:       cart,
		publisher:  publisher,
		logger:     logger,
	}
}

// ItemDto is one line of an order.
type ItemDto struct {
	ProductID    uuid.UUID `json:"product_id"`
	Quantity     int32     `json:"quantity"`
	PricePerItem int64     `json:"price_per_item"`
	Price        int64     `json:"price"`
}

// OrderDto represents the data transfer object for an order.
type OrderDto struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Status     string    `json:"status"`
	TotalPrice int64     `json:"total_price"`
	Items      []ItemDto `json:"items,omitempty"`
	Version    int32     `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
}

// StatusUpdateDto represents the data transfer object for changing an order's status.
type StatusUpdateDto struct {
	Status  string `json:"status"  validate:"required,oneof=pending paid shipped delivered cancelled"`
	Version int32  `json:"version" validate:"required,min=1"`
}

// CreateFromCart converts the user's cart into a pending order.
// Prices are taken from the cart snapshot, stock is decremented atomically
// and the cart is cleared on success. An orders.created event is published
// after the order is committed; publish failures are logged, not returned.
func (s *Service) CreateFromCart(ctx context.Context, userID uuid.UUID) (*OrderDto, error) {
	cart, err := s.cart.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart for user %s: %w", userID, err)
	}
	if len(cart.Items) == 0 {
		return nil, ordererrors.ErrEmptyCart
	}

	items := make([]store.CreateItemParams, len(cart.Items))
	for i, line := range cart.Items {
		items[i] = store.CreateItemParams{
			ProductID:    line.ProductID,
			Quantity:     line.Quantity,
			PricePerItem: line.Price,
			Price:        line.Price * int64(line.Quantity),
		}
	}

	order, orderItems, err := s.repository.CreateOrder(ctx, userID, cart.Total, items)
	if err != nil {
		return nil, fmt.Errorf("failed to create order for user %s: %w", userID, err)
	}

	if err := s.cart.Clear(ctx, userID); err != nil {
		// The order is already committed; a stale cart is recoverable.
		s.logger.ErrorContext(ctx, "failed to clear cart after order creation",
			"order_id", order.ID, "user_id", userID, "error", err)
	}

	event := events.OrderCreatedEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		CreatedAt:  order.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order created event",
			"order_id", order.ID, "error", err)
	}

	return toDto(order, orderItems), nil
}

// FindByID retrieves an order, enforcing ownership for non-admin requesters.
func (s *Service) FindByID(ctx context.Context, id, requesterID uuid.UUID, admin bool) (*OrderDto, error) {
	order, items, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order %s: %w", id, err)
	}
	if !admin && order.UserID != requesterID {
		return nil, ordererrors.ErrAccessDenied
	}
	return toDto(order, items), nil
}

// FindOrdersByUserID returns one page of the user's order history, newest first.
func (s *Service) FindOrdersByUserID(ctx context.Context, userID uuid.UUID, page, pageSize int32) ([]OrderDto, error) {
	orders, err := s.repository.FindOrdersByUserID(ctx, store.ListParams{
		UserID: userID,
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders for user %s: %w", userID, err)
	}

	dtos := make([]OrderDto, len(orders))
	for i := range orders {
		dtos[i] = *toDto(&orders[i], nil)
	}
	return dtos, nil
}

// UpdateStatus changes the order status, gated by version.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string, version int32) (*OrderDto, error) {
	order, err := s.repository.UpdateStatus(ctx, id, status, version)
	if err != nil {
		return nil, fmt.Errorf("failed to update order %s: %w", id, err)
	}
	return toDto(order, nil), nil
}

func toDto(order *store.Order, items []store.OrderItem) *OrderDto {
	dto := &OrderDto{
		ID:         order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		TotalPrice: order.TotalPrice,
		Version:    order.Version,
		CreatedAt:  order.CreatedAt,
	}
	for _, item := range items {
		dto.Items = append(dto.Items, ItemDto{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			PricePerItem: item.PricePerItem,
			Price:        item.Price,
		})
	}
	return dto
}

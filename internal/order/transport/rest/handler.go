// Package rest provides HTTP handlers for order operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	ordererrors "github.com/akopato/storefront/internal/order/errors"
	"github.com/akopato/storefront/internal/order/service"
	userstore "github.com/akopato/storefront/internal/user/store"
	"github.com/akopato/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  service.OrderService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the order API with the provided service.
func NewHandler(service service.OrderService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for orders. Status changes are admin only.
func (h *Handler) RegisterRoutes(r *chi.Mux, authed, adminOnly func(http.Handler) http.Handler) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(authed)
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.FindByID)
		r.With(adminOnly).Put("/{id}/status", h.UpdateStatus)
	})
}

// Create converts the authenticated user's cart into an order.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.UserID(w, r, mLogger)
	if !ok {
		return
	}

	order, err := h.service.CreateFromCart(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, ordererrors.ErrEmptyCart):
			web.RespondError(w, mLogger, http.StatusBadRequest, "Cart is empty")
		case errors.Is(err, ordererrors.ErrInsufficientStock):
			mLogger.WarnContext(r.Context(), "Order rejected for insufficient stock", "user_id", userID, "error", err)
			web.RespondError(w, mLogger, http.StatusConflict, "Insufficient stock for one or more products")
		default:
			mLogger.ErrorContext(r.Context(), "Error creating order", "user_id", userID, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create order")
		}
		return
	}
	web.RespondJSON(w, mLogger, http.StatusCreated, order)
}

// List returns one page of the authenticated user's order history.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.UserID(w, r, mLogger)
	if !ok {
		return
	}
	page, ok := web.ParseValidateGtDefault(r, w, mLogger, "page", 0, 1)
	if !ok {
		return
	}
	limit, ok := web.ParseValidateGtDefault(r, w, mLogger, "limit", 0, 10)
	if !ok {
		return
	}

	orders, err := h.service.FindOrdersByUserID(r.Context(), userID, page, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error listing orders", "user_id", userID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, orders)
}

// FindByID returns one order. Admins may read any order, users only their own.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.UserID(w, r, mLogger)
	if !ok {
		return
	}
	orderID, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	admin := web.ContextUserRole(r.Context()) == userstore.RoleAdmin

	order, err := h.service.FindByID(r.Context(), orderID, userID, admin)
	if err != nil {
		switch {
		case errors.Is(err, ordererrors.ErrOrderNotFound):
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Order with ID %s not found", orderID))
		case errors.Is(err, ordererrors.ErrAccessDenied):
			mLogger.WarnContext(r.Context(), "Order access denied", "order_id", orderID, "user_id", userID)
			web.RespondError(w, mLogger, http.StatusForbidden, "Forbidden")
		default:
			mLogger.ErrorContext(r.Context(), "Error retrieving order", "order_id", orderID, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch order")
		}
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, order)
}

// UpdateStatus changes an order's status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	orderID, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var dto service.StatusUpdateDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return
		}
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), orderID, dto.Status, dto.Version)
	if err != nil {
		switch {
		case errors.Is(err, ordererrors.ErrOrderNotFound):
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Order with ID %s not found", orderID))
		case errors.Is(err, ordererrors.ErrOptimisticLock):
			web.RespondError(w, mLogger, http.StatusConflict, "Order was modified concurrently, reload and retry")
		default:
			mLogger.ErrorContext(r.Context(), "Error updating order status", "order_id", orderID, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to update order")
		}
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, order)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}

// Package rest provides HTTP handlers for cart operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	carterrors "github.com/akopato/storefront/internal/cart/errors"
	"github.com/akopato/storefront/internal/cart/service"
	catalogerrors "github.com/akopato/storefront/internal/catalog/errors"
	"github.com/akopato/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  service.CartService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the cart API with the provided service.
func NewHandler(service service.CartService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the cart. All routes require auth.
func (h *Handler) RegisterRoutes(r *chi.Mux, authed func(http.Handler) http.Handler) {
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(authed)
		r.Get("/", h.Get)
		r.Delete("/", h.Clear)
		r.Put("/items", h.SetItem)
		r.Delete("/items/{id}", h.RemoveItem)
	})
}

// Get returns the authenticated user's cart.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.UserID(w, r, mLogger)
	if !ok {
		return
	}

	cart, err := h.service.Get(r.Context(), userID)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving cart", "user_id", userID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, cart)
}

// SetItem sets a product line's quantity in the cart.
func (h *Handler) SetItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.UserID(w, r, mLogger)
	if !ok {
		return
	}
	var itemDto service.ItemSetDto
	if err := json.NewDecoder(r.Body).Decode(&itemDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(itemDto); err != nil {
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

	cart, err := h.service.SetItem(r.Context(), userID, itemDto)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Cart add for unknown product", "product_id", itemDto.ProductID)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", itemDto.ProductID))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error setting cart item", "user_id", userID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to update cart")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, cart)
}

// RemoveItem deletes a product line from the cart.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.UserID(w, r, mLogger)
	if !ok {
		return
	}
	productID, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	if err := h.service.RemoveItem(r.Context(), userID, productID); err != nil {
		if errors.Is(err, carterrors.ErrItemNotFound) {
			web.RespondError(w, mLogger, http.StatusNotFound, "Cart item not found")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error removing cart item", "user_id", userID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to update cart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear empties the authenticated user's cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.UserID(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.service.Clear(r.Context(), userID); err != nil {
		mLogger.ErrorContext(r.Context(), "Error clearing cart", "user_id", userID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to clear cart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}

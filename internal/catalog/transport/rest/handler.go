// Package rest provides HTTP handlers for catalog operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	catalogerrors "github.com/akopato/storefront/internal/catalog/errors"
	"github.com/akopato/storefront/internal/catalog/service"
	mediaservice "github.com/akopato/storefront/internal/media/service"
	"github.com/akopato/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// maxUploadBytes bounds a single product-create request body.
const maxUploadBytes = 32 << 20

const (
	defaultPage     = 1
	defaultPageSize = 10
)

type Handler struct {
	service  service.CatalogService
	media    mediaservice.MediaService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the catalog API with the provided services.
func NewHandler(service service.CatalogService, media mediaservice.MediaService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		media:    media,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog.
// adminOnly gates the mutating routes behind the admin role.
func (h *Handler) RegisterRoutes(r *chi.Mux, adminOnly func(http.Handler) http.Handler) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.FindByID)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Put("/{id}/stock", h.UpdateStock)
			r.Delete("/{id}", h.DeleteByID)
		})
	})
}

// List retrieves one page of the catalog, optionally filtered.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	page, ok := web.ParseValidateGtDefault(r, w, mLogger, "page", 0, defaultPage)
	if !ok {
		return
	}
	limit, ok := web.ParseValidateGtDefault(r, w, mLogger, "limit", 0, defaultPageSize)
	if !ok {
		return
	}
	search := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")

	mLogger.DebugContext(r.Context(), "Received request to list products",
		"page", page, "limit", limit, "search", search, "category", category)
	listing, err := h.service.List(r.Context(), page, limit, search, category)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrInvalidPage) {
			web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid pagination parameters")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list",
		"count", len(listing.Products), "total", listing.Total)
	web.RespondJSON(w, mLogger, http.StatusOK, listing)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Create handles the creation of a new product from a multipart form.
// Attached images are uploaded to the remote storage first; the product
// record stores the locators the storage assigned.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		mLogger.ErrorContext(r.Context(), "Error parsing multipart form", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		mLogger.WarnContext(r.Context(), "Product create without images rejected")
		web.RespondError(w, mLogger, http.StatusBadRequest, "At least one image is required")
		return
	}

	price, err := strconv.ParseInt(r.FormValue("price"), 10, 64)
	if err != nil {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid price")
		return
	}
	stock, err := strconv.ParseInt(r.FormValue("stock"), 10, 32)
	if err != nil {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid stock")
		return
	}

	locators := make([]string, 0, len(files))
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			mLogger.ErrorContext(r.Context(), "Error opening uploaded file", "file", fileHeader.Filename, "error", err)
			web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid image attachment")
			return
		}
		content, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			mLogger.ErrorContext(r.Context(), "Error reading uploaded file", "file", fileHeader.Filename, "error", err)
			web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid image attachment")
			return
		}
		locator, err := h.media.UploadImage(r.Context(), fileHeader.Filename, content)
		if err != nil {
			mLogger.ErrorContext(r.Context(), "Error uploading image to storage", "file", fileHeader.Filename, "error", err)
			web.RespondError(w, mLogger, http.StatusBadGateway, "Failed to store product image")
			return
		}
		locators = append(locators, locator)
	}

	productCreateDto := service.ProductCreateDto{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
		Stock:       int32(stock),
		Category:    r.FormValue("category"),
		Brand:       r.FormValue("brand"),
		ImageURLs:   locators,
	}
	if !h.validateDto(w, r, mLogger, productCreateDto) {
		return
	}

	newProduct, err := h.service.Create(r.Context(), productCreateDto)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNoImages) {
			web.RespondError(w, mLogger, http.StatusBadRequest, "At least one image is required")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID, "Name", newProduct.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, newProduct)
}

// Update replaces an existing product's details.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var productDTO service.ProductDto
	if err := json.NewDecoder(r.Body).Decode(&productDTO); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	productDTO.ID = id.String()
	if !h.validateDto(w, r, mLogger, productDTO) {
		return
	}

	updated, err := h.service.Update(r.Context(), productDTO)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for update", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error updating product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// UpdateStock adjusts the stock quantity of a product.
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var stockUpdateDTO service.StockUpdateDto
	if err := json.NewDecoder(r.Body).Decode(&stockUpdateDTO); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateDto(w, r, mLogger, stockUpdateDTO) {
		return
	}

	updated, err := h.service.UpdateStock(r.Context(), id, stockUpdateDTO.Stock, stockUpdateDTO.Version)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for stock update", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error updating stock for product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update stock for product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Stock updated successfully for product", "ID", updated.ID, "NewStock", updated.Stock)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteByID deletes a product by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	version, ok := web.ParseValidateGte(r, w, mLogger, "version", 1)
	if !ok {
		return
	}
	if err := h.service.DeleteByID(r.Context(), id, version); err != nil {
		if errors.Is(err, catalogerrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for deletion", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// validateDto runs struct validation and writes the field-error payload on failure.
func (h *Handler) validateDto(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dto any) bool {
	if err := h.validate.Struct(dto); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}

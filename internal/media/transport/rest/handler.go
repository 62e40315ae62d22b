// Package rest provides HTTP handlers for image proxying.
package rest

import (
	"errors"
	"log/slog"
	"net/http"

	mediaerrors "github.com/akopato/storefront/internal/media/errors"
	"github.com/akopato/storefront/internal/media/service"
	"github.com/akopato/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handler struct {
	service service.MediaService
	logger  *slog.Logger
}

// NewHandler creates a new instance of the image proxy API with the provided service.
func NewHandler(service service.MediaService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the image proxy.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Get("/api/v1/image-data", h.ImageData)
}

// imageDataResponse is the payload envelope the storefront client expects.
type imageDataResponse struct {
	Success   bool   `json:"success"`
	ImageData string `json:"imageData"`
}

// ImageData resolves a remote image locator into an inline payload.
func (h *Handler) ImageData(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	locator := r.URL.Query().Get("url")
	if locator == "" {
		web.RespondError(w, mLogger, http.StatusBadRequest, "url parameter is required")
		return
	}

	mLogger.DebugContext(r.Context(), "Received request for image data", "locator", locator)
	payload, err := h.service.ImageData(r.Context(), locator)
	if err != nil {
		switch {
		case errors.Is(err, mediaerrors.ErrUnknownLocator):
			mLogger.WarnContext(r.Context(), "Locator outside storage namespace", "locator", locator)
			web.RespondError(w, mLogger, http.StatusBadRequest, "url is not a recognized storage locator")
		case errors.Is(err, mediaerrors.ErrObjectNotFound):
			mLogger.WarnContext(r.Context(), "Remote object not found", "locator", locator)
			web.RespondError(w, mLogger, http.StatusNotFound, "image not found in storage")
		default:
			mLogger.ErrorContext(r.Context(), "Error fetching image", "locator", locator, "error", err)
			web.RespondError(w, mLogger, http.StatusBadGateway, "Failed to fetch image")
		}
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully resolved image", "locator", locator, "bytes", len(payload))
	web.RespondJSON(w, mLogger, http.StatusOK, imageDataResponse{Success: true, ImageData: payload})
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}

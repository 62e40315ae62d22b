// Package rest provides HTTP handlers for account operations.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	usererrors "github.com/akopato/storefront/internal/user/errors"
	"github.com/akopato/storefront/internal/user/service"
	"github.com/akopato/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  service.UserService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the accounts API with the provided service.
func NewHandler(service service.UserService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for accounts.
// authed wraps routes that require a valid bearer token.
func (h *Handler) RegisterRoutes(r *chi.Mux, authed func(http.Handler) http.Handler) {
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(authed)
			r.Get("/me", h.Me)
		})
	})
}

// Register creates a new customer account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var registerDto service.RegisterDto
	if err := json.NewDecoder(r.Body).Decode(&registerDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateDto(w, r, mLogger, registerDto) {
		return
	}

	user, err := h.service.Register(r.Context(), registerDto)
	if err != nil {
		if errors.Is(err, usererrors.ErrUserAlreadyExists) {
			mLogger.WarnContext(r.Context(), "Registration for taken email", "email", registerDto.Email)
			web.RespondError(w, mLogger, http.StatusConflict, "Email is already registered")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error registering user", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to register user")
		return
	}
	mLogger.InfoContext(r.Context(), "User registered successfully", "ID", user.ID)
	web.RespondJSON(w, mLogger, http.StatusCreated, user)
}

// Login verifies credentials and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var loginDto service.LoginDto
	if err := json.NewDecoder(r.Body).Decode(&loginDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateDto(w, r, mLogger, loginDto) {
		return
	}

	session, err := h.service.Login(r.Context(), loginDto)
	if err != nil {
		if errors.Is(err, usererrors.ErrInvalidCredentials) {
			mLogger.WarnContext(r.Context(), "Failed login attempt", "email", loginDto.Email)
			web.RespondError(w, mLogger, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error logging user in", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to log in")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, session)
}

// Me returns the account of the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.UserID(w, r, mLogger)
	if !ok {
		return
	}

	user, err := h.service.FindByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, usererrors.ErrUserNotFound) {
			web.RespondError(w, mLogger, http.StatusNotFound, "User not found")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving user", "ID", userID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to retrieve user")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, user)
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

package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	usererrors "github.com/akopato/storefront/internal/user/errors"
	"github.com/akopato/storefront/internal/user/service"
	userstore "github.com/akopato/storefront/internal/user/store"
	"github.com/akopato/storefront/pkg/web"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// mockUserService is a mock implementation of the UserService interface
type mockUserService struct {
	user    *service.UserDto
	session *service.SessionDto
	error   error
}

func (m *mockUserService) Register(_ context.Context, _ service.RegisterDto) (*service.UserDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.user, nil
}

func (m *mockUserService) Login(_ context.Context, _ service.LoginDto) (*service.SessionDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.session, nil
}

func (m *mockUserService) FindByID(_ context.Context, _ uuid.UUID) (*service.UserDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.user, nil
}

func newTestHandler(s *mockUserService) *Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewHandler(s, logger)
}

func Test_UserAPI_Register(t *testing.T) {
	mockUserID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")
	validBody := `{"email":"ada@example.com","name":"Ada","password":"correct horse"}`
	testCases := []struct {
		name         string
		mockService  mockUserService
		body         string
		expectedCode int
	}{
		{
			name: "Success - account created",
			mockService: mockUserService{
				user: &service.UserDto{ID: mockUserID.String(), Email: "ada@example.com", Name: "Ada", Role: userstore.RoleCustomer},
			},
			body:         validBody,
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Error - email already registered",
			mockService:  mockUserService{error: usererrors.ErrUserAlreadyExists},
			body:         validBody,
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Error - malformed body",
			mockService:  mockUserService{},
			body:         `{"email":`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - short password rejected",
			mockService:  mockUserService{},
			body:         `{"email":"ada@example.com","name":"Ada","password":"short"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - service failure",
			mockService:  mockUserService{error: errors.New("store down")},
			body:         validBody,
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			// when
			api.Register(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}

func Test_UserAPI_Login(t *testing.T) {
	mockUserID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")
	validBody := `{"email":"ada@example.com","password":"correct horse"}`
	testCases := []struct {
		name         string
		mockService  mockUserService
		body         string
		expectedCode int
		expectToken  string
	}{
		{
			name: "Success - session issued",
			mockService: mockUserService{
				session: &service.SessionDto{
					Token: "signed-token",
					User:  service.UserDto{ID: mockUserID.String(), Email: "ada@example.com", Role: userstore.RoleCustomer},
				},
			},
			body:         validBody,
			expectedCode: http.StatusOK,
			expectToken:  "signed-token",
		},
		{
			name:         "Error - invalid credentials",
			mockService:  mockUserService{error: usererrors.ErrInvalidCredentials},
			body:         validBody,
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Error - missing password rejected",
			mockService:  mockUserService{},
			body:         `{"email":"ada@example.com"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - service failure",
			mockService:  mockUserService{error: errors.New("store down")},
			body:         validBody,
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			// when
			api.Login(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			if tc.expectToken != "" {
				assert.Contains(t, rr.Body.String(), tc.expectToken, "response should carry the token")
			}
		})
	}
}

func Test_UserAPI_Me(t *testing.T) {
	mockUserID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")
	testCases := []struct {
		name         string
		mockService  mockUserService
		expectedCode int
	}{
		{
			name: "Success - account returned",
			mockService: mockUserService{
				user: &service.UserDto{ID: mockUserID.String(), Email: "ada@example.com", Role: userstore.RoleCustomer},
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - account gone",
			mockService:  mockUserService{error: usererrors.ErrUserNotFound},
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Error - service failure",
			mockService:  mockUserService{error: errors.New("store down")},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			req = req.WithContext(web.WithUser(req.Context(), mockUserID.String(), userstore.RoleCustomer))
			rr := httptest.NewRecorder()

			// when
			api.Me(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}

func Test_UserAPI_Me_RequiresUserIdentity(t *testing.T) {
	// given
	api := newTestHandler(&mockUserService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rr := httptest.NewRecorder()

	// when
	api.Me(rr, req)

	// then
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

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

	ordererrors "github.com/akopato/storefront/internal/order/errors"
	"github.com/akopato/storefront/internal/order/service"
	userstore "github.com/akopato/storefront/internal/user/store"
	"github.com/akopato/storefront/pkg/web"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// mockOrderService is a mock implementation of the OrderService interface
type mockOrderService struct {
	order  *service.OrderDto
	orders []service.OrderDto
	error  error
}

func (m *mockOrderService) CreateFromCart(_ context.Context, _ uuid.UUID) (*service.OrderDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.order, nil
}

func (m *mockOrderService) FindByID(_ context.Context, _, _ uuid.UUID, _ bool) (*service.OrderDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.order, nil
}

func (m *mockOrderService) FindOrdersByUserID(_ context.Context, _ uuid.UUID, _, _ int32) ([]service.OrderDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.orders, nil
}

func (m *mockOrderService) UpdateStatus(_ context.Context, _ uuid.UUID, _ string, _ int32) (*service.OrderDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.order, nil
}

func newTestHandler(s *mockOrderService) *Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewHandler(s, logger)
}

func authedRequest(method, target string, body io.Reader, userID uuid.UUID, role string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(web.WithUser(req.Context(), userID.String(), role))
}

func Test_OrderAPI_Create(t *testing.T) {
	mockUserID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")
	mockOrderID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174002")
	testCases := []struct {
		name         string
		mockService  mockOrderService
		expectedCode int
	}{
		{
			name: "Success - order created",
			mockService: mockOrderService{
				order: &service.OrderDto{ID: mockOrderID, UserID: mockUserID, Status: "pending", TotalPrice: 100, Version: 1},
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Error - empty cart",
			mockService:  mockOrderService{error: ordererrors.ErrEmptyCart},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - insufficient stock",
			mockService:  mockOrderService{error: ordererrors.ErrInsufficientStock},
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Error - service failure",
			mockService:  mockOrderService{error: errors.New("store down")},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService)
			req := authedRequest(http.MethodPost, "/api/v1/orders", nil, mockUserID, userstore.RoleCustomer)
			rr := httptest.NewRecorder()

			// when
			api.Create(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}

func Test_OrderAPI_Create_RequiresUserIdentity(t *testing.T) {
	// given
	api := newTestHandler(&mockOrderService{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	rr := httptest.NewRecorder()

	// when
	api.Create(rr, req)

	// then
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func Test_OrderAPI_FindByID(t *testing.T) {
	mockUserID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")
	mockOrderID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174002")
	testCases := []struct {
		name         string
		mockService  mockOrderService
		orderID      string
		expectedCode int
	}{
		{
			name: "Success - order found",
			mockService: mockOrderService{
				order: &service.OrderDto{ID: mockOrderID, UserID: mockUserID, Status: "pending", Version: 1},
			},
			orderID:      mockOrderID.String(),
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - invalid id",
			mockService:  mockOrderService{},
			orderID:      "123-invalid-id",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - order not found",
			mockService:  mockOrderService{error: ordererrors.ErrOrderNotFound},
			orderID:      mockOrderID.String(),
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Error - foreign order",
			mockService:  mockOrderService{error: ordererrors.ErrAccessDenied},
			orderID:      mockOrderID.String(),
			expectedCode: http.StatusForbidden,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService)
			req := authedRequest(http.MethodGet, "/api/v1/orders/"+tc.orderID, nil, mockUserID, userstore.RoleCustomer)
			req.SetPathValue("id", tc.orderID)
			rr := httptest.NewRecorder()

			// when
			api.FindByID(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}

func Test_OrderAPI_UpdateStatus(t *testing.T) {
	mockUserID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")
	mockOrderID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174002")
	testCases := []struct {
		name         string
		mockService  mockOrderService
		body         string
		expectedCode int
	}{
		{
			name: "Success - status changed",
			mockService: mockOrderService{
				order: &service.OrderDto{ID: mockOrderID, UserID: mockUserID, Status: "shipped", Version: 2},
			},
			body:         `{"status":"shipped","version":1}`,
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - unknown status value",
			mockService:  mockOrderService{},
			body:         `{"status":"teleported","version":1}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - version conflict",
			mockService:  mockOrderService{error: ordererrors.ErrOptimisticLock},
			body:         `{"status":"shipped","version":1}`,
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Error - order not found",
			mockService:  mockOrderService{error: ordererrors.ErrOrderNotFound},
			body:         `{"status":"shipped","version":1}`,
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService)
			req := authedRequest(http.MethodPut, "/api/v1/orders/"+mockOrderID.String()+"/status",
				strings.NewReader(tc.body), mockUserID, userstore.RoleAdmin)
			req.SetPathValue("id", mockOrderID.String())
			rr := httptest.NewRecorder()

			// when
			api.UpdateStatus(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}

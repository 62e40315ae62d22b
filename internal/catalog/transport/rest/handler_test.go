package rest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	catalogerrors "github.com/akopato/storefront/internal/catalog/errors"
	"github.com/akopato/storefront/internal/catalog/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCatalogService is a mock implementation of the CatalogService interface
type mockCatalogService struct {
	product *service.ProductDto
	page    *service.ProductPageDto
	error   error
}

func (m *mockCatalogService) FindByID(_ context.Context, _ uuid.UUID) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockCatalogService) List(_ context.Context, _, _ int32, _, _ string) (*service.ProductPageDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.page, nil
}

func (m *mockCatalogService) Create(_ context.Context, _ service.ProductCreateDto) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockCatalogService) Update(_ context.Context, _ service.ProductDto) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockCatalogService) UpdateStock(_ context.Context, _ uuid.UUID, _, _ int32) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockCatalogService) DeleteByID(_ context.Context, _ uuid.UUID, _ int32) error {
	return m.error
}

// mockMediaService is a mock implementation of the MediaService interface
type mockMediaService struct {
	locator string
	error   error
}

func (m *mockMediaService) ImageData(_ context.Context, _ string) (string, error) {
	return "", m.error
}

func (m *mockMediaService) UploadImage(_ context.Context, _ string, _ []byte) (string, error) {
	if m.error != nil {
		return "", m.error
	}
	return m.locator, nil
}

func newTestHandler(catalog *mockCatalogService, media *mockMediaService) *Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewHandler(catalog, media, logger)
}

func Test_CatalogAPI_List(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockCatalogService
		target       string
		expectedCode int
		expectedBody string
	}{
		{
			name: "Success - default pagination",
			mockService: mockCatalogService{
				page: &service.ProductPageDto{Products: []service.ProductDto{}, Total: 0, CurrentPage: 1, TotalPages: 1},
			},
			target:       "/api/v1/products",
			expectedCode: http.StatusOK,
			expectedBody: `{"products":[],"total":0,"currentPage":1,"totalPages":1}`,
		},
		{
			name:         "Error - non-positive page",
			mockService:  mockCatalogService{},
			target:       "/api/v1/products?page=0",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid page number: 0"}`,
		},
		{
			name:         "Error - malformed limit",
			mockService:  mockCatalogService{},
			target:       "/api/v1/products?limit=abc",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid limit number: abc"}`,
		},
		{
			name:         "Error - service failure",
			mockService:  mockCatalogService{error: errors.New("store down")},
			target:       "/api/v1/products",
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to fetch products"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService, &mockMediaService{})
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			rr := httptest.NewRecorder()

			// when
			api.List(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_CatalogAPI_FindByID(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		name         string
		mockService  mockCatalogService
		productID    string
		expectedCode int
	}{
		{
			name: "Success - product found",
			mockService: mockCatalogService{
				product: &service.ProductDto{ID: mockID.String(), Name: "Camera", Version: 1},
			},
			productID:    mockID.String(),
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - invalid id",
			mockService:  mockCatalogService{},
			productID:    "not-a-uuid",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - product not found",
			mockService:  mockCatalogService{error: catalogerrors.ErrProductNotFound},
			productID:    mockID.String(),
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService, &mockMediaService{})
			req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+tc.productID, nil)
			req.SetPathValue("id", tc.productID)
			rr := httptest.NewRecorder()

			// when
			api.FindByID(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}

// multipartBody builds a product-create form, optionally with image attachments.
func multipartBody(t *testing.T, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("name", "Camera"))
	require.NoError(t, writer.WriteField("description", "Compact camera"))
	require.NoError(t, writer.WriteField("price", "25900"))
	require.NoError(t, writer.WriteField("stock", "5"))
	require.NoError(t, writer.WriteField("category", "electronics"))
	require.NoError(t, writer.WriteField("brand", "Acme"))
	if withImage {
		part, err := writer.CreateFormFile("images", "photo.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte{0xFF, 0xD8, 0xFF})
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func Test_CatalogAPI_Create(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		name         string
		mockService  mockCatalogService
		mockMedia    mockMediaService
		withImage    bool
		expectedCode int
	}{
		{
			name: "Success - product created with uploaded image",
			mockService: mockCatalogService{
				product: &service.ProductDto{ID: mockID.String(), Name: "Camera", ImageURLs: []string{"https://storage.example.com/s/new"}, Version: 1},
			},
			mockMedia:    mockMediaService{locator: "https://storage.example.com/s/new"},
			withImage:    true,
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Error - no images attached",
			mockService:  mockCatalogService{},
			mockMedia:    mockMediaService{},
			withImage:    false,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - storage upload failed",
			mockService:  mockCatalogService{},
			mockMedia:    mockMediaService{error: errors.New("storage unavailable")},
			withImage:    true,
			expectedCode: http.StatusBadGateway,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService, &tc.mockMedia)
			body, contentType := multipartBody(t, tc.withImage)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/products", body)
			req.Header.Set("Content-Type", contentType)
			rr := httptest.NewRecorder()

			// when
			api.Create(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}

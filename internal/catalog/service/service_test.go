package service

import (
	"context"
	"errors"
	"testing"

	catalogerrors "github.com/akopato/storefront/internal/catalog/errors"
	"github.com/akopato/storefront/internal/catalog/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProductStore is a mock implementation of the ProductStore interface
type mockProductStore struct {
	products   []store.Product
	product    store.Product
	total      int64
	error      error
	lastParams store.ListParams
}

func (m *mockProductStore) FindByID(_ context.Context, _ uuid.UUID) (*store.Product, error) {
	return &m.product, m.error
}

func (m *mockProductStore) List(_ context.Context, params store.ListParams) ([]store.Product, int64, error) {
	m.lastParams = params
	return m.products, m.total, m.error
}

func (m *mockProductStore) Create(_ context.Context, _ store.CreateParams) (*store.Product, error) {
	return &m.product, m.error
}

func (m *mockProductStore) Update(_ context.Context, _ store.UpdateParams) (*store.Product, error) {
	return &m.product, m.error
}

func (m *mockProductStore) UpdateStock(_ context.Context, _ uuid.UUID, _ int32, _ int32) (*store.Product, error) {
	return &m.product, m.error
}

func (m *mockProductStore) DeleteByID(_ context.Context, _ uuid.UUID, _ int32) error {
	return m.error
}

func Test_CatalogService_FindByID(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		expected    *ProductDto
		expectError error
	}{
		{
			name: "Success - product found",
			mockStore: &mockProductStore{
				product: store.Product{ID: mockID, Name: "Camera", ImageURLs: []string{"https://storage.example.com/s/a"}, Version: 1},
			},
			expected: &ProductDto{ID: mockID.String(), Name: "Camera", ImageURLs: []string{"https://storage.example.com/s/a"}, Version: 1},
		},
		{
			name: "Error - product not found",
			mockStore: &mockProductStore{
				error: catalogerrors.ErrProductNotFound,
			},
			expectError: catalogerrors.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore)
			// when
			found, err := service.FindByID(context.Background(), mockID)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, found)
		})
	}
}

func Test_CatalogService_List_Pagination(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		name          string
		mockStore     *mockProductStore
		page          int32
		pageSize      int32
		expectedPages int32
		expectedTotal int64
		expectedLen   int
		expectError   error
	}{
		{
			name:          "Success - exact multiple of page size",
			mockStore:     &mockProductStore{products: make([]store.Product, 10), total: 20},
			page:          1,
			pageSize:      10,
			expectedPages: 2,
			expectedTotal: 20,
			expectedLen:   10,
		},
		{
			name:          "Success - partial last page rounds up",
			mockStore:     &mockProductStore{products: make([]store.Product, 1), total: 21},
			page:          3,
			pageSize:      10,
			expectedPages: 3,
			expectedTotal: 21,
			expectedLen:   1,
		},
		{
			name:          "Success - empty catalog still reports one page",
			mockStore:     &mockProductStore{products: nil, total: 0},
			page:          1,
			pageSize:      10,
			expectedPages: 1,
			expectedTotal: 0,
			expectedLen:   0,
		},
		{
			name:          "Success - page past the end returns empty slice",
			mockStore:     &mockProductStore{products: nil, total: 5},
			page:          4,
			pageSize:      10,
			expectedPages: 1,
			expectedTotal: 5,
			expectedLen:   0,
		},
		{
			name:        "Error - zero page",
			mockStore:   &mockProductStore{},
			page:        0,
			pageSize:    10,
			expectError: catalogerrors.ErrInvalidPage,
		},
		{
			name:        "Error - negative page size",
			mockStore:   &mockProductStore{},
			page:        1,
			pageSize:    -5,
			expectError: catalogerrors.ErrInvalidPage,
		},
		{
			name: "Success - single product",
			mockStore: &mockProductStore{
				products: []store.Product{{ID: mockID, Name: "Camera"}},
				total:    1,
			},
			page:          1,
			pageSize:      10,
			expectedPages: 1,
			expectedTotal: 1,
			expectedLen:   1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore)
			// when
			pageDto, err := service.List(context.Background(), tc.page, tc.pageSize, "", "")
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, pageDto)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedPages, pageDto.TotalPages)
			assert.Equal(t, tc.expectedTotal, pageDto.Total)
			assert.Equal(t, tc.page, pageDto.CurrentPage)
			assert.Len(t, pageDto.Products, tc.expectedLen)
		})
	}
}

func Test_CatalogService_List_OffsetComputation(t *testing.T) {
	// given
	mockStore := &mockProductStore{}
	service := NewService(mockStore)

	// when
	_, err := service.List(context.Background(), 3, 25, "camera", "electronics")

	// then
	require.NoError(t, err)
	assert.Equal(t, int32(50), mockStore.lastParams.Offset)
	assert.Equal(t, int32(25), mockStore.lastParams.Limit)
	assert.Equal(t, "camera", mockStore.lastParams.Search)
	assert.Equal(t, "electronics", mockStore.lastParams.Category)
}

func Test_CatalogService_Create(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		dto         ProductCreateDto
		expectError error
	}{
		{
			name: "Success - product created",
			mockStore: &mockProductStore{
				product: store.Product{ID: mockID, Name: "Camera", ImageURLs: []string{"https://storage.example.com/s/a"}, Version: 1},
			},
			dto: ProductCreateDto{Name: "Camera", Price: 100, Category: "electronics", ImageURLs: []string{"https://storage.example.com/s/a"}},
		},
		{
			name:        "Error - no image locators",
			mockStore:   &mockProductStore{},
			dto:         ProductCreateDto{Name: "Camera", Price: 100, Category: "electronics"},
			expectError: catalogerrors.ErrNoImages,
		},
		{
			name:        "Error - store failure",
			mockStore:   &mockProductStore{error: errors.New("store error")},
			dto:         ProductCreateDto{Name: "Camera", Price: 100, Category: "electronics", ImageURLs: []string{"https://storage.example.com/s/a"}},
			expectError: errors.New("store error"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore)
			// when
			created, err := service.Create(context.Background(), tc.dto)
			// then
			if tc.expectError != nil {
				assert.ErrorContains(t, err, tc.expectError.Error())
				assert.Nil(t, created)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.dto.Name, created.Name)
		})
	}
}

package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	mediaerrors "github.com/akopato/storefront/internal/media/errors"
	"github.com/stretchr/testify/assert"
)

// mockMediaService is a mock implementation of the MediaService interface
type mockMediaService struct {
	payload string
	locator string
	err     error
}

func (m *mockMediaService) ImageData(_ context.Context, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.payload, nil
}

func (m *mockMediaService) UploadImage(_ context.Context, _ string, _ []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.locator, nil
}

func Test_MediaAPI_ImageData(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockMediaService
		query        string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - payload returned",
			mockService:  mockMediaService{payload: "data:image/jpeg;base64,AAAA"},
			query:        "?url=https://storage.example.com/s/abc",
			expectedCode: http.StatusOK,
			expectedBody: `{"success":true,"imageData":"data:image/jpeg;base64,AAAA"}`,
		},
		{
			name:         "Error - missing url parameter",
			mockService:  mockMediaService{},
			query:        "",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"url parameter is required"}`,
		},
		{
			name:         "Error - locator outside storage namespace",
			mockService:  mockMediaService{err: mediaerrors.ErrUnknownLocator},
			query:        "?url=https://elsewhere.example.com/img.jpg",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"url is not a recognized storage locator"}`,
		},
		{
			name:         "Error - object not found",
			mockService:  mockMediaService{err: mediaerrors.ErrObjectNotFound},
			query:        "?url=https://storage.example.com/s/gone",
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"image not found in storage"}`,
		},
		{
			name:         "Error - remote failure",
			mockService:  mockMediaService{err: errors.New("connection reset")},
			query:        "?url=https://storage.example.com/s/abc",
			expectedCode: http.StatusBadGateway,
			expectedBody: `{"error":"Failed to fetch image"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
			api := NewHandler(&tc.mockService, logger)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/image-data"+tc.query, nil)
			rr := httptest.NewRecorder()

			// when
			api.ImageData(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// mockVerifier is a mock implementation of the TokenVerifier interface
type mockVerifier struct {
	subject string
	role    string
	err     error
}

func (m *mockVerifier) Verify(_ context.Context, _ string) (string, string, error) {
	return m.subject, m.role, m.err
}

func Test_AuthMiddleware(t *testing.T) {
	testCases := []struct {
		name         string
		authHeader   string
		verifier     *mockVerifier
		expectedCode int
		expectedSub  string
		expectedRole string
	}{
		{
			name:         "Success - valid bearer token",
			authHeader:   "Bearer good-token",
			verifier:     &mockVerifier{subject: "user-123", role: "customer"},
			expectedCode: http.StatusOK,
			expectedSub:  "user-123",
			expectedRole: "customer",
		},
		{
			name:         "Error - missing header",
			authHeader:   "",
			verifier:     &mockVerifier{},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Error - not a bearer scheme",
			authHeader:   "Basic dXNlcjpwYXNz",
			verifier:     &mockVerifier{},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Error - invalid token",
			authHeader:   "Bearer bad-token",
			verifier:     &mockVerifier{err: errors.New("signature mismatch")},
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var gotSub, gotRole string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSub = ContextUserID(r.Context())
				gotRole = ContextUserRole(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			handler := AuthMiddleware(tc.verifier)(next)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rr := httptest.NewRecorder()

			// when
			handler.ServeHTTP(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.Equal(t, tc.expectedSub, gotSub)
			assert.Equal(t, tc.expectedRole, gotRole)
		})
	}
}

func Test_RequireRole(t *testing.T) {
	testCases := []struct {
		name         string
		contextRole  string
		requiredRole string
		expectedCode int
	}{
		{name: "Success - role matches", contextRole: "admin", requiredRole: "admin", expectedCode: http.StatusOK},
		{name: "Error - role mismatch", contextRole: "customer", requiredRole: "admin", expectedCode: http.StatusForbidden},
		{name: "Error - unauthenticated request", contextRole: "", requiredRole: "admin", expectedCode: http.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			handler := RequireRole(tc.requiredRole)(next)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.contextRole != "" {
				req = req.WithContext(WithUser(req.Context(), "user-123", tc.contextRole))
			}
			rr := httptest.NewRecorder()

			// when
			handler.ServeHTTP(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
		})
	}
}

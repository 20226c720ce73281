package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gautamkshah/wise-academy/internal/common/security"

	"github.com/stretchr/testify/assert"
)

func TestRouter_PublicAndProtected(t *testing.T) {
	router := NewRouter(security.NewIdentityVerifier("HS256", []byte("secret")), Services{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")

	for _, path := range []string{"/api/v1/users/handles", "/api/v1/progress/solve", "/api/v1/progress/sync", "/api/v1/stats/sync-all"} {
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

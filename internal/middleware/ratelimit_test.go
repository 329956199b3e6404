package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_AllowsWithinBurst(t *testing.T) {
	handler := RateLimitMiddleware(RateLimitConfig{RequestsPerSecond: 1, Burst: 5}, newTestLogger())(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, "request %d within burst must pass", i+1)
	}
}

func TestRateLimit_RejectsOverBurst(t *testing.T) {
	handler := RateLimitMiddleware(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}, newTestLogger())(okHandler())

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = "10.0.0.2:12345"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
	}

	require.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(last.Body.Bytes(), &resp))
	assert.Equal(t, CodeRateLimited, resp.Error.Code)
}

func TestRateLimit_TracksClientsSeparately(t *testing.T) {
	handler := RateLimitMiddleware(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}, newTestLogger())(okHandler())

	first := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	first.RemoteAddr = "10.0.0.3:1000"
	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, first)
	require.Equal(t, http.StatusOK, w1.Code)

	// A different client gets its own bucket
	second := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	second.RemoteAddr = "10.0.0.4:1000"
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, second)
	require.Equal(t, http.StatusOK, w2.Code)

	// The first client's bucket is exhausted
	third := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	third.RemoteAddr = "10.0.0.3:2000"
	w3 := httptest.NewRecorder()
	handler.ServeHTTP(w3, third)
	require.Equal(t, http.StatusTooManyRequests, w3.Code)
}

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"mercado-storefront/internal/config"
	"mercado-storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: "0", Env: "development"},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
}

func writeTestCatalog(t *testing.T) string {
	t.Helper()

	catalog := `[{
		"id": "premium-laptop-mx2024",
		"title": "MacBook Pro 16",
		"description": "High performance laptop",
		"images": ["https://example.com/laptop.jpg"],
		"price": {"amount": 89999.99, "currency": "MXN"},
		"paymentMethods": [{"label": "Credit card"}],
		"seller": {"id": "tecnostore-oficial", "name": "TecnoStore", "rating": 4.8, "sales": 15420, "isOfficial": true},
		"stock": 7,
		"rating": {"average": 4.8, "count": 342}
	}]`

	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o644))
	return path
}

func TestServer_RoutesAreWired(t *testing.T) {
	repo := repository.NewFileCatalogRepository(writeTestCatalog(t))
	srv := NewServer(testConfig(), zap.NewNop(), repo)

	tests := []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/products", http.StatusOK},
		{http.MethodGet, "/api/products/premium-laptop-mx2024", http.StatusOK},
		{http.MethodGet, "/api/products/does-not-exist-123456", http.StatusNotFound},
		{http.MethodPut, "/api/products/premium-laptop-mx2024", http.StatusNotImplemented},
		{http.MethodDelete, "/api/products/premium-laptop-mx2024", http.StatusNotImplemented},
		{http.MethodPost, "/api/products", http.StatusNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			w := httptest.NewRecorder()
			srv.Handler.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestServer_HealthReportsCatalogState(t *testing.T) {
	repo := repository.NewFileCatalogRepository(writeTestCatalog(t))
	srv := NewServer(testConfig(), zap.NewNop(), repo)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var health map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "up", health["status"])
	assert.Equal(t, float64(1), health["products"])
}

func TestServer_UnreadableCatalogIsUnavailable(t *testing.T) {
	repo := repository.NewFileCatalogRepository(filepath.Join(t.TempDir(), "absent.json"))
	srv := NewServer(testConfig(), zap.NewNop(), repo)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

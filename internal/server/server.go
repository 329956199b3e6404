package server

import (
	"fmt"
	"net/http"
	"time"

	"mercado-storefront/internal/config"
	custommiddleware "mercado-storefront/internal/middleware"
	"mercado-storefront/internal/repository"
	"mercado-storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	repo   repository.CatalogRepository
}

func NewServer(cfg *config.Config, logger *zap.Logger, repo repository.CatalogRepository) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.MetricsMiddleware())
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.Env == "development"))
	router.Use(custommiddleware.RateLimitMiddleware(custommiddleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	}, logger))

	// Health check endpoint reporting catalog source state
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := repo.Health(r.Context())
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, health)
	})

	// Prometheus metrics
	router.Handle("/metrics", promhttp.Handler())

	// Initialize handlers
	productHandler := transport.NewProductHandler(repo, logger)

	// Register routes
	productHandler.RegisterRoutes(router)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		repo:   repo,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")
	s.logger.Sync()
	return nil
}

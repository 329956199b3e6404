package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"mercado-storefront/internal/middleware"
	"mercado-storefront/internal/repository"
	"mercado-storefront/internal/schema"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultPage  = 1
	defaultLimit = 12
)

// ProductHandler handles HTTP requests for the product catalog
type ProductHandler struct {
	repo   repository.CatalogRepository
	logger *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(repo repository.CatalogRepository, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		repo:   repo,
		logger: logger,
	}
}

// RegisterRoutes registers all product routes. Mutating verbs are wired to
// a fixed 501 response: the read-only posture is part of the API contract.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.NotImplemented)
		r.Get("/{id}", h.GetByID)
		r.Put("/{id}", h.NotImplemented)
		r.Delete("/{id}", h.NotImplemented)
	})
}

// listQuery holds validated query parameters for the list endpoint.
type listQuery struct {
	Query string
	Page  int
	Limit int
}

// parseListQuery validates q, page and limit. Unlike the repository, which
// clamps when called programmatically, the HTTP boundary rejects
// out-of-range values outright.
func parseListQuery(r *http.Request) (listQuery, error) {
	q := r.URL.Query()

	parsed := listQuery{
		Query: q.Get("q"),
		Page:  defaultPage,
		Limit: defaultLimit,
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return listQuery{}, errors.New("Invalid query parameter: page must be a positive integer")
		}
		parsed.Page = page
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < repository.MinLimit || limit > repository.MaxLimit {
			return listQuery{}, fmt.Errorf("Invalid query parameter: limit must be an integer between %d and %d",
				repository.MinLimit, repository.MaxLimit)
		}
		parsed.Limit = limit
	}

	return parsed, nil
}

// List handles GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := parseListQuery(r)
	if err != nil {
		h.logger.Debug("List query validation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.repo.List(r.Context(), repository.ListParams{
		Query: params.Query,
		Page:  params.Page,
		Limit: params.Limit,
	})
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}

	// Guardrail: never let a malformed stored record leave the system. A
	// violation here means the data source is corrupt, so the whole request
	// fails rather than returning a partial page.
	for i := range result.Items {
		if violations := schema.ValidateProduct(&result.Items[i]); violations != nil {
			h.logger.Error("Stored product failed schema validation",
				zap.String("product_id", result.Items[i].ID),
				zap.Any("violations", violations),
			)
			middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch products")
			return
		}
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// GetByID handles GET /api/products/{id}
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound,
				fmt.Sprintf("Product with id '%s' not found", id))
			return
		}

		h.logger.Error("Failed to fetch product", zap.String("product_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch product")
		return
	}

	if violations := schema.ValidateProduct(product); violations != nil {
		h.logger.Error("Stored product failed schema validation",
			zap.String("product_id", id),
			zap.Any("violations", violations),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, "Product data validation failed")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// NotImplemented handles the disabled mutating verbs
func (h *ProductHandler) NotImplemented(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithError(w, http.StatusNotImplemented,
		fmt.Sprintf("%s operation not supported in read-only mode", r.Method))
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"mercado-storefront/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")

	// ErrReadOnly marks the deliberately unsupported mutation paths. The
	// read-only posture is an API contract, not a missing feature.
	ErrReadOnly = errors.New("not supported in read-only mode")

	// ErrDataSource wraps failures to read or decode the catalog file.
	// Loads are never retried automatically; callers retry explicitly.
	ErrDataSource = errors.New("catalog data source unavailable")
)

const (
	// Limit bounds applied when the repository is called as a library.
	// The HTTP layer rejects out-of-range values instead of clamping;
	// both behaviors are intentional and kept distinct.
	MinLimit = 1
	MaxLimit = 100
)

// ListParams selects a window of the catalog. Query filters by
// case-insensitive substring on title or description.
type ListParams struct {
	Query string
	Page  int
	Limit int
}

// ListResult is one page of the catalog. Total is the post-filter,
// pre-pagination count.
type ListResult struct {
	Items []domain.Product `json:"items"`
	Page  int              `json:"page"`
	Total int              `json:"total"`
}

// CatalogRepository defines the interface for catalog data access.
type CatalogRepository interface {
	Load(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id string, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	Health(ctx context.Context) map[string]any
}

// catalogSnapshot is one fully-loaded view of the source file. Reloads
// replace the snapshot as a unit so readers never observe a partially
// updated collection.
type catalogSnapshot struct {
	products []domain.Product
	modTime  time.Time
}

type fileCatalogRepository struct {
	path string

	mu   sync.RWMutex
	snap *catalogSnapshot
}

// NewFileCatalogRepository creates a catalog repository backed by a JSON
// array file at path. The file is read lazily on first access and re-read
// only when its modification timestamp advances.
func NewFileCatalogRepository(path string) CatalogRepository {
	return &fileCatalogRepository{path: path}
}

// Load returns the cached collection, reloading it from disk when the
// source file has changed since the cache was populated.
func (r *fileCatalogRepository) Load(ctx context.Context) ([]domain.Product, error) {
	info, err := os.Stat(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", ErrDataSource, r.path, err)
	}

	r.mu.RLock()
	snap := r.snap
	r.mu.RUnlock()

	if snap != nil && !info.ModTime().After(snap.modTime) {
		return snap.products, nil
	}

	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrDataSource, r.path, err)
	}

	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrDataSource, r.path, err)
	}

	fresh := &catalogSnapshot{products: products, modTime: info.ModTime()}

	// Concurrent reloads race benignly: the last swap wins and each reader
	// sees either the old or the new snapshot in full.
	r.mu.Lock()
	r.snap = fresh
	r.mu.Unlock()

	return products, nil
}

// FindByID scans the loaded collection for an exact id match.
func (r *fileCatalogRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	products, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range products {
		if products[i].ID == id {
			product := products[i]
			return &product, nil
		}
	}

	return nil, ErrProductNotFound
}

// List filters, counts and paginates the catalog. Page is floored to 1 and
// limit is clamped to [MinLimit, MaxLimit]; source order is preserved.
func (r *fileCatalogRepository) List(ctx context.Context, params ListParams) (*ListResult, error) {
	products, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	filtered := products
	if query := strings.TrimSpace(params.Query); query != "" {
		needle := strings.ToLower(query)
		filtered = make([]domain.Product, 0)
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.Title), needle) ||
				strings.Contains(strings.ToLower(p.Description), needle) {
				filtered = append(filtered, p)
			}
		}
	}

	total := len(filtered)

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	items := make([]domain.Product, end-start)
	copy(items, filtered[start:end])

	return &ListResult{Items: items, Page: page, Total: total}, nil
}

// Create always fails: the catalog is fixed at deployment.
func (r *fileCatalogRepository) Create(ctx context.Context, product *domain.Product) error {
	return fmt.Errorf("create operation %w", ErrReadOnly)
}

// Update always fails: the catalog is fixed at deployment.
func (r *fileCatalogRepository) Update(ctx context.Context, id string, product *domain.Product) error {
	return fmt.Errorf("update operation %w", ErrReadOnly)
}

// Delete always fails: the catalog is fixed at deployment.
func (r *fileCatalogRepository) Delete(ctx context.Context, id string) error {
	return fmt.Errorf("delete operation %w", ErrReadOnly)
}

// Health reports the state of the catalog source for the health endpoint
// and startup logging.
func (r *fileCatalogRepository) Health(ctx context.Context) map[string]any {
	health := map[string]any{
		"source": r.path,
	}

	products, err := r.Load(ctx)
	if err != nil {
		health["status"] = "down"
		health["error"] = err.Error()
		return health
	}

	r.mu.RLock()
	modTime := r.snap.modTime
	r.mu.RUnlock()

	health["status"] = "up"
	health["products"] = len(products)
	health["last_modified"] = modTime.UTC().Format(time.RFC3339)
	return health
}

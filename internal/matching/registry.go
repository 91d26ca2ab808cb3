package matching

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/catalog"
	apperrors "github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/errors"
)

// ErrCategorySourceMissing marks a listed category whose product source does
// not exist at all. It aborts startup, unlike a source that fails to load.
var ErrCategorySourceMissing = errors.New("category source missing")

// Loader fetches the catalog of one category.
type Loader func(ctx context.Context, cat catalog.Category) (*catalog.Catalog, error)

// JSONDirLoader loads <root>/<category id>/ with catalog.LoadJSONDir.
func JSONDirLoader(root string) Loader {
	return func(_ context.Context, cat catalog.Category) (*catalog.Catalog, error) {
		dir := filepath.Join(root, cat.ID)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("%w: no product directory %s", ErrCategorySourceMissing, dir)
		}
		return catalog.LoadJSONDir(dir)
	}
}

// TabularLoader loads the first of <dir>/<category id>.csv, .xlsx or .xls.
func TabularLoader(dir string) Loader {
	return func(_ context.Context, cat catalog.Category) (*catalog.Catalog, error) {
		for _, ext := range []string{".csv", ".xlsx", ".xls"} {
			path := filepath.Join(dir, cat.ID+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return catalog.LoadTabular(path)
			}
		}
		return nil, fmt.Errorf("%w: no product sheet for %s in %s", ErrCategorySourceMissing, cat.ID, dir)
	}
}

// PostgresLoader reads the category's rows from the catalog_items table. A
// category without rows counts as missing.
func PostgresLoader(db *sql.DB) Loader {
	return func(ctx context.Context, cat catalog.Category) (*catalog.Catalog, error) {
		c, err := catalog.LoadPostgres(ctx, db, cat.ID)
		if err != nil {
			return nil, err
		}
		if c.Len() == 0 {
			return nil, fmt.Errorf("%w: no rows for category %s", ErrCategorySourceMissing, cat.ID)
		}
		return c, nil
	}
}

// Builder turns a loaded catalog into a Facade.
type Builder func(ctx context.Context, cat *catalog.Catalog) (*Facade, error)

// Registry maps category ids to facades. It is filled once at startup.
type Registry struct {
	mu         sync.RWMutex
	categories []catalog.Category
	facades    map[string]*Facade
	logger     *slog.Logger
}

func NewRegistry() *Registry {
	return &Registry{
		facades: make(map[string]*Facade),
		logger:  slog.Default().With("component", "registry"),
	}
}

// BuildRegistry loads and prepares every category. A category whose source
// is missing fails the whole build; one that fails to load or preprocess is
// logged and left out.
func BuildRegistry(ctx context.Context, cats []catalog.Category, load Loader, build Builder) (*Registry, error) {
	r := NewRegistry()
	for _, c := range cats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cat, err := load(ctx, c)
		if err != nil {
			if errors.Is(err, ErrCategorySourceMissing) {
				return nil, err
			}
			r.logger.Error("cannot load category, skipping", "category", c.ID, "error", err)
			continue
		}
		f, err := build(ctx, cat)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			r.logger.Error("cannot prepare category, skipping", "category", c.ID, "error", err)
			continue
		}
		r.Add(c, f)
	}
	r.logger.Info("categories ready", "listed", len(cats), "served", r.Len())
	return r, nil
}

func (r *Registry) Add(c catalog.Category, f *Facade) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.facades[c.ID]; !exists {
		r.categories = append(r.categories, c)
	}
	r.facades[c.ID] = f
}

// Get returns the facade of a category or ErrUnknownCategory.
func (r *Registry) Get(id string) (*Facade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.facades[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownCategory, id)
	}
	return f, nil
}

// Categories lists the served categories in load order.
func (r *Registry) Categories() []catalog.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]catalog.Category, len(r.categories))
	copy(out, r.categories)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.facades)
}

// Items reports the catalog size of each category.
func (r *Registry) Items() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int, len(r.facades))
	for id, f := range r.facades {
		out[id] = f.Catalog().Len()
	}
	return out
}

// Package memory provides an in-process catalog backend, used when the
// storefront runs without a database and as the backing store in tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/glowshelf/storefront/internal/domain/catalog"
)

// Catalog is a mutex-guarded in-process catalog. Reads dominate; the
// writer surface exists for the admin endpoints and seeding.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]catalog.Product
}

var (
	_ catalog.Repository = (*Catalog)(nil)
	_ catalog.Writer     = (*Catalog)(nil)
)

// NewCatalog creates a catalog pre-populated with the given products.
func NewCatalog(products ...catalog.Product) *Catalog {
	c := &Catalog{products: make(map[string]catalog.Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// List returns products ordered by id, optionally filtered by category.
func (c *Catalog) List(_ context.Context, category string) ([]catalog.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]catalog.Product, 0, len(c.products))
	for _, p := range c.products {
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b catalog.Product) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// GetByID returns a single product, or catalog.ErrNotFound.
func (c *Catalog) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &p, nil
}

// GetByIDs returns the products matching any of the given ids. Missing
// ids are simply absent from the result.
func (c *Catalog) GetByIDs(_ context.Context, ids []string) ([]catalog.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Categories returns the distinct categories, sorted.
func (c *Catalog) Categories(_ context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, p := range c.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	slices.Sort(out)
	return out, nil
}

// Upsert inserts or replaces a product.
func (c *Catalog) Upsert(_ context.Context, p catalog.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
	return nil
}

// Delete removes a product. Deleting an absent id is a no-op.
func (c *Catalog) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.products, id)
	return nil
}

// Count returns the number of products.
func (c *Catalog) Count(_ context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.products)), nil
}

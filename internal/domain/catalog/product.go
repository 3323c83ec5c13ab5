// Package catalog defines the product catalog domain model and the
// storage contracts it is served from.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Products are
// immutable for the lifetime of a request.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
}

// Repository defines read operations for the product catalog.
type Repository interface {
	// List returns products ordered by ID. A non-empty category restricts
	// the result to that category.
	List(ctx context.Context, category string) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	// Categories returns the distinct product categories, sorted.
	Categories(ctx context.Context) ([]string, error)
}

// Writer defines mutation operations for the catalog. It is consumed by
// the admin surface, the seeder, and the feed ingest tool, never by the
// cart or checkout path.
type Writer interface {
	Upsert(ctx context.Context, p Product) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/glowshelf/storefront/internal/domain/catalog"
)

// LineItem is a priced cart entry. It is derived on every read and never
// stored.
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Snapshot is a fully priced, read-only view of a cart at one instant.
// Total is always the exact decimal sum of the item subtotals; there is
// no separate recomputation path that could drift.
type Snapshot struct {
	Items []LineItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// ComputeSnapshot prices the cart against the catalog. Products are
// fetched in a single batch; entries whose id is no longer in the catalog
// are silently skipped and contribute nothing to the total. Items appear
// in the cart's own entry order.
func ComputeSnapshot(ctx context.Context, c *Cart, products catalog.Repository) (*Snapshot, error) {
	snap := &Snapshot{Total: decimal.Zero}
	if c.IsEmpty() {
		return snap, nil
	}

	ids := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		ids[i] = e.ProductID
	}

	fetched, err := products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}

	byID := make(map[string]catalog.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	snap.Items = make([]LineItem, 0, len(c.Entries))
	for _, e := range c.Entries {
		p, ok := byID[e.ProductID]
		if !ok {
			// Stale entry: the product was removed from the catalog
			// after it was added to the cart.
			continue
		}
		subtotal := p.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
		snap.Items = append(snap.Items, LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image,
			UnitPrice: p.Price,
			Quantity:  e.Quantity,
			Subtotal:  subtotal,
		})
		snap.Total = snap.Total.Add(subtotal)
	}

	return snap, nil
}

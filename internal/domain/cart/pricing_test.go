package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowshelf/storefront/internal/domain/catalog"
	"github.com/glowshelf/storefront/internal/storage/memory"
)

func testCatalog() *memory.Catalog {
	return memory.NewCatalog(
		catalog.Product{ID: "mask-cica", Name: "Cica Sheet Mask", Price: decimal.RequireFromString("129"), Category: "Sheet Masks"},
		catalog.Product{ID: "mask-heartleaf", Name: "Heartleaf Sheet Mask", Price: decimal.RequireFromString("99"), Category: "Sheet Masks"},
		catalog.Product{ID: "hand-cream-coconut", Name: "Coconut Hand Cream", Price: decimal.RequireFromString("89"), Category: "Hand Creams"},
		catalog.Product{ID: "hand-cream-ceramide", Name: "Ceramide Hand Cream", Price: decimal.RequireFromString("159"), Category: "Hand Creams"},
	)
}

func TestComputeSnapshot_EmptyCart(t *testing.T) {
	snap, err := ComputeSnapshot(context.Background(), &Cart{}, testCatalog())

	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	assert.True(t, decimal.Zero.Equal(snap.Total))
}

func TestComputeSnapshot_PricesLines(t *testing.T) {
	var c Cart
	c.Add("mask-cica", 2)
	c.Add("hand-cream-coconut", 1)

	snap, err := ComputeSnapshot(context.Background(), &c, testCatalog())

	require.NoError(t, err)
	require.Len(t, snap.Items, 2)

	assert.Equal(t, "mask-cica", snap.Items[0].ProductID)
	assert.True(t, decimal.RequireFromString("258").Equal(snap.Items[0].Subtotal))
	assert.Equal(t, "hand-cream-coconut", snap.Items[1].ProductID)
	assert.True(t, decimal.RequireFromString("89").Equal(snap.Items[1].Subtotal))

	assert.True(t, decimal.RequireFromString("347").Equal(snap.Total))
}

func TestComputeSnapshot_TotalIsSumOfSubtotals(t *testing.T) {
	var c Cart
	c.Add("mask-heartleaf", 3)
	c.Add("hand-cream-ceramide", 2)
	c.Add("mask-cica", 1)

	snap, err := ComputeSnapshot(context.Background(), &c, testCatalog())
	require.NoError(t, err)

	sum := decimal.Zero
	for _, it := range snap.Items {
		assert.True(t, it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Equal(it.Subtotal))
		sum = sum.Add(it.Subtotal)
	}
	assert.True(t, sum.Equal(snap.Total))
}

func TestComputeSnapshot_SkipsStaleEntries(t *testing.T) {
	var c Cart
	c.Add("mask-cica", 1)
	c.Add("discontinued", 5)

	snap, err := ComputeSnapshot(context.Background(), &c, testCatalog())

	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "mask-cica", snap.Items[0].ProductID)
	assert.True(t, decimal.RequireFromString("129").Equal(snap.Total))

	// The stale entry stays in the cart; only pricing ignores it.
	assert.Equal(t, 5, c.Quantity("discontinued"))
}

func TestComputeSnapshot_KeepsEntryOrder(t *testing.T) {
	var c Cart
	c.Add("hand-cream-ceramide", 1)
	c.Add("mask-cica", 1)

	snap, err := ComputeSnapshot(context.Background(), &c, testCatalog())

	require.NoError(t, err)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, "hand-cream-ceramide", snap.Items[0].ProductID)
	assert.Equal(t, "mask-cica", snap.Items[1].ProductID)
}

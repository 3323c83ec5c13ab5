// Package cart implements the session-scoped shopping cart and its
// pricing against the product catalog.
package cart

import (
	"slices"
	"strconv"
	"strings"
)

// quantityFieldPrefix is the form-field prefix carried by quantity inputs
// ("qty_<product id>"). ReplaceAll strips it so callers can pass form
// values through unchanged.
const quantityFieldPrefix = "qty_"

// Entry is a single cart line: a product reference and how many of it.
type Entry struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is an insertion-ordered collection of entries. The zero value is an
// empty, usable cart. Entries never hold a quantity <= 0; operations that
// would produce one remove the entry instead. Entries may reference
// products that no longer exist in the catalog; pricing skips those.
type Cart struct {
	Entries []Entry `json:"entries"`
}

// Add merges qty into the entry for id, appending a new entry when none
// exists. Negative quantities decrement; an entry whose merged quantity
// drops to zero or below is removed, keeping the no-nonpositive-entries
// invariant uniform across Add and ReplaceAll.
func (c *Cart) Add(id string, qty int) {
	for i := range c.Entries {
		if c.Entries[i].ProductID != id {
			continue
		}
		c.Entries[i].Quantity += qty
		if c.Entries[i].Quantity <= 0 {
			c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
		}
		return
	}
	if qty > 0 {
		c.Entries = append(c.Entries, Entry{ProductID: id, Quantity: qty})
	}
}

// ReplaceAll overwrites the whole cart from raw form values. Keys may
// carry the "qty_" form-field prefix. Values are parsed as integers;
// unparsable values and negatives count as zero, and zero-quantity
// entries are dropped. Surviving entries are ordered by product id so the
// result is deterministic regardless of map iteration order.
func (c *Cart) ReplaceAll(raw map[string]string) {
	ids := make([]string, 0, len(raw))
	quantities := make(map[string]int, len(raw))

	for key, value := range raw {
		id := strings.TrimPrefix(key, quantityFieldPrefix)
		qty, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || qty < 0 {
			qty = 0
		}
		if qty == 0 {
			continue
		}
		if _, seen := quantities[id]; !seen {
			ids = append(ids, id)
		}
		quantities[id] = qty
	}

	slices.Sort(ids)

	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, Entry{ProductID: id, Quantity: quantities[id]})
	}
	c.Entries = entries
}

// Remove deletes the entry for id. Removing an absent id is a no-op.
func (c *Cart) Remove(id string) {
	for i := range c.Entries {
		if c.Entries[i].ProductID == id {
			c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Entries = nil
}

// Quantity returns the stored quantity for id, or 0 when absent.
func (c *Cart) Quantity(id string) int {
	for _, e := range c.Entries {
		if e.ProductID == id {
			return e.Quantity
		}
	}
	return 0
}

// Count returns the total number of units across all entries. It backs
// the cart badge in the storefront navigation.
func (c *Cart) Count() int {
	var n int
	for _, e := range c.Entries {
		n += e.Quantity
	}
	return n
}

// IsEmpty reports whether the cart holds no entries.
func (c *Cart) IsEmpty() bool {
	return len(c.Entries) == 0
}

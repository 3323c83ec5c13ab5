package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdd_NewEntry(t *testing.T) {
	var c Cart
	c.Add("p1", 2)

	assert.Equal(t, []Entry{{ProductID: "p1", Quantity: 2}}, c.Entries)
	assert.Equal(t, 2, c.Count())
}

func TestAdd_MergesQuantity(t *testing.T) {
	var c Cart
	c.Add("p1", 2)
	c.Add("p1", 3)

	assert.Equal(t, 5, c.Quantity("p1"))
	assert.Len(t, c.Entries, 1)
}

func TestAdd_PreservesInsertionOrder(t *testing.T) {
	var c Cart
	c.Add("b", 1)
	c.Add("a", 1)
	c.Add("b", 1)

	assert.Equal(t, []Entry{
		{ProductID: "b", Quantity: 2},
		{ProductID: "a", Quantity: 1},
	}, c.Entries)
}

func TestAdd_NegativeDecrements(t *testing.T) {
	var c Cart
	c.Add("p1", 5)
	c.Add("p1", -2)

	assert.Equal(t, 3, c.Quantity("p1"))
}

func TestAdd_DropsEntryAtZeroOrBelow(t *testing.T) {
	var c Cart
	c.Add("p1", 2)
	c.Add("p1", -2)

	assert.True(t, c.IsEmpty())

	c.Add("p2", 1)
	c.Add("p2", -5)
	assert.Zero(t, c.Quantity("p2"))
	assert.True(t, c.IsEmpty())
}

func TestAdd_NonPositiveIntoEmptyIsNoop(t *testing.T) {
	var c Cart
	c.Add("p1", 0)
	c.Add("p1", -3)

	assert.True(t, c.IsEmpty())
}

func TestReplaceAll_Overwrites(t *testing.T) {
	var c Cart
	c.Add("p1", 9)
	c.Add("p2", 1)

	c.ReplaceAll(map[string]string{
		"p1": "2",
		"p3": "4",
	})

	assert.Equal(t, []Entry{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p3", Quantity: 4},
	}, c.Entries)
	assert.Zero(t, c.Quantity("p2"))
}

func TestReplaceAll_StripsFormFieldPrefix(t *testing.T) {
	var c Cart
	c.ReplaceAll(map[string]string{
		"qty_mask-cica":          "2",
		"qty_hand-cream-coconut": "1",
	})

	assert.Equal(t, 2, c.Quantity("mask-cica"))
	assert.Equal(t, 1, c.Quantity("hand-cream-coconut"))
}

func TestReplaceAll_DropsZeroNegativeAndGarbage(t *testing.T) {
	var c Cart
	c.ReplaceAll(map[string]string{
		"p1": "0",
		"p2": "-3",
		"p3": "not-a-number",
		"p4": "",
		"p5": " 2 ",
	})

	assert.Equal(t, []Entry{{ProductID: "p5", Quantity: 2}}, c.Entries)
}

func TestReplaceAll_DeterministicOrder(t *testing.T) {
	raw := map[string]string{"c": "1", "a": "1", "b": "1"}

	var c Cart
	c.ReplaceAll(raw)

	assert.Equal(t, []Entry{
		{ProductID: "a", Quantity: 1},
		{ProductID: "b", Quantity: 1},
		{ProductID: "c", Quantity: 1},
	}, c.Entries)
}

func TestReplaceAll_Idempotent(t *testing.T) {
	raw := map[string]string{"p1": "2", "p2": "0"}

	var c Cart
	c.ReplaceAll(raw)
	first := append([]Entry(nil), c.Entries...)
	c.ReplaceAll(raw)

	assert.Equal(t, first, c.Entries)
}

func TestRemove(t *testing.T) {
	var c Cart
	c.Add("p1", 1)
	c.Add("p2", 2)

	c.Remove("p1")
	assert.Equal(t, []Entry{{ProductID: "p2", Quantity: 2}}, c.Entries)

	// Removing an absent id is a no-op.
	c.Remove("p1")
	assert.Len(t, c.Entries, 1)
}

func TestClear(t *testing.T) {
	var c Cart
	c.Add("p1", 3)
	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.Zero(t, c.Count())
}

package checkout

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowshelf/storefront/internal/domain/cart"
	"github.com/glowshelf/storefront/internal/domain/catalog"
	"github.com/glowshelf/storefront/internal/session"
	"github.com/glowshelf/storefront/internal/storage/memory"
)

func newTestService(t *testing.T) (*Service, *cart.Service) {
	t.Helper()

	cat := memory.NewCatalog(
		catalog.Product{ID: "mask-cica", Name: "Cica Sheet Mask", Price: decimal.RequireFromString("129"), Category: "Sheet Masks"},
		catalog.Product{ID: "hand-cream-coconut", Name: "Coconut Hand Cream", Price: decimal.RequireFromString("89"), Category: "Hand Creams"},
	)
	sessions := session.NewMemoryStore()
	carts := cart.NewService(cat, sessions, time.Hour)
	return NewService(carts, sessions, time.Hour), carts
}

func validForm() Form {
	return Form{
		Name:          "Ada Lovelace",
		Email:         "ada@example.com",
		Address:       "12 Analytical Way",
		PaymentMethod: "card",
	}
}

func TestSubmit_MissingFields(t *testing.T) {
	svc, carts := newTestService(t)
	ctx := context.Background()
	require.NoError(t, carts.Add(ctx, "sid", "mask-cica", 1))

	tests := []struct {
		name    string
		mutate  func(*Form)
		missing []string
	}{
		{"empty name", func(f *Form) { f.Name = "" }, []string{"name"}},
		{"whitespace email", func(f *Form) { f.Email = "   " }, []string{"email"}},
		{"empty address", func(f *Form) { f.Address = "\t" }, []string{"address"}},
		{"empty payment method", func(f *Form) { f.PaymentMethod = "" }, []string{"paymentMethod"}},
		{"all empty", func(f *Form) { *f = Form{} }, []string{"name", "email", "address", "paymentMethod"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			_, err := svc.Submit(ctx, "sid", form)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.missing, vErr.Fields)

			// A rejected submission leaves the cart untouched.
			c, err := carts.Load(ctx, "sid")
			require.NoError(t, err)
			assert.Equal(t, 1, c.Quantity("mask-cica"))
		})
	}
}

func TestSubmit_EmptyCart(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), "sid", validForm())
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmit_StaleOnlyCartIsEmpty(t *testing.T) {
	svc, carts := newTestService(t)
	ctx := context.Background()

	// Entries whose products vanished from the catalog price to nothing,
	// so the cart counts as empty at submission.
	require.NoError(t, carts.Update(ctx, "sid", map[string]string{"discontinued": "2"}))

	_, err := svc.Submit(ctx, "sid", validForm())
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmit_Success(t *testing.T) {
	svc, carts := newTestService(t)
	ctx := context.Background()
	require.NoError(t, carts.Add(ctx, "sid", "mask-cica", 2))

	conf, err := svc.Submit(ctx, "sid", validForm())
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{10}$`), conf.OrderID)
	assert.Equal(t, "ada@example.com", conf.Email)

	// The cart is cleared by a successful submission.
	c, err := carts.Load(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestSubmit_TrimsEmailInConfirmation(t *testing.T) {
	svc, carts := newTestService(t)
	ctx := context.Background()
	require.NoError(t, carts.Add(ctx, "sid", "mask-cica", 1))

	form := validForm()
	form.Email = "  ada@example.com  "

	conf, err := svc.Submit(ctx, "sid", form)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", conf.Email)
}

func TestPendingOrder_SingleRead(t *testing.T) {
	svc, carts := newTestService(t)
	ctx := context.Background()
	require.NoError(t, carts.Add(ctx, "sid", "mask-cica", 1))

	submitted, err := svc.Submit(ctx, "sid", validForm())
	require.NoError(t, err)

	read, err := svc.PendingOrder(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, submitted.OrderID, read.OrderID)
	assert.Equal(t, submitted.Email, read.Email)

	// The slot is consumed by the first read.
	_, err = svc.PendingOrder(ctx, "sid")
	require.ErrorIs(t, err, ErrNoPendingOrder)
}

func TestPendingOrder_NothingStaged(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.PendingOrder(context.Background(), "sid")
	require.ErrorIs(t, err, ErrNoPendingOrder)
}

func TestNewOrderID_FormatAndUniqueness(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{10}$`)
	seen := make(map[string]struct{}, 1000)

	for range 1000 {
		id, err := newOrderID()
		require.NoError(t, err)
		require.Regexp(t, pattern, id)

		_, dup := seen[id]
		require.False(t, dup, "duplicate order id %s", id)
		seen[id] = struct{}{}
	}
}

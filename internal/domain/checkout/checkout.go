// Package checkout implements the validated transition from cart to
// order: form validation, order id minting, and the single-read
// confirmation slot.
package checkout

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/glowshelf/storefront/internal/domain/cart"
	"github.com/glowshelf/storefront/internal/session"
)

// Sentinel errors for checkout state.
var (
	// ErrEmptyCart is returned when a submission passes field validation
	// but the priced item list is empty.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNoPendingOrder is returned when the confirmation slot has
	// nothing staged, typically on a refresh of the confirmation page.
	ErrNoPendingOrder = errors.New("no pending order")
)

// orderIDAlphabet and orderIDLength define the synthetic order id format:
// 10 characters drawn from crypto/rand over [A-Z0-9], ~51 bits of
// entropy, so process-lifetime collisions are negligible.
const (
	orderIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	orderIDLength   = 10
)

// Form holds the four free-text checkout fields. Address and payment
// method are validated for presence only and never persisted beyond the
// request; the storefront implements neither real payment nor shipping.
type Form struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	PaymentMethod string `json:"paymentMethod"`
}

// trimmed returns a copy of the form with surrounding whitespace removed
// from every field.
func (f Form) trimmed() Form {
	return Form{
		Name:          strings.TrimSpace(f.Name),
		Email:         strings.TrimSpace(f.Email),
		Address:       strings.TrimSpace(f.Address),
		PaymentMethod: strings.TrimSpace(f.PaymentMethod),
	}
}

// ValidationError reports which checkout fields were empty after
// trimming. The cart is left untouched when it is returned.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Confirmation is the ephemeral order record staged for exactly one
// confirmation read.
type Confirmation struct {
	OrderID string `json:"orderId"`
	Email   string `json:"email"`
}

// Service drives the checkout flow over the session-scoped cart.
type Service struct {
	carts    *cart.Service
	sessions session.Store
	ttl      time.Duration
}

// NewService creates a checkout Service. ttl bounds how long a staged
// confirmation waits for its single read.
func NewService(carts *cart.Service, sessions session.Store, ttl time.Duration) *Service {
	return &Service{
		carts:    carts,
		sessions: sessions,
		ttl:      ttl,
	}
}

// Review returns the current priced snapshot for display. It is
// idempotent and mutates nothing.
func (s *Service) Review(ctx context.Context, sid string) (*cart.Snapshot, error) {
	snap, _, err := s.carts.View(ctx, sid)
	return snap, err
}

// Submit validates the form against the session's priced cart and, on
// success, mints an order id, clears the cart, and stages the
// confirmation for a single read.
//
// Validation order: all four fields must be non-empty after trimming
// (*ValidationError), then the priced item list must be non-empty
// (ErrEmptyCart). Both failures leave the cart untouched.
func (s *Service) Submit(ctx context.Context, sid string, form Form) (*Confirmation, error) {
	form = form.trimmed()

	var missing []string
	for _, field := range []struct {
		name, value string
	}{
		{"name", form.Name},
		{"email", form.Email},
		{"address", form.Address},
		{"paymentMethod", form.PaymentMethod},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	snap, err := s.Review(ctx, sid)
	if err != nil {
		return nil, err
	}
	if len(snap.Items) == 0 {
		return nil, ErrEmptyCart
	}

	orderID, err := newOrderID()
	if err != nil {
		return nil, errors.Wrap(err, "mint order id")
	}

	conf := &Confirmation{OrderID: orderID, Email: form.Email}
	data, err := json.Marshal(conf)
	if err != nil {
		return nil, errors.Wrap(err, "encode confirmation")
	}
	if err := s.sessions.Set(ctx, session.PendingOrderKey(sid), data, s.ttl); err != nil {
		return nil, errors.Wrap(err, "stage confirmation")
	}

	if err := s.carts.Clear(ctx, sid); err != nil {
		return nil, errors.Wrap(err, "clear cart")
	}

	return conf, nil
}

// PendingOrder consumes the staged confirmation. Exactly one read
// succeeds; any further read returns ErrNoPendingOrder.
func (s *Service) PendingOrder(ctx context.Context, sid string) (*Confirmation, error) {
	data, err := s.sessions.Take(ctx, session.PendingOrderKey(sid))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrNoPendingOrder
		}
		return nil, errors.Wrap(err, "read pending order")
	}

	var conf Confirmation
	if err := json.Unmarshal(data, &conf); err != nil {
		return nil, errors.Wrap(err, "decode confirmation")
	}
	return &conf, nil
}

// newOrderID draws orderIDLength characters from orderIDAlphabet using
// crypto/rand, rejecting bytes outside the alphabet range to keep the
// distribution uniform.
func newOrderID() (string, error) {
	id := make([]byte, 0, orderIDLength)
	buf := make([]byte, orderIDLength*2)

	for len(id) < orderIDLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			// Reject values that would bias the modulo.
			if int(b) >= 256-256%len(orderIDAlphabet) {
				continue
			}
			id = append(id, orderIDAlphabet[int(b)%len(orderIDAlphabet)])
			if len(id) == orderIDLength {
				break
			}
		}
	}

	return string(id), nil
}

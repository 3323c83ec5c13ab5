package cart

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"

	"github.com/glowshelf/storefront/internal/domain/catalog"
	"github.com/glowshelf/storefront/internal/session"
)

// Service owns the load-mutate-save cycle for a session's cart. Each
// session's cart is only touched by that session's own sequential
// requests, so there is no cross-request locking here.
type Service struct {
	products catalog.Repository
	sessions session.Store
	ttl      time.Duration
}

// NewService creates a cart Service. ttl bounds how long an untouched
// cart survives in the session store.
func NewService(products catalog.Repository, sessions session.Store, ttl time.Duration) *Service {
	return &Service{
		products: products,
		sessions: sessions,
		ttl:      ttl,
	}
}

// Load returns the session's cart, or an empty cart when none is stored.
func (s *Service) Load(ctx context.Context, sid string) (*Cart, error) {
	data, err := s.sessions.Get(ctx, session.CartKey(sid))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return &Cart{}, nil
		}
		return nil, errors.Wrap(err, "load cart")
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}
	return &c, nil
}

func (s *Service) save(ctx context.Context, sid string, c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if err := s.sessions.Set(ctx, session.CartKey(sid), data, s.ttl); err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}

// Add merges qty units of the given product into the session's cart.
// The product id must resolve in the catalog; unknown ids fail with
// catalog.ErrNotFound and leave the cart untouched.
func (s *Service) Add(ctx context.Context, sid, productID string, qty int) error {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return catalog.ErrNotFound
		}
		return errors.Wrapf(err, "resolve product %s", productID)
	}

	c, err := s.Load(ctx, sid)
	if err != nil {
		return err
	}
	c.Add(productID, qty)
	return s.save(ctx, sid, c)
}

// Update replaces the whole cart from raw form quantities. Unknown or
// stale product ids survive the overwrite; pricing drops them later.
func (s *Service) Update(ctx context.Context, sid string, raw map[string]string) error {
	c, err := s.Load(ctx, sid)
	if err != nil {
		return err
	}
	c.ReplaceAll(raw)
	return s.save(ctx, sid, c)
}

// Remove deletes one product from the session's cart. Removing an absent
// product is not an error.
func (s *Service) Remove(ctx context.Context, sid, productID string) error {
	c, err := s.Load(ctx, sid)
	if err != nil {
		return err
	}
	c.Remove(productID)
	return s.save(ctx, sid, c)
}

// Clear empties the session's cart.
func (s *Service) Clear(ctx context.Context, sid string) error {
	return s.sessions.Delete(ctx, session.CartKey(sid))
}

// View prices the session's cart and returns the snapshot together with
// the unit count for the cart badge.
func (s *Service) View(ctx context.Context, sid string) (*Snapshot, int, error) {
	c, err := s.Load(ctx, sid)
	if err != nil {
		return nil, 0, err
	}
	snap, err := ComputeSnapshot(ctx, c, s.products)
	if err != nil {
		return nil, 0, err
	}
	return snap, c.Count(), nil
}

// Package session provides the session-scoped key-value storage backing
// carts, pending-order confirmations, and admin login flags. Values are
// opaque bytes; callers decide the encoding.
package session

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a key is absent or its entry has expired.
var ErrNotFound = errors.New("session key not found")

// Store is the session-scoped key-value contract. Keys are already
// namespaced per session by the Key helpers below; a Store only needs to
// honour TTLs and the single-use Take semantics.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Take reads and deletes the value in one step. It backs the
	// single-read pending-order slot: a second Take (or Get) for the same
	// key returns ErrNotFound.
	Take(ctx context.Context, key string) ([]byte, error)
}

// CartKey returns the storage key for a session's cart.
func CartKey(sid string) string { return "sess:" + sid + ":cart" }

// PendingOrderKey returns the storage key for a session's single-use
// order confirmation slot.
func PendingOrderKey(sid string) string { return "sess:" + sid + ":pending_order" }

// AdminKey returns the storage key for a session's admin login flag.
func AdminKey(sid string) string { return "sess:" + sid + ":admin" }

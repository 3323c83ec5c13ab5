// Package admin implements the storefront's rudimentary admin login: a
// credential check against two configured secrets and a session-scoped
// login flag.
package admin

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"time"

	"github.com/go-faster/errors"

	"github.com/glowshelf/storefront/internal/session"
)

// ErrInvalidCredentials is returned when the supplied username/password
// pair does not match the configured secrets.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service checks admin credentials and tracks login state per session.
type Service struct {
	usernameMAC []byte
	passwordMAC []byte
	sessions    session.Store
	ttl         time.Duration
}

// NewService creates an admin Service for the configured credential
// pair. The secrets are stored as HMAC-SHA256 digests so comparisons are
// constant-time and the plaintext does not linger in memory longer than
// construction.
func NewService(username, password string, sessions session.Store, ttl time.Duration) *Service {
	return &Service{
		usernameMAC: digest(username),
		passwordMAC: digest(password),
		sessions:    sessions,
		ttl:         ttl,
	}
}

func digest(secret string) []byte {
	mac := hmac.New(sha256.New, []byte("storefront-admin"))
	mac.Write([]byte(secret))
	return mac.Sum(nil)
}

// Login verifies the credentials and, on success, marks the session as
// an admin session for the configured TTL. Both digests are always
// compared so the timing does not reveal which field was wrong.
func (s *Service) Login(ctx context.Context, sid, username, password string) error {
	userOK := hmac.Equal(digest(username), s.usernameMAC)
	passOK := hmac.Equal(digest(password), s.passwordMAC)
	if !userOK || !passOK {
		return ErrInvalidCredentials
	}

	if err := s.sessions.Set(ctx, session.AdminKey(sid), []byte("1"), s.ttl); err != nil {
		return errors.Wrap(err, "mark admin session")
	}
	return nil
}

// Logout clears the session's admin flag. Logging out a session that was
// never logged in is a no-op.
func (s *Service) Logout(ctx context.Context, sid string) error {
	return s.sessions.Delete(ctx, session.AdminKey(sid))
}

// IsAdmin reports whether the session holds a live admin flag.
func (s *Service) IsAdmin(ctx context.Context, sid string) (bool, error) {
	_, err := s.sessions.Get(ctx, session.AdminKey(sid))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return false, nil
		}
		return false, errors.Wrap(err, "check admin session")
	}
	return true, nil
}

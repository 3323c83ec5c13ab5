package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// sessionCookie names the cookie carrying the session id.
const sessionCookie = "storefront_sid"

type sessionIDKey struct{}

// sessionID extracts the session id installed by withSession.
func sessionID(ctx context.Context) string {
	if sid, ok := ctx.Value(sessionIDKey{}).(string); ok {
		return sid
	}
	return ""
}

// withSession ensures every request carries a session id. A valid
// incoming cookie is reused; otherwise a new UUID is minted and set on
// the response. The cart, pending order, and admin flag all key off it.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sid string
		if c, err := r.Cookie(sessionCookie); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				sid = c.Value
			}
		}

		if sid == "" {
			sid = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sid,
				Path:     "/",
				HttpOnly: true,
				Secure:   h.cfg.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), sessionIDKey{}, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin rejects requests whose session has no live admin flag.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, err := h.admin.IsAdmin(r.Context(), sessionID(r.Context()))
		if err != nil {
			writeInternalError(w, r, err)
			return
		}
		if !ok {
			writeError(w, http.StatusUnauthorized, "admin login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

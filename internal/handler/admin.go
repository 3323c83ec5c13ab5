package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/glowshelf/storefront/internal/domain/admin"
	"github.com/glowshelf/storefront/internal/domain/catalog"
)

type adminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type upsertProductRequest struct {
	ID          string          `json:"id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"required"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
}

// adminLogin checks the configured credentials and marks the session.
func (h *Handler) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.admin.Login(r.Context(), sessionID(r.Context()), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, admin.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeInternalError(w, r, errors.Wrap(err, "admin login"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// adminLogout clears the session's admin flag.
func (h *Handler) adminLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.Logout(r.Context(), sessionID(r.Context())); err != nil {
		writeInternalError(w, r, errors.Wrap(err, "admin logout"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// upsertProduct creates or replaces a catalog product.
func (h *Handler) upsertProduct(w http.ResponseWriter, r *http.Request) {
	var req upsertProductRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	err := h.writer.Upsert(r.Context(), catalog.Product{
		ID:          req.ID,
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Image:       req.Image,
		Description: req.Description,
	})
	if err != nil {
		writeInternalError(w, r, errors.Wrap(err, "upsert product"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteProduct removes a catalog product. Carts referencing it keep
// their entries; pricing drops them as stale.
func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.writer.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeInternalError(w, r, errors.Wrap(err, "delete product"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

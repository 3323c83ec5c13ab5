// Package handler exposes the storefront over HTTP: catalog browsing,
// cart mutation, checkout, and the admin surface.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/glowshelf/storefront/internal/domain/admin"
	"github.com/glowshelf/storefront/internal/domain/cart"
	"github.com/glowshelf/storefront/internal/domain/catalog"
	"github.com/glowshelf/storefront/internal/domain/checkout"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product
	// responses. When empty, image paths are returned as stored.
	ImageBaseURL string
	// SecureCookies marks the session cookie Secure; enable behind TLS.
	SecureCookies bool
}

// Handler wires the domain services to the HTTP surface.
type Handler struct {
	cfg      Config
	products catalog.Repository
	writer   catalog.Writer
	carts    *cart.Service
	checkout *checkout.Service
	admin    *admin.Service
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	products catalog.Repository,
	writer catalog.Writer,
	carts *cart.Service,
	checkoutSvc *checkout.Service,
	adminSvc *admin.Service,
) *Handler {
	return &Handler{
		cfg:      cfg,
		products: products,
		writer:   writer,
		carts:    carts,
		checkout: checkoutSvc,
		admin:    adminSvc,
	}
}

// Routes returns the API router. Every route runs behind the session
// cookie middleware; admin mutation routes additionally require a live
// admin session.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(h.withSession)

	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Get("/categories", h.listCategories)

	r.Get("/cart", h.viewCart)
	r.Post("/cart/items", h.addToCart)
	r.Put("/cart", h.updateCart)
	r.Delete("/cart/items/{id}", h.removeFromCart)

	r.Get("/checkout", h.reviewCheckout)
	r.Post("/checkout", h.submitCheckout)
	r.Get("/checkout/confirmation", h.readPendingOrder)

	r.Post("/admin/login", h.adminLogin)
	r.Post("/admin/logout", h.adminLogout)
	r.Group(func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Put("/admin/products", h.upsertProduct)
		r.Delete("/admin/products/{id}", h.deleteProduct)
	})

	return r
}

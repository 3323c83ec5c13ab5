package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/glowshelf/storefront/internal/domain/cart"
	"github.com/glowshelf/storefront/internal/domain/catalog"
)

// cartResponse is the wire shape of a priced cart snapshot.
type cartResponse struct {
	Items []cartItemResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
	Count int                `json:"count"`
}

type cartItemResponse struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func (h *Handler) toCartResponse(snap *cart.Snapshot, count int) cartResponse {
	items := make([]cartItemResponse, len(snap.Items))
	for i, it := range snap.Items {
		image := it.Image
		if image != "" && h.cfg.ImageBaseURL != "" && !isAbsoluteURL(image) {
			image = h.cfg.ImageBaseURL + image
		}
		items[i] = cartItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     image,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal,
		}
	}
	return cartResponse{Items: items, Total: snap.Total, Count: count}
}

type addToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	// Quantity defaults to 1 when omitted. Negative values decrement.
	Quantity *int `json:"quantity"`
}

type updateCartRequest struct {
	// Quantities maps product id (optionally prefixed with the qty_
	// form-field name) to a raw quantity string.
	Quantities map[string]string `json:"quantities" validate:"required"`
}

// viewCart returns the session's priced cart snapshot.
func (h *Handler) viewCart(w http.ResponseWriter, r *http.Request) {
	snap, count, err := h.carts.View(r.Context(), sessionID(r.Context()))
	if err != nil {
		writeInternalError(w, r, errors.Wrap(err, "view cart"))
		return
	}
	writeJSON(w, http.StatusOK, h.toCartResponse(snap, count))
}

// addToCart merges a product into the session's cart.
func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if !decodeBody(w, r, &req) {
		return
	}

	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	err := h.carts.Add(r.Context(), sessionID(r.Context()), req.ProductID, qty)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeInternalError(w, r, errors.Wrap(err, "add to cart"))
		return
	}

	snap, count, err := h.carts.View(r.Context(), sessionID(r.Context()))
	if err != nil {
		writeInternalError(w, r, errors.Wrap(err, "view cart"))
		return
	}
	writeJSON(w, http.StatusOK, h.toCartResponse(snap, count))
}

// updateCart replaces the whole cart from raw quantity strings.
func (h *Handler) updateCart(w http.ResponseWriter, r *http.Request) {
	var req updateCartRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.carts.Update(r.Context(), sessionID(r.Context()), req.Quantities); err != nil {
		writeInternalError(w, r, errors.Wrap(err, "update cart"))
		return
	}

	snap, count, err := h.carts.View(r.Context(), sessionID(r.Context()))
	if err != nil {
		writeInternalError(w, r, errors.Wrap(err, "view cart"))
		return
	}
	writeJSON(w, http.StatusOK, h.toCartResponse(snap, count))
}

// removeFromCart deletes one product from the cart. Always 204; removing
// an absent product is not an error.
func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.carts.Remove(r.Context(), sessionID(r.Context()), id); err != nil {
		writeInternalError(w, r, errors.Wrap(err, "remove from cart"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

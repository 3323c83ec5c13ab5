package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/glowshelf/storefront/internal/domain/checkout"
)

type confirmationResponse struct {
	OrderID string `json:"orderId"`
	Email   string `json:"email"`
}

// reviewCheckout returns the priced snapshot for the review phase. Same
// shape as viewCart; the split mirrors the two checkout phases.
func (h *Handler) reviewCheckout(w http.ResponseWriter, r *http.Request) {
	snap, count, err := h.carts.View(r.Context(), sessionID(r.Context()))
	if err != nil {
		writeInternalError(w, r, errors.Wrap(err, "review checkout"))
		return
	}
	writeJSON(w, http.StatusOK, h.toCartResponse(snap, count))
}

// submitCheckout validates the order form and, on success, returns the
// minted confirmation. Field validation failures come back as 400 with
// the offending fields; an empty cart is 409.
func (h *Handler) submitCheckout(w http.ResponseWriter, r *http.Request) {
	var form checkout.Form
	if !decodeBody(w, r, &form) {
		return
	}

	conf, err := h.checkout.Submit(r.Context(), sessionID(r.Context()), form)
	if err != nil {
		var vErr *checkout.ValidationError
		switch {
		case errors.As(err, &vErr):
			writeError(w, http.StatusBadRequest, vErr.Error())
		case errors.Is(err, checkout.ErrEmptyCart):
			writeError(w, http.StatusConflict, "cart is empty")
		default:
			writeInternalError(w, r, errors.Wrap(err, "submit checkout"))
		}
		return
	}

	writeJSON(w, http.StatusCreated, confirmationResponse{
		OrderID: conf.OrderID,
		Email:   conf.Email,
	})
}

// readPendingOrder consumes the single-read confirmation. A second read
// (page refresh) finds nothing and returns 404 so the client can fall
// back to the catalog view.
func (h *Handler) readPendingOrder(w http.ResponseWriter, r *http.Request) {
	conf, err := h.checkout.PendingOrder(r.Context(), sessionID(r.Context()))
	if err != nil {
		if errors.Is(err, checkout.ErrNoPendingOrder) {
			writeError(w, http.StatusNotFound, "no pending order")
			return
		}
		writeInternalError(w, r, errors.Wrap(err, "read pending order"))
		return
	}

	writeJSON(w, http.StatusOK, confirmationResponse{
		OrderID: conf.OrderID,
		Email:   conf.Email,
	})
}

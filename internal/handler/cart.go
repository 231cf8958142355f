package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/dhruvnair/bazaarkart/internal/domain/session"
)

type cartSelectionRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type cartRequest struct {
	Selections []cartSelectionRequest `json:"selections" validate:"dive"`
}

// getCart returns the stored session cart. An unknown session yields an
// empty cart rather than 404: a fresh browser simply has nothing in it yet.
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")

	c, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeJSON(w, http.StatusOK, session.Cart{
				SessionID:  sessionID,
				Selections: []session.Selection{},
			})
			return
		}
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// putCart replaces the session cart wholesale. The client owns the cart
// content; the server only persists it between visits.
func (h *Handler) putCart(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if !h.decode(w, r, &req) {
		return
	}

	c := &session.Cart{
		SessionID:  r.PathValue("sessionID"),
		Selections: make([]session.Selection, len(req.Selections)),
		UpdatedAt:  time.Now().UTC(),
	}
	for i, sel := range req.Selections {
		c.Selections[i] = session.Selection{ProductID: sel.ProductID, Quantity: sel.Quantity}
	}

	if err := h.sessions.Set(r.Context(), c); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// clearCart drops the session cart.
func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(r.Context(), r.PathValue("sessionID")); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "cart cleared"})
}

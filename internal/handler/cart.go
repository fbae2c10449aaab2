package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/grocer/internal/cart"
	"github.com/dukerupert/grocer/internal/model"
)

// CartHandler serves cart reads and mutations.
type CartHandler struct {
	cart   *cart.Service
	logger *slog.Logger
}

func NewCartHandler(c *cart.Service, logger *slog.Logger) *CartHandler {
	return &CartHandler{cart: c, logger: logger}
}

func (h *CartHandler) items() []model.GroceryItem {
	items := h.cart.Items()
	if items == nil {
		items = []model.GroceryItem{}
	}
	return items
}

func (h *CartHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.items())
}

func (h *CartHandler) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cart.Summary())
}

// AddItem responds with the whole cart so clients need no second fetch.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.cart.Add(id); err != nil {
		h.writeCartError(w, "add to cart", err)
		return
	}

	writeJSON(w, http.StatusCreated, h.items())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.cart.Remove(id); err != nil {
		h.writeCartError(w, "remove from cart", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.cart.Toggle(id); err != nil {
		h.writeCartError(w, "toggle completion", err)
		return
	}

	writeJSON(w, http.StatusOK, h.items())
}

func (h *CartHandler) writeCartError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, cart.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, cart.ErrAlreadyInCart):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("cart operation failed", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to "+op)
	}
}

package rpc

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dukerupert/grocer/internal/cart"
	"github.com/dukerupert/grocer/internal/catalog"
	"github.com/dukerupert/grocer/internal/model"
)

// Method names of the service surface.
const (
	MethodGetCategories        = "getCategories"
	MethodGetCartItems         = "getCartItems"
	MethodAddToCart            = "addToCart"
	MethodRemoveFromCart       = "removeFromCart"
	MethodToggleItemCompletion = "toggleItemCompletion"
)

// Names used by clients of the earlier list-only interface.
var aliases = map[string]string{
	"getItems":   MethodGetCartItems,
	"removeItem": MethodRemoveFromCart,
}

const maxBodyBytes = 4 << 10

var errMissingID = errors.New("id is required")

type idRequest struct {
	ID *uint64 `json:"id"`
}

type method struct {
	needsID bool
	call    func(id uint64) any
}

// Handler serves POST /rpc/{method} with a JSON body of {"id": n} for the
// mutating methods.
type Handler struct {
	methods map[string]method
	logger  *slog.Logger
}

// NewHandler serves the catalog and cart methods.
func NewHandler(c *catalog.Store, svc *cart.Service, logger *slog.Logger) *Handler {
	h := &Handler{logger: logger}
	h.methods = map[string]method{
		MethodGetCategories: {call: func(uint64) any {
			return c.ListCategories()
		}},
		MethodGetCartItems: {call: func(uint64) any {
			items := svc.Items()
			if items == nil {
				items = []model.GroceryItem{}
			}
			return items
		}},
		MethodAddToCart: {needsID: true, call: func(id uint64) any {
			return FromError(svc.Add(id))
		}},
		MethodRemoveFromCart: {needsID: true, call: func(id uint64) any {
			return FromError(svc.Remove(id))
		}},
		MethodToggleItemCompletion: {needsID: true, call: func(id uint64) any {
			return FromError(svc.Toggle(id))
		}},
	}
	return h
}

// Mutating reports whether name changes cart state, so routers can apply
// rate limits only to those calls.
func Mutating(name string) bool {
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	switch name {
	case MethodAddToCart, MethodRemoveFromCart, MethodToggleItemCompletion:
		return true
	}
	return false
}

// ServeHTTP expects the method name in the {method} path value.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("method")
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	m, ok := h.methods[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown method"})
		return
	}

	var id uint64
	if m.needsID {
		var err error
		id, err = decodeID(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	out := m.call(id)
	if res, ok := out.(Result); ok {
		if reason, failed := res.Reason(); failed {
			h.logger.Debug("rpc call failed", "method", name, "id", id, "reason", reason)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func decodeID(body io.Reader) (uint64, error) {
	var req idRequest
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, errMissingID
		}
		return 0, errors.New("invalid JSON: id must be an unsigned integer")
	}
	if req.ID == nil {
		return 0, errMissingID
	}
	return *req.ID, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

package handler

import (
	"net/http"
	"strings"

	"github.com/dukerupert/grocer/internal/catalog"
	"github.com/dukerupert/grocer/internal/model"
)

// CatalogHandler serves the read-only catalog.
type CatalogHandler struct {
	catalog *catalog.Store
}

func NewCatalogHandler(c *catalog.Store) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.ListCategories())
}

// GetItem returns one catalog item together with its category name.
func (h *CatalogHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, ok := h.catalog.FindItem(id)
	if !ok {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	category, _ := h.catalog.CategoryOf(id)

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       item.ID,
		"name":     item.Name,
		"emoji":    item.Emoji,
		"category": category,
	})
}

// Search returns catalog items matching the q query parameter.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	items := h.catalog.Search(q)
	if items == nil {
		items = []model.CategoryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

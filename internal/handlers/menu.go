package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mak-braai/pos/internal/domain"
)

// MenuHandlers serves the static catalog.
type MenuHandlers struct {
	catalog func() []domain.CatalogItem
}

// NewMenuHandlers constructs handlers over the given catalog source.
func NewMenuHandlers(catalog func() []domain.CatalogItem) *MenuHandlers {
	if catalog == nil {
		catalog = domain.Menu
	}
	return &MenuHandlers{catalog: catalog}
}

// Routes wires the /menu endpoints onto the provided router.
func (h *MenuHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listMenu)
}

func (h *MenuHandlers) listMenu(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"items": h.catalog(),
	})
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mak-braai/pos/internal/state"
)

// StorageHandlers surfaces the degraded-storage notice so clients can warn
// the operator and dismiss the warning.
type StorageHandlers struct {
	store state.Store
}

// NewStorageHandlers constructs storage notice handlers backed by the store.
func NewStorageHandlers(store state.Store) *StorageHandlers {
	return &StorageHandlers{store: store}
}

// Routes wires the /storage endpoints onto the provided router.
func (h *StorageHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/notice", h.getNotice)
	r.Delete("/notice", h.dismissNotice)
}

func (h *StorageHandlers) getNotice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	payload := map[string]any{
		"warning": h.store.StorageWarning(ctx),
	}
	if payload["warning"] == true {
		payload["message"] = "Persistent storage is unavailable. Orders and cart changes are kept in memory only."
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *StorageHandlers) dismissNotice(w http.ResponseWriter, r *http.Request) {
	h.store.DismissStorageWarning(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

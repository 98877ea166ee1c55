package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mak-braai/pos/internal/platform/httpx"
	"github.com/mak-braai/pos/internal/state"
)

// AdminHandlers exposes the dashboard analytics and settings endpoints.
type AdminHandlers struct {
	store state.Store
	clock func() time.Time
}

// NewAdminHandlers constructs admin handlers backed by the store.
func NewAdminHandlers(store state.Store, clock func() time.Time) *AdminHandlers {
	if clock == nil {
		clock = time.Now
	}
	return &AdminHandlers{store: store, clock: clock}
}

// Routes wires the /admin endpoints onto the provided router.
func (h *AdminHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/stats", h.dailyStats)
	r.Get("/settings", h.getSettings)
	r.Patch("/settings", h.patchSettings)
	r.Post("/reset", h.reset)
}

// dailyStats reports the order stats for ?date=YYYY-MM-DD, defaulting to today.
func (h *AdminHandlers) dailyStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	day := h.clock()
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, day.Location())
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "date must be formatted YYYY-MM-DD", http.StatusBadRequest))
			return
		}
		day = parsed
	}

	writeJSONResponse(w, http.StatusOK, h.store.DailyStats(ctx, day))
}

func (h *AdminHandlers) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"settings": h.store.AdminSettings(r.Context()),
	})
}

func (h *AdminHandlers) patchSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var patch map[string]any
	if err := decodeJSONBody(r, &patch); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	if len(patch) == 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "nothing to update", http.StatusBadRequest))
		return
	}

	settings := h.store.UpdateAdminSettings(ctx, patch)
	writeJSONResponse(w, http.StatusOK, map[string]any{"settings": settings})
}

func (h *AdminHandlers) reset(w http.ResponseWriter, r *http.Request) {
	h.store.Reset(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

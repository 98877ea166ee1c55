package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/mak-braai/pos/internal/platform/httpx"
)

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	clock     func() time.Time
	startedAt time.Time
	ready     func(ctx context.Context) bool
}

// HealthOption customises the health handlers.
type HealthOption func(*HealthHandlers)

// WithHealthClock overrides the clock, mainly for tests.
func WithHealthClock(clock func() time.Time) HealthOption {
	return func(h *HealthHandlers) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// WithReadinessProbe sets the check behind /readyz, typically the storage
// backend probe.
func WithReadinessProbe(probe func(ctx context.Context) bool) HealthOption {
	return func(h *HealthHandlers) {
		h.ready = probe
	}
}

// NewHealthHandlers constructs health handlers with sensible defaults.
func NewHealthHandlers(opts ...HealthOption) *HealthHandlers {
	h := &HealthHandlers{
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.startedAt = h.clock()
	return h
}

// Healthz responds with a simple status payload for monitoring.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	now := h.clock()
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    now.Sub(h.startedAt).String(),
		"timestamp": now.UTC().Format(time.RFC3339),
	})
}

// Readyz reports whether the service can persist state. The store keeps
// working on its in-memory fallback either way, so a failing probe is
// informational rather than fatal.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil && !h.ready(r.Context()) {
		httpx.WriteError(r.Context(), w, httpx.NewError("storage_unavailable", "persistent storage is unavailable", http.StatusServiceUnavailable))
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"status": "ready"})
}

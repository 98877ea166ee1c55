package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mak-braai/pos/internal/domain"
	"github.com/mak-braai/pos/internal/platform/httpx"
	"github.com/mak-braai/pos/internal/state"
)

// OrderHandlers exposes order tracking and the kitchen status workflow.
type OrderHandlers struct {
	store state.Store
}

// NewOrderHandlers constructs order handlers backed by the store.
func NewOrderHandlers(store state.Store) *OrderHandlers {
	return &OrderHandlers{store: store}
}

// Routes wires the /orders endpoints onto the provided router.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listOrders)
	r.Get("/{orderID}", h.getOrder)
	r.Patch("/{orderID}/status", h.updateStatus)
	r.Post("/{orderID}/cancel", h.cancelOrder)
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var orders []domain.Order
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, ok := domain.ParseOrderStatus(raw)
		if !ok {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unknown status filter", http.StatusBadRequest))
			return
		}
		orders = h.store.OrdersByStatus(ctx, status)
	} else {
		orders = h.store.Orders(ctx)
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	order, err := h.store.OrderByID(ctx, chi.URLParam(r, "orderID"))
	if err != nil {
		writeStoreError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"order": order})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateStatusRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	status, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "status must be one of pending, preparing, ready, completed, cancelled", http.StatusBadRequest))
		return
	}

	order, err := h.store.UpdateOrderStatus(ctx, chi.URLParam(r, "orderID"), status)
	if err != nil {
		writeStoreError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"order": order})
}

func (h *OrderHandlers) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	order, err := h.store.CancelOrder(ctx, chi.URLParam(r, "orderID"))
	if err != nil {
		writeStoreError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"order": order})
}

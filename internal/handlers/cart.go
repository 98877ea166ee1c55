package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mak-braai/pos/internal/domain"
	"github.com/mak-braai/pos/internal/platform/httpx"
	"github.com/mak-braai/pos/internal/state"
)

// CartHandlers exposes the cart command and query endpoints.
type CartHandlers struct {
	store   state.Store
	catalog func() []domain.CatalogItem
}

// NewCartHandlers constructs handlers backed by the store and catalog.
func NewCartHandlers(store state.Store, catalog func() []domain.CatalogItem) *CartHandlers {
	if catalog == nil {
		catalog = domain.Menu
	}
	return &CartHandlers{store: store, catalog: catalog}
}

// Routes wires the /cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getCart)
	r.Delete("/", h.clearCart)
	r.Post("/items", h.addItem)
	r.Patch("/items/{itemID}", h.updateLine)
	r.Delete("/items/{itemID}", h.removeItem)
}

type cartPayload struct {
	Items     []domain.CartLine `json:"items"`
	Total     int64             `json:"total"`
	ItemCount int               `json:"itemCount"`
}

func (h *CartHandlers) cartPayload(ctx context.Context) cartPayload {
	return cartPayload{
		Items:     h.store.CartLines(ctx),
		Total:     h.store.TotalValue(ctx),
		ItemCount: h.store.ItemCount(ctx),
	}
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.cartPayload(r.Context()))
}

type addItemRequest struct {
	ItemID          string `json:"itemId"`
	Quantity        int    `json:"quantity"`
	SelectedPortion string `json:"selectedPortion"`
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addItemRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, ok := h.lookupItem(req.ItemID)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("item_not_found", fmt.Sprintf("no menu item with id %q", req.ItemID), http.StatusNotFound))
		return
	}

	if _, err := h.store.AddToCart(ctx, item, req.Quantity, strings.TrimSpace(req.SelectedPortion)); err != nil {
		writeStoreError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.cartPayload(ctx))
}

type updateLineRequest struct {
	Quantity        *int    `json:"quantity"`
	SelectedPortion *string `json:"selectedPortion"`
}

func (h *CartHandlers) updateLine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateLineRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	if req.Quantity == nil && req.SelectedPortion == nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "nothing to update", http.StatusBadRequest))
		return
	}

	cmd := state.UpdateCartLineCommand{
		ItemID:          chi.URLParam(r, "itemID"),
		Quantity:        req.Quantity,
		SelectedPortion: req.SelectedPortion,
	}
	if _, err := h.store.UpdateCartLine(ctx, cmd); err != nil {
		writeStoreError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.cartPayload(ctx))
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := h.store.RemoveFromCart(ctx, chi.URLParam(r, "itemID")); err != nil {
		writeStoreError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.cartPayload(ctx))
}

func (h *CartHandlers) clearCart(w http.ResponseWriter, r *http.Request) {
	h.store.ClearCart(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandlers) lookupItem(itemID string) (domain.CatalogItem, bool) {
	for _, item := range h.catalog() {
		if item.ID == itemID {
			return item, true
		}
	}
	return domain.CatalogItem{}, false
}

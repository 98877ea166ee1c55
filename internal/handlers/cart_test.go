package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mak-braai/pos/internal/domain"
	"github.com/mak-braai/pos/internal/state"
)

func cartRouter(store state.Store) chi.Router {
	r := chi.NewRouter()
	NewCartHandlers(store, domain.Menu).Routes(r)
	return r
}

func TestGetCartReturnsPayload(t *testing.T) {
	store := &stubStore{
		CartLinesFunc: func(context.Context) []domain.CartLine {
			return []domain.CartLine{{
				CatalogItem: domain.CatalogItem{ID: "1", Name: "Beef", Price: 2500},
				Quantity:    2,
			}}
		},
		TotalValueFunc: func(context.Context) int64 { return 5000 },
		ItemCountFunc:  func(context.Context) int { return 2 },
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	cartRouter(store).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body struct {
		Items     []domain.CartLine `json:"items"`
		Total     int64             `json:"total"`
		ItemCount int               `json:"itemCount"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Total != 5000 || body.ItemCount != 2 || len(body.Items) != 1 {
		t.Fatalf("unexpected payload %+v", body)
	}
}

func TestAddItemResolvesCatalogItem(t *testing.T) {
	var added domain.CatalogItem
	var quantity int
	var portion string
	store := &stubStore{
		AddToCartFunc: func(_ context.Context, item domain.CatalogItem, qty int, selectedPortion string) ([]domain.CartLine, error) {
			added, quantity, portion = item, qty, selectedPortion
			return []domain.CartLine{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"itemId":"2","quantity":3,"selectedPortion":"4 pieces"}`))
	rr := httptest.NewRecorder()
	cartRouter(store).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if added.Name != "Sausage" || added.Price != 2500 {
		t.Fatalf("expected catalog item resolved, got %+v", added)
	}
	if quantity != 3 || portion != "4 pieces" {
		t.Fatalf("unexpected quantity/portion %d %q", quantity, portion)
	}
}

func TestAddItemUnknownItem(t *testing.T) {
	store := &stubStore{}

	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"itemId":"99"}`))
	rr := httptest.NewRecorder()
	cartRouter(store).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["error"] != "item_not_found" {
		t.Fatalf("unexpected error code %v", body["error"])
	}
}

func TestAddItemDefaultsQuantityToOne(t *testing.T) {
	var quantity int
	store := &stubStore{
		AddToCartFunc: func(_ context.Context, _ domain.CatalogItem, qty int, _ string) ([]domain.CartLine, error) {
			quantity = qty
			return []domain.CartLine{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"itemId":"1"}`))
	rr := httptest.NewRecorder()
	cartRouter(store).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if quantity != 1 {
		t.Fatalf("expected default quantity 1, got %d", quantity)
	}
}

func TestUpdateLinePassesPatchFields(t *testing.T) {
	var got state.UpdateCartLineCommand
	store := &stubStore{
		UpdateCartLineFunc: func(_ context.Context, cmd state.UpdateCartLineCommand) ([]domain.CartLine, error) {
			got = cmd
			return []domain.CartLine{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/items/1", strings.NewReader(`{"quantity":5}`))
	rr := httptest.NewRecorder()
	cartRouter(store).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.ItemID != "1" {
		t.Fatalf("expected item id from path, got %q", got.ItemID)
	}
	if got.Quantity == nil || *got.Quantity != 5 {
		t.Fatalf("expected quantity pointer 5, got %v", got.Quantity)
	}
	if got.SelectedPortion != nil {
		t.Fatal("expected portion left nil")
	}
}

func TestUpdateLineRejectsEmptyPatch(t *testing.T) {
	store := &stubStore{}

	req := httptest.NewRequest(http.MethodPatch, "/items/1", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	cartRouter(store).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestUpdateLineUnknownItem(t *testing.T) {
	store := &stubStore{
		UpdateCartLineFunc: func(_ context.Context, cmd state.UpdateCartLineCommand) ([]domain.CartLine, error) {
			return nil, state.ErrInvalidInput
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/items/99", strings.NewReader(`{"quantity":5}`))
	rr := httptest.NewRecorder()
	cartRouter(store).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestRemoveItem(t *testing.T) {
	var removed string
	store := &stubStore{
		RemoveFromCartFunc: func(_ context.Context, itemID string) ([]domain.CartLine, error) {
			removed = itemID
			return []domain.CartLine{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/items/3", nil)
	rr := httptest.NewRecorder()
	cartRouter(store).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if removed != "3" {
		t.Fatalf("expected item 3 removed, got %q", removed)
	}
}

func TestClearCart(t *testing.T) {
	cleared := false
	store := &stubStore{
		ClearCartFunc: func(context.Context) { cleared = true },
	}

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rr := httptest.NewRecorder()
	cartRouter(store).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if !cleared {
		t.Fatal("expected ClearCart to be called")
	}
}

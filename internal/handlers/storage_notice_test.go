package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mak-braai/pos/internal/state"
)

func storageRouter(store state.Store) chi.Router {
	r := chi.NewRouter()
	NewStorageHandlers(store).Routes(r)
	return r
}

func TestGetNoticeWhenDegraded(t *testing.T) {
	store := &stubStore{
		StorageWarningFunc: func(context.Context) bool { return true },
	}

	req := httptest.NewRequest(http.MethodGet, "/notice", nil)
	rr := httptest.NewRecorder()
	storageRouter(store).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["warning"] != true {
		t.Fatalf("expected warning true, got %v", body["warning"])
	}
	if body["message"] == "" {
		t.Fatal("expected a warning message")
	}
}

func TestGetNoticeWhenHealthy(t *testing.T) {
	store := &stubStore{}

	req := httptest.NewRequest(http.MethodGet, "/notice", nil)
	rr := httptest.NewRecorder()
	storageRouter(store).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["warning"] != false {
		t.Fatalf("expected warning false, got %v", body["warning"])
	}
}

func TestDismissNotice(t *testing.T) {
	dismissed := false
	store := &stubStore{
		DismissStorageWarningFunc: func(context.Context) { dismissed = true },
	}

	req := httptest.NewRequest(http.MethodDelete, "/notice", nil)
	rr := httptest.NewRecorder()
	storageRouter(store).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if !dismissed {
		t.Fatal("expected DismissStorageWarning to be called")
	}
}

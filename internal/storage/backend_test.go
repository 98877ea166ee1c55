package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mak-braai/pos/internal/domain"
)

type stubMedium struct {
	ReadFunc   func(ctx context.Context, key string) ([]byte, error)
	WriteFunc  func(ctx context.Context, key string, value []byte) error
	DeleteFunc func(ctx context.Context, key string) error
}

func (s *stubMedium) Read(ctx context.Context, key string) ([]byte, error) {
	if s.ReadFunc == nil {
		return nil, ErrNotFound
	}
	return s.ReadFunc(ctx, key)
}

func (s *stubMedium) Write(ctx context.Context, key string, value []byte) error {
	if s.WriteFunc == nil {
		return nil
	}
	return s.WriteFunc(ctx, key, value)
}

func (s *stubMedium) Delete(ctx context.Context, key string) error {
	if s.DeleteFunc == nil {
		return nil
	}
	return s.DeleteFunc(ctx, key)
}

func mapMedium() (*stubMedium, map[string][]byte) {
	records := map[string][]byte{}
	return &stubMedium{
		ReadFunc: func(_ context.Context, key string) ([]byte, error) {
			value, ok := records[key]
			if !ok {
				return nil, ErrNotFound
			}
			return value, nil
		},
		WriteFunc: func(_ context.Context, key string, value []byte) error {
			records[key] = append([]byte(nil), value...)
			return nil
		},
		DeleteFunc: func(_ context.Context, key string) error {
			delete(records, key)
			return nil
		},
	}, records
}

func TestNewBackendRequiresMedium(t *testing.T) {
	if _, err := NewBackend(BackendDeps{}); err == nil {
		t.Fatal("expected error for missing medium")
	}
}

func TestBackendProbe(t *testing.T) {
	medium, records := mapMedium()
	backend, err := NewBackend(BackendDeps{Medium: medium})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	if !backend.Probe(context.Background()) {
		t.Fatal("expected probe to succeed on healthy medium")
	}
	if len(records) != 0 {
		t.Fatalf("expected probe key to be cleaned up, found %d records", len(records))
	}

	medium.WriteFunc = func(context.Context, string, []byte) error {
		return errors.New("medium down")
	}
	if backend.Probe(context.Background()) {
		t.Fatal("expected probe to fail on broken medium")
	}
}

func TestBackendSaveLoadRoundTrip(t *testing.T) {
	medium, _ := mapMedium()
	backend, err := NewBackend(BackendDeps{Medium: medium, Namespace: "test-data"})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	cart := []domain.CartLine{{
		CatalogItem:     domain.CatalogItem{ID: "1", Name: "Beef", Price: 2500},
		Quantity:        2,
		SelectedPortion: "2 pieces",
	}}
	backend.Save(context.Background(), Partial{Cart: &cart})

	bundle := backend.Load(context.Background())
	if len(bundle.Cart) != 1 {
		t.Fatalf("expected 1 cart line, got %d", len(bundle.Cart))
	}
	if bundle.Cart[0].Quantity != 2 || bundle.Cart[0].SelectedPortion != "2 pieces" {
		t.Fatalf("unexpected cart line %+v", bundle.Cart[0])
	}
	if bundle.Orders == nil || bundle.AdminSettings == nil {
		t.Fatal("expected untouched fields to stay non-nil")
	}
	if backend.Degraded() {
		t.Fatal("healthy medium must not degrade the backend")
	}
}

func TestBackendSaveMergesPartialOverLastKnown(t *testing.T) {
	medium, records := mapMedium()
	backend, err := NewBackend(BackendDeps{Medium: medium})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	cart := []domain.CartLine{{CatalogItem: domain.CatalogItem{ID: "1"}, Quantity: 1}}
	backend.Save(context.Background(), Partial{Cart: &cart})

	settings := map[string]any{"openHours": "09:00-21:00"}
	backend.Save(context.Background(), Partial{AdminSettings: &settings})

	var stored domain.Bundle
	if err := json.Unmarshal(records[DefaultNamespace], &stored); err != nil {
		t.Fatalf("unmarshal stored record: %v", err)
	}
	if len(stored.Cart) != 1 {
		t.Fatalf("cart lost on partial save: %+v", stored)
	}
	if stored.AdminSettings["openHours"] != "09:00-21:00" {
		t.Fatalf("settings not merged: %+v", stored.AdminSettings)
	}
}

func TestBackendSaveReplacesSettingsField(t *testing.T) {
	medium, records := mapMedium()
	backend, err := NewBackend(BackendDeps{Medium: medium})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	settings := map[string]any{"openHours": "09:00-21:00", "acceptingOrders": true}
	backend.Save(context.Background(), Partial{AdminSettings: &settings})

	// A supplied settings field replaces the stored one wholesale.
	empty := map[string]any{}
	backend.Save(context.Background(), Partial{AdminSettings: &empty})

	bundle := backend.Load(context.Background())
	if len(bundle.AdminSettings) != 0 {
		t.Fatalf("expected settings replaced by empty map, got %+v", bundle.AdminSettings)
	}

	var stored domain.Bundle
	if err := json.Unmarshal(records[DefaultNamespace], &stored); err != nil {
		t.Fatalf("unmarshal stored record: %v", err)
	}
	if len(stored.AdminSettings) != 0 {
		t.Fatalf("old settings survived on the medium: %+v", stored.AdminSettings)
	}
}

func TestBackendLoadDiscardsMalformedRecord(t *testing.T) {
	medium, records := mapMedium()
	records[DefaultNamespace] = []byte("{not json")

	var events []string
	backend, err := NewBackend(BackendDeps{
		Medium: medium,
		Logger: func(_ context.Context, event string, _ map[string]any) {
			events = append(events, event)
		},
	})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	bundle := backend.Load(context.Background())
	if len(bundle.Cart) != 0 || len(bundle.Orders) != 0 {
		t.Fatalf("expected empty bundle, got %+v", bundle)
	}
	if len(events) != 1 || events[0] != "storage.record_malformed" {
		t.Fatalf("expected malformed-record event, got %v", events)
	}
	if backend.Degraded() {
		t.Fatal("a malformed record is not a medium failure")
	}
}

func TestBackendFallbackOnUnavailableMedium(t *testing.T) {
	down := errors.New("medium down")
	medium := &stubMedium{
		ReadFunc: func(context.Context, string) ([]byte, error) {
			return nil, down
		},
		WriteFunc: func(context.Context, string, []byte) error {
			return down
		},
	}

	var events []string
	backend, err := NewBackend(BackendDeps{
		Medium: medium,
		Logger: func(_ context.Context, event string, _ map[string]any) {
			events = append(events, event)
		},
	})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	cart := []domain.CartLine{{CatalogItem: domain.CatalogItem{ID: "1"}, Quantity: 3}}
	backend.Save(context.Background(), Partial{Cart: &cart})

	// Reads after a failed write still observe the intended state.
	bundle := backend.Load(context.Background())
	if len(bundle.Cart) != 1 || bundle.Cart[0].Quantity != 3 {
		t.Fatalf("fallback did not retain saved state: %+v", bundle.Cart)
	}
	if !backend.Degraded() {
		t.Fatal("expected backend to be degraded")
	}

	// Only the first failure emits the degraded event.
	backend.Save(context.Background(), Partial{Cart: &cart})
	degradedCount := 0
	for _, event := range events {
		if event == "storage.degraded" {
			degradedCount++
		}
	}
	if degradedCount != 1 {
		t.Fatalf("expected exactly one storage.degraded event, got %v", events)
	}
}

func TestBackendLoadSnapshotIsolation(t *testing.T) {
	medium, _ := mapMedium()
	backend, err := NewBackend(BackendDeps{Medium: medium})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	cart := []domain.CartLine{{CatalogItem: domain.CatalogItem{ID: "1"}, Quantity: 1}}
	backend.Save(context.Background(), Partial{Cart: &cart})

	first := backend.Load(context.Background())
	first.Cart[0].Quantity = 99

	second := backend.Load(context.Background())
	if second.Cart[0].Quantity != 1 {
		t.Fatalf("load snapshots share state: %+v", second.Cart[0])
	}
}

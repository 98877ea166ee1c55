package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/mak-braai/pos/internal/domain"
)

// DefaultNamespace is the key the bundle is stored under when no namespace is
// configured.
const DefaultNamespace = "braai-restaurant-data"

const probeSuffix = ":probe"

// Partial carries the bundle fields a save should replace. Nil fields keep
// their last-known value, mirroring the pointer-patch convention used by cart
// updates.
type Partial struct {
	Cart          *[]domain.CartLine
	Orders        *[]domain.Order
	AdminSettings *map[string]any
}

// BackendDeps wires a Backend.
type BackendDeps struct {
	Medium    Medium
	Namespace string
	Logger    func(ctx context.Context, event string, fields map[string]any)
}

// Backend persists the bundle on a Medium and keeps an in-process fallback
// snapshot current regardless of medium health. Every operation is total:
// failures degrade, they never surface as errors.
type Backend struct {
	medium Medium
	key    string
	logger func(ctx context.Context, event string, fields map[string]any)

	mu       sync.Mutex
	fallback domain.Bundle
	degraded bool
}

// NewBackend validates dependencies and returns a ready backend. The fallback
// snapshot starts out as the empty bundle.
func NewBackend(deps BackendDeps) (*Backend, error) {
	if deps.Medium == nil {
		return nil, errors.New("storage: medium is required")
	}
	namespace := deps.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &Backend{
		medium:   deps.Medium,
		key:      namespace,
		logger:   logger,
		fallback: domain.EmptyBundle(),
	}, nil
}

// Probe reports whether the medium currently accepts writes. It writes and
// deletes a throwaway key next to the bundle.
func (b *Backend) Probe(ctx context.Context) bool {
	key := b.key + probeSuffix
	if err := b.medium.Write(ctx, key, []byte("ok")); err != nil {
		return false
	}
	if err := b.medium.Delete(ctx, key); err != nil {
		return false
	}
	return true
}

// Load returns the persisted bundle, or the last-known fallback snapshot when
// the medium is unavailable, the record is missing, or the record cannot be
// parsed. Load never fails.
func (b *Backend) Load(ctx context.Context) domain.Bundle {
	b.mu.Lock()
	defer b.mu.Unlock()

	raw, err := b.medium.Read(ctx, b.key)
	if errors.Is(err, ErrNotFound) {
		return b.fallback.Clone()
	}
	if err != nil {
		b.markDegradedLocked(ctx, err)
		return b.fallback.Clone()
	}

	var bundle domain.Bundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		b.logger(ctx, "storage.record_malformed", map[string]any{
			"key":   b.key,
			"error": err.Error(),
		})
		return b.fallback.Clone()
	}
	normalizeBundle(&bundle)
	b.fallback = bundle.Clone()
	return bundle
}

// Save merges the partial's fields over the last-known bundle and writes the
// result. A supplied field replaces the stored one wholesale; key-level merge
// semantics belong to the callers. The fallback snapshot is updated first, so
// a failed write still leaves subsequent loads observing the intended state.
// Save never fails.
func (b *Backend) Save(ctx context.Context, partial Partial) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if partial.Cart != nil {
		b.fallback.Cart = domain.CloneCartLines(*partial.Cart)
	}
	if partial.Orders != nil {
		b.fallback.Orders = domain.CloneOrders(*partial.Orders)
	}
	if partial.AdminSettings != nil {
		settings := make(map[string]any, len(*partial.AdminSettings))
		for k, v := range *partial.AdminSettings {
			settings[k] = v
		}
		b.fallback.AdminSettings = settings
	}

	raw, err := json.Marshal(b.fallback)
	if err != nil {
		b.logger(ctx, "storage.encode_failed", map[string]any{"error": err.Error()})
		return
	}
	if err := b.medium.Write(ctx, b.key, raw); err != nil {
		b.markDegradedLocked(ctx, err)
	}
}

// Degraded reports whether any persistence operation has failed since the
// backend was constructed. The flag latches; recovery of the medium does not
// clear it.
func (b *Backend) Degraded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.degraded
}

func (b *Backend) markDegradedLocked(ctx context.Context, err error) {
	if !b.degraded {
		b.degraded = true
		b.logger(ctx, "storage.degraded", map[string]any{
			"key":   b.key,
			"error": err.Error(),
		})
		return
	}
	b.logger(ctx, "storage.unavailable", map[string]any{
		"key":   b.key,
		"error": err.Error(),
	})
}

func normalizeBundle(bundle *domain.Bundle) {
	if bundle.Cart == nil {
		bundle.Cart = []domain.CartLine{}
	}
	if bundle.Orders == nil {
		bundle.Orders = []domain.Order{}
	}
	if bundle.AdminSettings == nil {
		bundle.AdminSettings = map[string]any{}
	}
}

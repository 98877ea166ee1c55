package storage

import (
	"context"
	"errors"
)

// ErrNotFound indicates the medium holds no record under the requested key.
var ErrNotFound = errors.New("storage: record not found")

// Medium is the raw persistent key-value medium behind the Backend. A medium
// reports failures as errors; the Backend translates them into degraded-mode
// behaviour so that callers above it never see an error at all.
type Medium interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

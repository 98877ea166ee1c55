package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisMedium persists records in Redis. Records never expire; the bundle is
// a single small value rewritten on every save.
type RedisMedium struct {
	client redis.UniversalClient
}

// NewRedisMedium connects to the Redis instance described by the URL
// (redis://host:port/db). The connection itself is lazy; a dead Redis shows
// up as read/write errors, which the Backend absorbs.
func NewRedisMedium(url string) (*RedisMedium, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("storage: parse redis url: %w", err)
	}
	return &RedisMedium{client: redis.NewClient(opts)}, nil
}

// NewRedisMediumFromClient wraps an existing client, mainly for tests.
func NewRedisMediumFromClient(client redis.UniversalClient) (*RedisMedium, error) {
	if client == nil {
		return nil, errors.New("storage: redis client is required")
	}
	return &RedisMedium{client: client}, nil
}

func (m *RedisMedium) Read(ctx context.Context, key string) ([]byte, error) {
	value, err := m.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: redis get %q: %w", key, err)
	}
	return value, nil
}

func (m *RedisMedium) Write(ctx context.Context, key string, value []byte) error {
	if err := m.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("storage: redis set %q: %w", key, err)
	}
	return nil
}

func (m *RedisMedium) Delete(ctx context.Context, key string) error {
	if err := m.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("storage: redis del %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying client's connections.
func (m *RedisMedium) Close() error {
	return m.client.Close()
}

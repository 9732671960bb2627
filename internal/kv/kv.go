// Package kv defines the key-value store facade behind the query-embedding
// cache. Drivers: an embedded badger store and a networked redis store.
package kv

import (
	"context"
	"time"
)

// Store is the key-value contract consumed by the cache layers.
type Store interface {
	Pinger
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

package cache

import (
	"context"
	"time"
)

// BytesCache stores serialized response payloads with a TTL.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Noop is a cache that never stores anything.
type Noop struct{}

func (Noop) GetBytes(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) SetBytes(context.Context, string, []byte, time.Duration) error { return nil }

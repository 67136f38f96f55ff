package metadata

import (
	"context"
	"time"
)

// Repository is a small key/value table for cache bookkeeping: local id
// sequences and the time of the last successful sync per kind.
type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	List(ctx context.Context) (map[string][]byte, error)

	// Add adds delta to the integer stored under key (absent = 0) and
	// returns the new value.
	Add(ctx context.Context, key string, delta int64) (int64, error)

	// GetTime returns the zero time when the key is absent.
	GetTime(ctx context.Context, key string) (time.Time, error)
	SetTime(ctx context.Context, key string, t time.Time) error
}

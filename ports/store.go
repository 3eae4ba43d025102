package ports

import (
	"context"
	"time"
)

// Store is an expiring key-value store. A ttl of zero means the key does not
// expire. Missing keys are reported as core.ErrNotFound.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)

	// GetDelete atomically reads and removes a key. At most one concurrent
	// caller observes the value; all others get core.ErrNotFound. Nonce
	// consumption relies on this being a single store-level operation.
	GetDelete(ctx context.Context, key string) (string, error)

	Delete(ctx context.Context, key string) error

	// Increment atomically increments a counter, starting the ttl window when
	// the key is first created, and returns the new count.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

package cache

import (
	"context"
	"time"
)

// IdempotencyStore records request keys that have already been applied so a
// retried request (double-click, network replay) is recognized and rejected
// instead of re-executed. Entries expire after a TTL.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL. Returns true if the
	// key was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close releases store resources
	Close() error
}

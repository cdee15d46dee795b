package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers submission tokens so a resubmitted form
// (double click, browser refresh after POST) is applied only once.
type IdempotencyStore interface {
	// MarkProcessed records the key with a TTL.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether the key was already recorded
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close releases resources held by the store
	Close() error
}

package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed message IDs (payment webhooks,
// replayed events) so each is acted upon once.
type IdempotencyStore interface {
	// MarkProcessed marks an ID as processed with a TTL.
	// Returns true if the ID was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, id string, ttl time.Duration) (bool, error)

	// IsProcessed checks if an ID has already been processed
	IsProcessed(ctx context.Context, id string) (bool, error)

	// Close releases resources
	Close() error
}

// DefaultIdempotencyTTL is how long processed IDs are remembered
const DefaultIdempotencyTTL = 72 * time.Hour

package cache

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// InMemoryIdempotencyStore implements IdempotencyStore in process memory.
// It suits single-instance deployments and tests.
type InMemoryIdempotencyStore struct {
	entries *expiringMap
}

// NewInMemoryIdempotencyStore creates a store that sweeps expired IDs in
// the background until Close.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{entries: newExpiringMap(defaultCleanupInterval)}
}

// MarkProcessed returns true if id was newly marked, false if it was
// already processed and has not expired.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	return s.entries.setIfAbsent(id, nil, ttl), nil
}

// IsProcessed checks if id has been marked and has not expired
func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, id string) (bool, error) {
	_, ok := s.entries.get(id)
	return ok, nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.entries.close()
	return nil
}

// Size returns the number of entries, expired ones included until swept
func (s *InMemoryIdempotencyStore) Size() int {
	return s.entries.size()
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)

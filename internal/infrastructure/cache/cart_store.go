package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/cart"
)

const cartKeyPrefix = "cart:"

func cartKey(id uuid.UUID) string {
	return cartKeyPrefix + id.String()
}

// RedisCartStore keeps carts as JSON documents under cart:<id>. Every
// Save refreshes the TTL.
type RedisCartStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCartStore creates a cart store on client
func NewRedisCartStore(client redis.UniversalClient, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{client: client, ttl: ttl}
}

// Get loads a cart; unknown or expired carts yield cart.ErrCartNotFound
func (s *RedisCartStore) Get(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cart.ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return decodeCart(data)
}

// Save writes the cart and resets its TTL
func (s *RedisCartStore) Save(ctx context.Context, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(c.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete removes the cart; deleting a missing cart is not an error
func (s *RedisCartStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, cartKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// InMemoryCartStore keeps carts in process memory with the same TTL
// semantics as RedisCartStore. Carts are stored encoded so callers never
// share a pointer with the store.
type InMemoryCartStore struct {
	entries *expiringMap
	ttl     time.Duration
}

// NewInMemoryCartStore creates an in-memory cart store
func NewInMemoryCartStore(ttl time.Duration) *InMemoryCartStore {
	return &InMemoryCartStore{entries: newExpiringMap(defaultCleanupInterval), ttl: ttl}
}

func (s *InMemoryCartStore) Get(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	data, ok := s.entries.get(cartKey(id))
	if !ok {
		return nil, cart.ErrCartNotFound
	}
	return decodeCart(data)
}

func (s *InMemoryCartStore) Save(ctx context.Context, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	s.entries.set(cartKey(c.ID), data, s.ttl)
	return nil
}

func (s *InMemoryCartStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.entries.delete(cartKey(id))
	return nil
}

// Close stops the cleanup goroutine
func (s *InMemoryCartStore) Close() error {
	s.entries.close()
	return nil
}

func decodeCart(data []byte) (*cart.Cart, error) {
	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	if c.Items == nil {
		c.Items = make([]cart.Item, 0)
	}
	return &c, nil
}

var (
	_ cart.Store = (*RedisCartStore)(nil)
	_ cart.Store = (*InMemoryCartStore)(nil)
)

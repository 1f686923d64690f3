package cache

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Stores bundles the session-style stores the application needs
type Stores struct {
	Carts       cart.Store
	Idempotency shared.IdempotencyStore

	closers []io.Closer
}

// Close releases every store and the Redis client, if any
func (s *Stores) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// StoreFactory creates cart and idempotency stores from configuration
type StoreFactory struct {
	redisConfig           config.RedisConfig
	cartTTL               time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
	dial                  func(cfg config.RedisConfig) (redis.UniversalClient, error)
}

// StoreFactoryOption configures a StoreFactory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores
// when Redis is unreachable. Defaults to true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(redisCfg config.RedisConfig, cartTTL time.Duration, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           redisCfg,
		cartTTL:               cartTTL,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		dial:                  NewRedisClient,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewRedisClient connects to Redis and pings it
func NewRedisClient(cfg config.RedisConfig) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// CreateStores returns Redis-backed stores when Redis is enabled and
// reachable, and in-memory stores otherwise.
func (f *StoreFactory) CreateStores() (*Stores, error) {
	if f.redisConfig.Enabled {
		client, err := f.dial(f.redisConfig)
		if err == nil {
			f.logger.Info("using Redis cart and idempotency stores", zap.String("addr", f.redisConfig.Addr()))
			return f.redisStores(client), nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
			"Carts and webhook deduplication are not shared between instances.",
			zap.Error(err),
		)
	}
	return f.inMemoryStores(), nil
}

func (f *StoreFactory) redisStores(client redis.UniversalClient) *Stores {
	return &Stores{
		Carts:       NewRedisCartStore(client, f.cartTTL),
		Idempotency: NewRedisIdempotencyStore(client, ""),
		closers:     []io.Closer{client},
	}
}

func (f *StoreFactory) inMemoryStores() *Stores {
	carts := NewInMemoryCartStore(f.cartTTL)
	idem := NewInMemoryIdempotencyStore()
	return &Stores{
		Carts:       carts,
		Idempotency: idem,
		closers:     []io.Closer{carts, idem},
	}
}

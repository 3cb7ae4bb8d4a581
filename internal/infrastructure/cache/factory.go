package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/phonestore/backend/internal/domain/pricing"
	"go.uber.org/zap"
)

// Backend names accepted by the factory
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// RateCacheFactory builds the active-rate cache from configuration
type RateCacheFactory struct {
	backend               string
	redis                 RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// RateCacheFactoryOption configures the factory
type RateCacheFactoryOption func(*RateCacheFactory)

// WithLogger sets the logger for the factory and the caches it builds
func WithLogger(logger *zap.Logger) RateCacheFactoryOption {
	return func(f *RateCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to memory.
// Default is true.
func WithInMemoryFallback(allow bool) RateCacheFactoryOption {
	return func(f *RateCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewRateCacheFactory creates a new factory
func NewRateCacheFactory(backend string, redisCfg RedisConfig, ttl time.Duration, opts ...RateCacheFactoryOption) *RateCacheFactory {
	f := &RateCacheFactory{
		backend:               backend,
		redis:                 redisCfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the configured cache. A Redis backend that cannot be
// reached yields the in-memory cache unless fallback is disabled.
func (f *RateCacheFactory) Create(ctx context.Context) (pricing.RateCache, error) {
	switch f.backend {
	case BackendMemory:
		f.logger.Info("Using in-memory rate cache", zap.Duration("ttl", f.ttl))
		return NewInMemoryRateCache(f.ttl), nil
	case BackendRedis, "":
	default:
		return nil, fmt.Errorf("unknown rate cache backend %q", f.backend)
	}

	c, err := NewRedisRateCache(ctx, f.redis,
		WithRedisLogger(f.logger),
		WithRedisDefaultTTL(f.ttl),
	)
	if err == nil {
		f.logger.Info("Using Redis rate cache", zap.String("addr", f.redis.Addr))
		return c, nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis rate cache required but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory rate cache. "+
		"Rates recorded on other instances are seen only after the local entry expires.",
		zap.Error(err),
	)
	return NewInMemoryRateCache(f.ttl), nil
}

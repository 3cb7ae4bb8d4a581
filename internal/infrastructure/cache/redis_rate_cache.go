package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phonestore/backend/internal/domain/pricing"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultRateTTL applies when Set is called with a zero ttl
const DefaultRateTTL = 5 * time.Minute

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// cachedRate is the wire form of a cached rate
type cachedRate struct {
	ID         uuid.UUID       `json:"id"`
	Source     string          `json:"source"`
	Rate       decimal.Decimal `json:"rate"`
	CapturedAt time.Time       `json:"captured_at"`
}

func toCachedRate(r *pricing.ExchangeRate) cachedRate {
	return cachedRate{ID: r.ID, Source: r.Source, Rate: r.Rate, CapturedAt: r.CapturedAt}
}

func (c cachedRate) toDomain() *pricing.ExchangeRate {
	return &pricing.ExchangeRate{
		ID:         c.ID,
		Source:     c.Source,
		Rate:       c.Rate,
		IsActive:   true,
		CapturedAt: c.CapturedAt,
	}
}

// RedisRateCache implements pricing.RateCache using Redis
type RedisRateCache struct {
	client     *redis.Client
	ownsClient bool
	defaultTTL time.Duration
	logger     *zap.Logger
}

// RedisRateCacheOption configures a RedisRateCache
type RedisRateCacheOption func(*RedisRateCache)

// WithRedisLogger sets the logger for the cache
func WithRedisLogger(logger *zap.Logger) RedisRateCacheOption {
	return func(c *RedisRateCache) {
		c.logger = logger
	}
}

// WithRedisDefaultTTL sets the ttl used when Set gets zero
func WithRedisDefaultTTL(ttl time.Duration) RedisRateCacheOption {
	return func(c *RedisRateCache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// NewRedisRateCache connects to Redis and pings it
func NewRedisRateCache(ctx context.Context, cfg RedisConfig, opts ...RedisRateCacheOption) (*RedisRateCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}

	c := NewRedisRateCacheWithClient(client, opts...)
	c.ownsClient = true
	return c, nil
}

// NewRedisRateCacheWithClient wraps an existing client; the caller keeps ownership
func NewRedisRateCacheWithClient(client *redis.Client, opts ...RedisRateCacheOption) *RedisRateCache {
	c := &RedisRateCache{
		client:     client,
		defaultTTL: DefaultRateTTL,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached active rate, or nil, nil on a miss
func (c *RedisRateCache) Get(ctx context.Context, source string) (*pricing.ExchangeRate, error) {
	key := pricing.RateCacheKey(source)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rate from cache: %w", err)
	}

	var cr cachedRate
	if err := json.Unmarshal(data, &cr); err != nil {
		c.logger.Warn("Dropping corrupted cached rate",
			zap.String("key", key),
			zap.Error(err))
		_ = c.client.Del(ctx, key)
		return nil, nil
	}
	return cr.toDomain(), nil
}

// Set caches an active rate under its source
func (c *RedisRateCache) Set(ctx context.Context, rate *pricing.ExchangeRate, ttl time.Duration) error {
	if rate == nil || !rate.IsActive {
		return nil
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	data, err := json.Marshal(toCachedRate(rate))
	if err != nil {
		return fmt.Errorf("failed to marshal rate: %w", err)
	}
	if err := c.client.Set(ctx, pricing.RateCacheKey(rate.Source), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set rate in cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached rate of a source
func (c *RedisRateCache) Invalidate(ctx context.Context, source string) error {
	if err := c.client.Del(ctx, pricing.RateCacheKey(source)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached rate: %w", err)
	}
	return nil
}

// Ping checks the connection; used by the health endpoint
func (c *RedisRateCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client if this cache created it
func (c *RedisRateCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

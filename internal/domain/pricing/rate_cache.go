package pricing

import (
	"context"
	"time"
)

// RateCache caches the active rate per source in front of ExchangeRateRepository.
// Cache keys follow exchange_rate:active:{source}.
type RateCache interface {
	// Get returns nil, nil on a cache miss
	Get(ctx context.Context, source string) (*ExchangeRate, error)

	// Set stores the active rate; a zero ttl uses the implementation default
	Set(ctx context.Context, rate *ExchangeRate, ttl time.Duration) error

	// Invalidate drops the cached rate of a source
	Invalidate(ctx context.Context, source string) error

	Close() error
}

// RateCacheKey returns the cache key of a source's active rate
func RateCacheKey(source string) string {
	return "exchange_rate:active:" + source
}

package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/phonestore/backend/internal/domain/pricing"
)

// InMemoryRateCache implements pricing.RateCache on go-cache. Entries are
// local to the process, so a rate recorded on another instance is only seen
// once the local entry expires.
type InMemoryRateCache struct {
	store *gocache.Cache
}

// NewInMemoryRateCache creates a cache with the given default ttl
func NewInMemoryRateCache(defaultTTL time.Duration) *InMemoryRateCache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultRateTTL
	}
	return &InMemoryRateCache{store: gocache.New(defaultTTL, 2*defaultTTL)}
}

// Get returns a copy of the cached rate, or nil, nil on a miss
func (c *InMemoryRateCache) Get(_ context.Context, source string) (*pricing.ExchangeRate, error) {
	v, ok := c.store.Get(pricing.RateCacheKey(source))
	if !ok {
		return nil, nil
	}
	rate := v.(pricing.ExchangeRate)
	return &rate, nil
}

// Set caches a copy of an active rate
func (c *InMemoryRateCache) Set(_ context.Context, rate *pricing.ExchangeRate, ttl time.Duration) error {
	if rate == nil || !rate.IsActive {
		return nil
	}
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.store.Set(pricing.RateCacheKey(rate.Source), *rate, ttl)
	return nil
}

// Invalidate drops the cached rate of a source
func (c *InMemoryRateCache) Invalidate(_ context.Context, source string) error {
	c.store.Delete(pricing.RateCacheKey(source))
	return nil
}

// Count returns the number of cached sources, expired ones included until the janitor runs
func (c *InMemoryRateCache) Count() int {
	return c.store.ItemCount()
}

// Close drops every entry
func (c *InMemoryRateCache) Close() error {
	c.store.Flush()
	return nil
}

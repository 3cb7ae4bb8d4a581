package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"github.com/phonestore/backend/internal/interfaces/http/dto"
)

// RateLimiter is a fixed-window request counter per client key.
// Counters live in go-cache and expire with their window.
type RateLimiter struct {
	counters *gocache.Cache
	limit    int           // Maximum requests per window
	window   time.Duration // Time window
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		counters: gocache.New(window, window*2),
		limit:    limit,
		window:   window,
	}
}

// Allow checks if a request from the given key should be allowed
func (rl *RateLimiter) Allow(key string) bool {
	if err := rl.counters.Add(key, 1, rl.window); err == nil {
		return true
	}
	n, err := rl.counters.IncrementInt(key, 1)
	if err != nil {
		// window expired between Add and IncrementInt
		rl.counters.Set(key, 1, rl.window)
		return true
	}
	return n <= rl.limit
}

// Remaining returns the number of remaining requests for the given key
func (rl *RateLimiter) Remaining(key string) int {
	v, ok := rl.counters.Get(key)
	if !ok {
		return rl.limit
	}
	used, _ := v.(int)
	if used >= rl.limit {
		return 0
	}
	return rl.limit - used
}

// RetryAfter returns how long until the key's window resets
func (rl *RateLimiter) RetryAfter(key string) time.Duration {
	_, exp, ok := rl.counters.GetWithExpiration(key)
	if !ok || exp.IsZero() {
		return 0
	}
	if d := time.Until(exp); d > 0 {
		return d
	}
	return 0
}

// Limit returns the configured requests per window
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

// RateLimit returns a rate limiting middleware keyed by client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return rateLimit(limiter, func(c *gin.Context) string { return c.ClientIP() }, "Too many requests. Please try again later.")
}

// WriteRateLimit is a stricter limiter for endpoints that persist state,
// such as committing a sale or recording an exchange rate. Its keys are
// prefixed so they never collide with the global limiter.
func WriteRateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return rateLimit(limiter, func(c *gin.Context) string { return "write:" + c.ClientIP() }, "Too many write requests. Please slow down.")
}

// RateLimitByKey returns a rate limiting middleware with custom key extractor
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return rateLimit(limiter, keyFunc, "Too many requests. Please try again later.")
}

func rateLimit(limiter *RateLimiter, keyFunc func(*gin.Context) string, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		if !limiter.Allow(key) {
			retry := int(math.Ceil(limiter.RetryAfter(key).Seconds()))
			c.Header("Retry-After", strconv.Itoa(retry))
			AbortWithError(c, http.StatusTooManyRequests,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeRateLimited, message, getRequestID(c)))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))

		c.Next()
	}
}

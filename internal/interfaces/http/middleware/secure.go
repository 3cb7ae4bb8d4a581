package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityConfig holds the response headers applied by Secure
type SecurityConfig struct {
	// HSTSMaxAge enables Strict-Transport-Security when positive (seconds).
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	// APIPolicy is the Content-Security-Policy of JSON responses.
	APIPolicy string
	// DocsPolicy is used under DocsPathPrefix, where the Swagger UI needs its own assets.
	DocsPolicy     string
	DocsPathPrefix string

	// NoStore marks API responses as uncacheable. Quotes depend on the active rate.
	NoStore bool
}

// DefaultSecurityConfig returns the header set of the pricing API
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		APIPolicy:      "default-src 'none'; frame-ancestors 'none'",
		DocsPolicy:     "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'none'",
		DocsPathPrefix: "/swagger",
		NoStore:        true,
	}
}

// Secure adds security headers to responses using default configuration
func Secure() gin.HandlerFunc {
	return SecureWithConfig(DefaultSecurityConfig())
}

// SecureWithConfig adds security headers to responses with custom configuration
func SecureWithConfig(cfg SecurityConfig) gin.HandlerFunc {
	hsts := ""
	if cfg.HSTSMaxAge > 0 {
		hsts = fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		if hsts != "" {
			h.Set("Strict-Transport-Security", hsts)
		}

		docs := cfg.DocsPathPrefix != "" && strings.HasPrefix(c.Request.URL.Path, cfg.DocsPathPrefix)
		switch {
		case docs && cfg.DocsPolicy != "":
			h.Set("Content-Security-Policy", cfg.DocsPolicy)
		case !docs && cfg.APIPolicy != "":
			h.Set("Content-Security-Policy", cfg.APIPolicy)
		}
		if cfg.NoStore && !docs {
			h.Set("Cache-Control", "no-store")
		}

		c.Next()
	}
}

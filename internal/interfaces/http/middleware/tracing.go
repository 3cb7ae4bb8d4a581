// Package middleware provides HTTP middleware for the pricing API.
package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// MaxRequestIDLength bounds client-supplied request IDs
	MaxRequestIDLength = 128
	// MaxRateSourceLength bounds the rate source recorded on spans
	MaxRateSourceLength = 32
)

// rate source names such as "blue" or "official"
var rateSourceRegex = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Attributes added to server spans
const (
	attrRequestID  = attribute.Key("http.request_id")
	attrRateSource = attribute.Key("pricing.rate_source")
	attrErrorCode  = attribute.Key("error.code")
)

// TracingConfig configures Tracing
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// Skip lists paths served without a span
	Skip PathFilter
}

// DefaultTracingConfig traces everything except probes
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "pricing-engine",
		Enabled:     true,
		Skip:        ProbePaths(),
	}
}

// Tracing returns the server tracing chain: otelgin opens the span and
// annotate runs inside it.
//
//	engine.Use(middleware.Tracing(cfg)...)
//
// Spans carry the request ID and the rate source named in the query. A 5xx
// response fails the span. A rejected request (4xx) keeps an unset status
// and records the API error code set by AbortWithError.
func Tracing(cfg TracingConfig) []gin.HandlerFunc {
	if !cfg.Enabled {
		return []gin.HandlerFunc{passThrough}
	}
	skip := cfg.Skip
	return []gin.HandlerFunc{
		otelgin.Middleware(cfg.ServiceName,
			otelgin.WithFilter(func(r *http.Request) bool { return !skip.Match(r.URL.Path) }),
		),
		annotate,
	}
}

func annotate(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		c.Next()
		return
	}

	if id := getRequestID(c); id != "" {
		span.SetAttributes(attrRequestID.String(id))
	}
	if source := getRateSource(c); source != "" {
		span.SetAttributes(attrRateSource.String(source))
	}

	c.Next()

	status := c.Writer.Status()
	if code := c.GetString(ErrorCodeKey); code != "" {
		span.SetAttributes(attrErrorCode.String(code))
	}
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}

// getRequestID prefers the ID set by RequestID, then the header truncated
// to MaxRequestIDLength.
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	id := c.GetHeader(RequestIDHeader)
	if len(id) > MaxRequestIDLength {
		return id[:MaxRequestIDLength]
	}
	return id
}

// getRateSource returns the normalised rate_source (or source) query value,
// or "" when it is not a plausible source name.
func getRateSource(c *gin.Context) string {
	source := c.Query("rate_source")
	if source == "" {
		source = c.Query("source")
	}
	source = strings.ToLower(strings.TrimSpace(source))
	if len(source) > MaxRateSourceLength || !rateSourceRegex.MatchString(source) {
		return ""
	}
	return source
}

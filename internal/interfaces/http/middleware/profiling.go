package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/phonestore/backend/internal/infrastructure/telemetry"
)

// ProfilingConfig configures Profiling
type ProfilingConfig struct {
	Enabled bool
	// Skip lists paths served without labels
	Skip PathFilter
}

// DefaultProfilingConfig labels everything except probes
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{Enabled: true, Skip: ProbePaths()}
}

// Profiling attaches pprof labels with DefaultProfilingConfig
func Profiling() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}

// ProfilingWithConfig runs the rest of the chain under pprof labels so
// continuous profiles can be sliced by route. Labels:
//
//	http_method  GET, POST
//	http_route   /api/v1/payment-instruments/:id/tiers
//	resource     payment-instruments
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}
	skip := cfg.Skip

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || skip.Match(c.Request.URL.Path) {
			c.Next()
			return
		}

		labels := map[string]string{
			telemetry.ProfilingLabelMethod: c.Request.Method,
			telemetry.ProfilingLabelRoute:  route,
		}
		if resource := extractResourceFromRoute(route); resource != "" {
			labels[telemetry.ProfilingLabelResource] = resource
		}

		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// extractResourceFromRoute returns the first static segment after the
// optional "api" and version prefix.
func extractResourceFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		switch {
		case part == "", part == "api", isVersionSegment(part):
		case part[0] == ':' || part[0] == '*':
		default:
			return part
		}
	}
	return ""
}

// isVersionSegment matches v1, v2, V10 ...
func isVersionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

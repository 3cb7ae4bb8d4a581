package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phonestore/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// attrAPIErrorCode labels rejected requests with the code set by AbortWithError
const attrAPIErrorCode = attribute.Key("api.error_code")

type httpInstruments struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	var (
		in  httpInstruments
		err error
	)
	if err = telemetry.RegisterCounters(meter, telemetry.Int64CounterSpec{
		Target:      &in.requests,
		Name:        "http_server_request_total",
		Description: "HTTP requests by route, status and API error code",
		Unit:        "{request}",
	}); err != nil {
		return nil, err
	}
	if in.duration, err = meter.Float64Histogram("http_server_request_duration_seconds",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(telemetry.HTTPDurationBuckets...),
	); err != nil {
		return nil, err
	}
	if in.inFlight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests being served"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	return &in, nil
}

// HTTPMetrics counts requests, their latency and the number in flight.
// A nil meter, or one that cannot create the instruments, disables it.
func HTTPMetrics(meter metric.Meter) gin.HandlerFunc {
	if meter == nil {
		return passThrough
	}
	in, err := newHTTPInstruments(meter)
	if err != nil {
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		in.inFlight.Add(ctx, 1)
		defer in.inFlight.Add(ctx, -1)

		c.Next()

		route := routePattern(c)
		status := c.Writer.Status()
		base := []attribute.KeyValue{
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(route),
		}
		counted := append(base, telemetry.AttrHTTPStatusCode.Int(status))
		if code := c.GetString(ErrorCodeKey); code != "" {
			counted = append(counted, attrAPIErrorCode.String(code))
		}

		in.requests.Add(ctx, 1, metric.WithAttributes(counted...))
		in.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(base...))
	}
}

// routePattern keeps series per route, not per path. Unmatched paths share one series.
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

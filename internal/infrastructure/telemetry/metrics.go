package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when a metrics set is built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// MeterName is the instrumentation scope of the backend's own instruments
const MeterName = "phonestore-backend"

// DefaultMetricsInterval is the export period when none is configured
const DefaultMetricsInterval = time.Minute

// MetricsConfig configures metric export
type MetricsConfig struct {
	Enabled  bool
	Interval time.Duration
	Exporter
}

// MeterProvider owns the SDK meter provider installed as the global one
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
}

// NewMeterProvider installs a periodic OTLP meter provider.
// Disabled makes Meter fall back to the global no-op meter.
func NewMeterProvider(ctx context.Context, cfg MetricsConfig, logger *zap.Logger) (*MeterProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mp := &MeterProvider{logger: logger}
	if !cfg.Enabled {
		logger.Info("Metrics disabled")
		return mp, nil
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultMetricsInterval
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	res, err := cfg.resource()
	if err != nil {
		return nil, err
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("Metrics enabled",
		zap.String("collector_endpoint", cfg.Endpoint),
		zap.Duration("export_interval", interval),
	)
	return mp, nil
}

// Meter returns a named meter. A nil or disabled provider yields the global one.
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if !mp.IsEnabled() {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// IsEnabled reports whether metrics are exported
func (mp *MeterProvider) IsEnabled() bool {
	return mp != nil && mp.provider != nil
}

// Shutdown flushes pending metrics and stops the provider
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if !mp.IsEnabled() {
		return nil
	}
	return flush(ctx, mp.logger, "meter", mp.provider.Shutdown)
}

// Int64CounterSpec describes one counter for RegisterCounters
type Int64CounterSpec struct {
	Target      *metric.Int64Counter
	Name        string
	Description string
	Unit        string
}

// RegisterCounters creates every counter in specs, stopping at the first failure
func RegisterCounters(meter metric.Meter, specs ...Int64CounterSpec) error {
	if meter == nil {
		return ErrMeterNil
	}
	for _, s := range specs {
		c, err := meter.Int64Counter(s.Name, metric.WithDescription(s.Description), metric.WithUnit(s.Unit))
		if err != nil {
			return fmt.Errorf("failed to create counter %s: %w", s.Name, err)
		}
		*s.Target = c
	}
	return nil
}

// Metric attribute keys
const (
	AttrHTTPMethod      = attribute.Key("http.request.method")
	AttrHTTPRoute       = attribute.Key("http.route")
	AttrHTTPStatusCode  = attribute.Key("http.response.status_code")
	AttrFlow            = attribute.Key("settlement.flow")
	AttrFinancingPolicy = attribute.Key("financing.policy")
)

// HTTPDurationBuckets are bucket boundaries for request latency in seconds
var HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

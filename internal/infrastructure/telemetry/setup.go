package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// shutdownTimeout bounds each provider flush on exit
const shutdownTimeout = 10 * time.Second

// Exporter addresses the OTLP gRPC collector shared by traces, metrics and logs
type Exporter struct {
	Endpoint       string
	Insecure       bool
	ServiceName    string
	ServiceVersion string
}

func (e Exporter) resource() (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(e.ServiceName),
			semconv.ServiceVersion(e.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// Settings selects the signals Setup starts
type Settings struct {
	Exporter

	Traces          bool
	SamplingRatio   float64
	Metrics         bool
	MetricsInterval time.Duration
	Logs            bool
	LogLevel        zapcore.Level

	Profiler     ProfilerConfig
	SpanProfiles bool
}

// Telemetry holds the providers started by Setup
type Telemetry struct {
	Tracer   *TracerProvider
	Meter    *MeterProvider
	Logs     *LoggerProvider
	Profiler *Profiler
	// Logger is the base logger, teed into the OTLP pipeline when logs are exported
	Logger *zap.Logger
}

// Setup starts tracing, metrics, the log bridge and the profiler.
// Exporter failures are fatal; a profiler that cannot start is only logged.
func Setup(ctx context.Context, s Settings, logger *zap.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Telemetry{Logger: logger}

	var err error
	if t.Tracer, err = NewTracerProvider(ctx, TraceConfig{
		Enabled:       s.Traces,
		SamplingRatio: s.SamplingRatio,
		Exporter:      s.Exporter,
	}, logger); err != nil {
		return nil, err
	}
	if t.Meter, err = NewMeterProvider(ctx, MetricsConfig{
		Enabled:  s.Metrics,
		Interval: s.MetricsInterval,
		Exporter: s.Exporter,
	}, logger); err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	if t.Logs, err = NewLoggerProvider(ctx, LogsConfig{
		Enabled:  s.Logs,
		Exporter: s.Exporter,
	}, logger); err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	if t.Logs.IsEnabled() {
		t.Logger = NewBridgedLogger(logger, NewZapOTELCore(s.ServiceName, t.Logs, s.LogLevel))
	}

	if t.Profiler, err = NewProfiler(s.Profiler, t.Logger); err != nil {
		t.Logger.Warn("Continuous profiling disabled", zap.Error(err))
		t.Profiler = &Profiler{logger: t.Logger}
	}
	if s.SpanProfiles && t.Profiler.IsEnabled() {
		t.Tracer.EnableSpanProfiles()
	}
	return t, nil
}

// Shutdown stops the profiler and flushes every provider
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.Profiler != nil {
		errs = append(errs, t.Profiler.Stop())
	}
	if t.Meter != nil {
		errs = append(errs, t.Meter.Shutdown(ctx))
	}
	if t.Tracer != nil {
		errs = append(errs, t.Tracer.Shutdown(ctx))
	}
	if t.Logs != nil {
		errs = append(errs, t.Logs.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// flush runs a provider shutdown under shutdownTimeout
func flush(ctx context.Context, logger *zap.Logger, what string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		logger.Error("Telemetry flush failed", zap.String("provider", what), zap.Error(err))
		return fmt.Errorf("shut down %s provider: %w", what, err)
	}
	return nil
}

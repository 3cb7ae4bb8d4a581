package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilerConfig configures Pyroscope continuous profiling.
type ProfilerConfig struct {
	Enabled           bool
	ServerAddress     string
	ApplicationName   string
	BasicAuthUser     string
	BasicAuthPassword string
	// ProfileTypes lists pyroscope profile names such as "cpu" or "alloc_space".
	// Empty means cpu plus the four heap profiles.
	ProfileTypes []string
}

// pprof label keys
const (
	ProfilingLabelMethod   = "http_method"
	ProfilingLabelRoute    = "http_route"
	ProfilingLabelResource = "resource"
	ProfilingLabelFlow     = "settlement_flow"
	ProfilingLabelPolicy   = "financing_policy"
)

var profileTypes = map[string]pyroscope.ProfileType{
	"cpu":            pyroscope.ProfileCPU,
	"alloc_objects":  pyroscope.ProfileAllocObjects,
	"alloc_space":    pyroscope.ProfileAllocSpace,
	"inuse_objects":  pyroscope.ProfileInuseObjects,
	"inuse_space":    pyroscope.ProfileInuseSpace,
	"goroutines":     pyroscope.ProfileGoroutines,
	"mutex_count":    pyroscope.ProfileMutexCount,
	"mutex_duration": pyroscope.ProfileMutexDuration,
	"block_count":    pyroscope.ProfileBlockCount,
	"block_duration": pyroscope.ProfileBlockDuration,
}

var defaultProfileTypes = []string{"cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space"}

// ParseProfileTypes resolves profile names, reporting every unknown one.
func ParseProfileTypes(names []string) ([]pyroscope.ProfileType, error) {
	if len(names) == 0 {
		names = defaultProfileTypes
	}
	out := make([]pyroscope.ProfileType, 0, len(names))
	var unknown []string
	for _, n := range names {
		pt, ok := profileTypes[n]
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		out = append(out, pt)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown profile types %q", unknown)
	}
	return out, nil
}

func (c ProfilerConfig) validate() error {
	var errs []error
	if c.ServerAddress == "" {
		errs = append(errs, errors.New("profiler server address is required"))
	}
	if c.ApplicationName == "" {
		errs = append(errs, errors.New("profiler application name is required"))
	}
	return errors.Join(errs...)
}

// Profiler owns a running pyroscope session. The zero value is a disabled profiler.
type Profiler struct {
	session *pyroscope.Profiler
	logger  *zap.Logger
	stop    sync.Once
	stopErr error
}

// NewProfiler starts profiling when cfg.Enabled, otherwise returns a disabled profiler.
func NewProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		return &Profiler{logger: logger}, nil
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	types, err := ParseProfileTypes(cfg.ProfileTypes)
	if err != nil {
		return nil, err
	}

	pc := pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Logger:          logger.Named("pyroscope").Sugar(),
		ProfileTypes:    types,
		Tags:            map[string]string{},
	}
	if host, _ := os.Hostname(); host != "" {
		pc.Tags["hostname"] = host
	}
	if cfg.BasicAuthUser != "" {
		pc.BasicAuthUser, pc.BasicAuthPassword = cfg.BasicAuthUser, cfg.BasicAuthPassword
	}

	session, err := pyroscope.Start(pc)
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}
	logger.Info("Continuous profiling started",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("application_name", cfg.ApplicationName),
		zap.Int("profile_types", len(types)),
	)
	return &Profiler{session: session, logger: logger}, nil
}

// Stop flushes pending profiles once; later calls return the first result.
func (p *Profiler) Stop() error {
	if p == nil {
		return nil
	}
	p.stop.Do(func() {
		if p.session == nil {
			return
		}
		if p.stopErr = p.session.Stop(); p.stopErr != nil && p.logger != nil {
			p.logger.Warn("Profiler stop failed", zap.Error(p.stopErr))
		}
	})
	return p.stopErr
}

func (p *Profiler) IsEnabled() bool {
	return p != nil && p.session != nil
}

// WithProfilingLabels runs fn with labels attached to its pprof samples.
// Empty label values are dropped.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	kv := make([]string, 0, len(labels)*2)
	for k, v := range labels {
		if v != "" {
			kv = append(kv, k, v)
		}
	}
	if len(kv) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(kv...), fn)
}

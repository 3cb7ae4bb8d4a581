package pricing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/phonestore/backend/internal/domain/pricing"
	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/phonestore/backend/internal/infrastructure/logger"
	"github.com/phonestore/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultRateSource is used when a caller does not name a rate source
const DefaultRateSource = "blue"

// ExchangeRateService reads the active rate through a cache and appends to the ledger
type ExchangeRateService struct {
	repo          pricing.ExchangeRateRepository
	cache         pricing.RateCache
	cacheTTL      time.Duration
	defaultSource string
	metrics       *telemetry.PricingMetrics
	logger        *zap.Logger
}

// ExchangeRateServiceOption configures an ExchangeRateService
type ExchangeRateServiceOption func(*ExchangeRateService)

// WithRateCache puts a cache in front of the repository
func WithRateCache(cache pricing.RateCache, ttl time.Duration) ExchangeRateServiceOption {
	return func(s *ExchangeRateService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithDefaultSource overrides DefaultRateSource
func WithDefaultSource(source string) ExchangeRateServiceOption {
	return func(s *ExchangeRateService) {
		if source = strings.TrimSpace(strings.ToLower(source)); source != "" {
			s.defaultSource = source
		}
	}
}

// WithRateMetrics records ledger appends
func WithRateMetrics(metrics *telemetry.PricingMetrics) ExchangeRateServiceOption {
	return func(s *ExchangeRateService) {
		s.metrics = metrics
	}
}

// NewExchangeRateService creates a new ExchangeRateService
func NewExchangeRateService(repo pricing.ExchangeRateRepository, logger *zap.Logger, opts ...ExchangeRateServiceOption) *ExchangeRateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExchangeRateService{
		repo:          repo,
		defaultSource: DefaultRateSource,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultSource returns the source used when none is given
func (s *ExchangeRateService) DefaultSource() string {
	return s.defaultSource
}

func (s *ExchangeRateService) source(source string) string {
	source = strings.TrimSpace(strings.ToLower(source))
	if source == "" {
		return s.defaultSource
	}
	return source
}

// ActiveRate returns the active rate of source. A missing rate is an InvalidRateError.
func (s *ExchangeRateService) ActiveRate(ctx context.Context, source string) (*pricing.ExchangeRate, error) {
	source = s.source(source)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, source)
		if err != nil {
			s.log(ctx).Warn("Rate cache read failed, falling back to database",
				zap.String("source", source), zap.Error(err))
		} else if cached != nil {
			telemetry.AddEvent(ctx, "rate_cache_hit", telemetry.AttrRateSource.String(source))
			return cached, nil
		}
		telemetry.AddEvent(ctx, "rate_cache_miss", telemetry.AttrRateSource.String(source))
	}

	rate, err := s.repo.FindActive(ctx, source)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, pricing.NewMissingRateError(source)
		}
		s.log(ctx).Error("Failed to load active exchange rate", zap.String("source", source), zap.Error(err))
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, rate, s.cacheTTL); err != nil {
			s.log(ctx).Warn("Rate cache write failed", zap.String("source", source), zap.Error(err))
		}
	}
	return rate, nil
}

// ActiveConverter returns a converter bound to the active rate of source
func (s *ExchangeRateService) ActiveConverter(ctx context.Context, source string) (pricing.Converter, error) {
	rate, err := s.ActiveRate(ctx, source)
	if err != nil {
		return pricing.Converter{}, err
	}
	return rate.Converter()
}

// GetActive returns the active rate of source
func (s *ExchangeRateService) GetActive(ctx context.Context, source string) (*ExchangeRateResponse, error) {
	rate, err := s.ActiveRate(ctx, source)
	if err != nil {
		return nil, err
	}
	resp := ToExchangeRateResponse(rate)
	return &resp, nil
}

// Record appends a new active rate, superseding the previous one of the same source
func (s *ExchangeRateService) Record(ctx context.Context, req RecordRateRequest) (*ExchangeRateResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "exchange_rate", "record")
	defer span.End()

	capturedAt := time.Now()
	if req.CapturedAt != nil {
		capturedAt = *req.CapturedAt
	}

	rate, err := pricing.NewExchangeRate(req.Source, req.Rate, capturedAt)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		telemetry.AttrRateSource.String(rate.Source),
		telemetry.AttrRate.String(rate.Rate.String()),
	)

	if err := s.repo.Record(ctx, rate); err != nil {
		telemetry.RecordError(span, err)
		s.log(ctx).Error("Failed to record exchange rate", zap.String("source", rate.Source), zap.Error(err))
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, rate.Source); err != nil {
			s.log(ctx).Warn("Rate cache invalidation failed", zap.String("source", rate.Source), zap.Error(err))
		}
	}
	s.metrics.RecordRateRecorded(ctx, rate.Source)

	s.log(ctx).Info("Exchange rate recorded",
		zap.String("source", rate.Source),
		zap.String("rate", rate.Rate.String()),
		zap.Time("captured_at", rate.CapturedAt),
	)

	resp := ToExchangeRateResponse(rate)
	return &resp, nil
}

// History returns the latest ledger entries of source, newest first
func (s *ExchangeRateService) History(ctx context.Context, source string, limit int) ([]ExchangeRateResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rates, err := s.repo.History(ctx, s.source(source), limit)
	if err != nil {
		return nil, err
	}
	out := make([]ExchangeRateResponse, 0, len(rates))
	for i := range rates {
		out = append(out, ToExchangeRateResponse(&rates[i]))
	}
	return out, nil
}

func (s *ExchangeRateService) log(ctx context.Context) *zap.Logger {
	return logger.For(ctx, s.logger)
}

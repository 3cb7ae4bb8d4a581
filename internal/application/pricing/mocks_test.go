package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phonestore/backend/internal/domain/commission"
	"github.com/phonestore/backend/internal/domain/pricing"
	"github.com/phonestore/backend/internal/domain/settlement"
	"github.com/stretchr/testify/mock"
)

// MockExchangeRateRepository is a mock implementation of pricing.ExchangeRateRepository
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindActive(ctx context.Context, source string) (*pricing.ExchangeRate, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) History(ctx context.Context, source string, limit int) ([]pricing.ExchangeRate, error) {
	args := m.Called(ctx, source, limit)
	return args.Get(0).([]pricing.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) Record(ctx context.Context, rate *pricing.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

// MockRateCache is a mock implementation of pricing.RateCache
type MockRateCache struct {
	mock.Mock
}

func (m *MockRateCache) Get(ctx context.Context, source string) (*pricing.ExchangeRate, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.ExchangeRate), args.Error(1)
}

func (m *MockRateCache) Set(ctx context.Context, rate *pricing.ExchangeRate, ttl time.Duration) error {
	args := m.Called(ctx, rate, ttl)
	return args.Error(0)
}

func (m *MockRateCache) Invalidate(ctx context.Context, source string) error {
	args := m.Called(ctx, source)
	return args.Error(0)
}

func (m *MockRateCache) Close() error {
	return m.Called().Error(0)
}

// MockPaymentPlanRepository is a mock implementation of pricing.PaymentPlanRepository
type MockPaymentPlanRepository struct {
	mock.Mock
}

func (m *MockPaymentPlanRepository) FindInstruments(ctx context.Context) ([]pricing.PaymentInstrument, error) {
	args := m.Called(ctx)
	return args.Get(0).([]pricing.PaymentInstrument), args.Error(1)
}

func (m *MockPaymentPlanRepository) FindTiers(ctx context.Context) ([]pricing.InstallmentTier, error) {
	args := m.Called(ctx)
	return args.Get(0).([]pricing.InstallmentTier), args.Error(1)
}

// MockRuleRepository is a mock implementation of commission.RuleRepository
type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) FindAll(ctx context.Context) ([]commission.CommissionRule, error) {
	args := m.Called(ctx)
	return args.Get(0).([]commission.CommissionRule), args.Error(1)
}

func (m *MockRuleRepository) Save(ctx context.Context, rule *commission.CommissionRule) error {
	return m.Called(ctx, rule).Error(0)
}

// MockSaleCommitter is a mock implementation of settlement.SaleCommitter
type MockSaleCommitter struct {
	mock.Mock
}

func (m *MockSaleCommitter) Commit(ctx context.Context, payload *settlement.CommitPayload) (uuid.UUID, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

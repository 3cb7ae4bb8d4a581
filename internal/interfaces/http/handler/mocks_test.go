package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	commissionapp "github.com/phonestore/backend/internal/application/commission"
	pricingapp "github.com/phonestore/backend/internal/application/pricing"
	"github.com/phonestore/backend/internal/domain/commission"
	"github.com/phonestore/backend/internal/domain/pricing"
	"github.com/phonestore/backend/internal/domain/settlement"
	"github.com/phonestore/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
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
	return m.Called(ctx, rate).Error(0)
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

// MockSaleRepository is a mock implementation of commission.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindInPeriod(ctx context.Context, period commission.Period) ([]commission.Sale, error) {
	args := m.Called(ctx, period)
	return args.Get(0).([]commission.Sale), args.Error(1)
}

// MockSaleCommitter is a mock implementation of settlement.SaleCommitter
type MockSaleCommitter struct {
	mock.Mock
}

func (m *MockSaleCommitter) Commit(ctx context.Context, payload *settlement.CommitPayload) (uuid.UUID, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

const (
	cashID int64 = 1
	visaID int64 = 2
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func activeRate(t *testing.T, source, rate string) *pricing.ExchangeRate {
	t.Helper()
	r, err := pricing.NewExchangeRate(source, dec(rate), time.Now())
	require.NoError(t, err)
	return r
}

// testServer wires the real application services over mocked repositories
type testServer struct {
	engine    *gin.Engine
	rates     *MockExchangeRateRepository
	plans     *MockPaymentPlanRepository
	rules     *MockRuleRepository
	sales     *MockSaleRepository
	committer *MockSaleCommitter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{
		rates:     new(MockExchangeRateRepository),
		plans:     new(MockPaymentPlanRepository),
		rules:     new(MockRuleRepository),
		sales:     new(MockSaleRepository),
		committer: new(MockSaleCommitter),
	}

	s.plans.On("FindInstruments", mock.Anything).Return([]pricing.PaymentInstrument{
		{ID: cashID, Name: "Cash"},
		{ID: visaID, Name: "Visa"},
	}, nil).Maybe()
	s.plans.On("FindTiers", mock.Anything).Return([]pricing.InstallmentTier{
		{InstrumentID: visaID, InstallmentCount: 3, Multiplier: dec("1.10")},
		{InstrumentID: visaID, InstallmentCount: 6, Multiplier: dec("1.25")},
	}, nil).Maybe()
	s.rules.On("FindAll", mock.Anything).Return([]commission.CommissionRule{
		{ID: 1, Value: commission.MustPercentage("5"), Priority: 100},
	}, nil).Maybe()

	logger := zap.NewNop()
	rateSvc := pricingapp.NewExchangeRateService(s.rates, logger)
	planSvc := pricingapp.NewPaymentPlanService(s.plans, logger)
	settlementSvc := pricingapp.NewSettlementService(rateSvc, planSvc, s.rules, s.committer, nil, nil, logger)
	commissionSvc := commissionapp.NewCommissionService(s.rules, s.sales, rateSvc, logger)

	settlementH := NewSettlementHandler(settlementSvc)
	rateH := NewExchangeRateHandler(rateSvc)
	planH := NewPaymentPlanHandler(planSvc)
	commissionH := NewCommissionHandler(commissionSvc)
	reportH := NewReportHandler(commissionSvc)

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/settlements/quote", settlementH.Quote)
	api.POST("/settlements/reconcile", settlementH.Reconcile)
	api.POST("/sales", settlementH.CommitSale)
	api.GET("/exchange-rates/active", rateH.GetActive)
	api.GET("/exchange-rates/history", rateH.History)
	api.POST("/exchange-rates", rateH.Record)
	api.GET("/payment-instruments", planH.ListInstruments)
	api.GET("/payment-instruments/:id/tiers", planH.ListTiers)
	api.GET("/payment-instruments/:id/multiplier", planH.GetMultiplier)
	api.POST("/commission-rules/resolve", commissionH.Resolve)
	api.GET("/commission-rules", commissionH.ListRules)
	api.POST("/commission-rules", commissionH.CreateRule)
	api.GET("/reports/seller-commissions", reportH.SellerCommissions)
	s.engine = r
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data field of a success envelope into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}


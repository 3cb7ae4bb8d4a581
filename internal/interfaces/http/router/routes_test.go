package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/phonestore/backend/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// handlers with nil services: these tests only touch routing and guards.
func testHandlers() Handlers {
	return Handlers{
		Settlement:   handler.NewSettlementHandler(nil),
		ExchangeRate: handler.NewExchangeRateHandler(nil),
		PaymentPlan:  handler.NewPaymentPlanHandler(nil),
		Commission:   handler.NewCommissionHandler(nil),
		Report:       handler.NewReportHandler(nil),
		System:       handler.NewSystemHandler("pricing-engine", "test", nil),
	}
}

func TestSetup_RegistersPricingRoutes(t *testing.T) {
	engine := gin.New()
	Setup(engine, testHandlers(), nil)

	registered := make(map[string]bool)
	for _, ri := range engine.Routes() {
		registered[ri.Method+" "+ri.Path] = true
	}

	expected := []string{
		"GET /health",
		"POST /api/v1/settlements/quote",
		"POST /api/v1/settlements/reconcile",
		"POST /api/v1/sales",
		"GET /api/v1/exchange-rates/active",
		"GET /api/v1/exchange-rates/history",
		"POST /api/v1/exchange-rates",
		"GET /api/v1/payment-instruments",
		"GET /api/v1/payment-instruments/:id/tiers",
		"GET /api/v1/payment-instruments/:id/multiplier",
		"GET /api/v1/commission-rules",
		"POST /api/v1/commission-rules",
		"POST /api/v1/commission-rules/resolve",
		"GET /api/v1/reports/seller-commissions",
		"GET /api/v1/system/info",
		"GET /api/v1/system/ping",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "missing route %s", route)
	}
	assert.Len(t, engine.Routes(), len(expected))
}

func TestPricingGroups_WriteRoutes(t *testing.T) {
	r := NewRouter(gin.New()).Register(PricingGroups(testHandlers())...)

	var writes []string
	for _, route := range r.Routes() {
		if route.Write {
			writes = append(writes, route.Method+" "+route.Path)
		}
	}
	assert.Len(t, r.Routes(), 15)
	assert.Equal(t, []string{
		"POST /api/v1/commission-rules",
		"POST /api/v1/exchange-rates",
		"POST /api/v1/sales",
	}, writes)
}

func TestSetup_WriteGuard(t *testing.T) {
	guarded := 0
	guard := func(c *gin.Context) {
		guarded++
		c.AbortWithStatus(http.StatusTooManyRequests)
	}

	engine := gin.New()
	Setup(engine, testHandlers(), guard)

	writes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/sales"},
		{http.MethodPost, "/api/v1/exchange-rates"},
		{http.MethodPost, "/api/v1/commission-rules"},
	}
	for _, tt := range writes {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code, "%s %s", tt.method, tt.path)
	}
	assert.Equal(t, len(writes), guarded)

	// read-only routes skip the guard
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, len(writes), guarded)
}

func TestSetup_HealthWithoutChecks(t *testing.T) {
	engine := gin.New()
	Setup(engine, testHandlers(), nil, WithAPIVersion("v1"))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

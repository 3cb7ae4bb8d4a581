package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phonestore/backend/internal/interfaces/http/handler"
)

// Handlers bundles the HTTP handlers of the pricing API
type Handlers struct {
	Settlement   *handler.SettlementHandler
	ExchangeRate *handler.ExchangeRateHandler
	PaymentPlan  *handler.PaymentPlanHandler
	Commission   *handler.CommissionHandler
	Report       *handler.ReportHandler
	System       *handler.SystemHandler
}

// PricingGroups builds the versioned route groups of the pricing API.
func PricingGroups(h Handlers) []*DomainGroup {
	settlements := NewDomainGroup("settlement", "/settlements").
		POST("/quote", h.Settlement.Quote).
		POST("/reconcile", h.Settlement.Reconcile)

	sales := NewDomainGroup("sales", "/sales").
		Write(http.MethodPost, "", h.Settlement.CommitSale)

	rates := NewDomainGroup("exchange-rate", "/exchange-rates").
		GET("/active", h.ExchangeRate.GetActive).
		GET("/history", h.ExchangeRate.History).
		Write(http.MethodPost, "", h.ExchangeRate.Record)

	instruments := NewDomainGroup("payment-plan", "/payment-instruments").
		GET("", h.PaymentPlan.ListInstruments).
		GET("/:id/tiers", h.PaymentPlan.ListTiers).
		GET("/:id/multiplier", h.PaymentPlan.GetMultiplier)

	rules := NewDomainGroup("commission", "/commission-rules").
		GET("", h.Commission.ListRules).
		Write(http.MethodPost, "", h.Commission.CreateRule).
		POST("/resolve", h.Commission.Resolve)

	reports := NewDomainGroup("report", "/reports").
		GET("/seller-commissions", h.Report.SellerCommissions)

	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping)

	return []*DomainGroup{settlements, sales, rates, instruments, rules, reports, system}
}

// Setup registers the pricing API on engine: the versioned groups plus the
// unversioned health endpoint. writeGuard may be nil.
func Setup(engine *gin.Engine, h Handlers, writeGuard gin.HandlerFunc, opts ...Option) *Router {
	engine.GET("/health", h.System.Health)

	r := NewRouter(engine, append([]Option{WithWriteGuard(writeGuard)}, opts...)...).
		Register(PricingGroups(h)...)
	r.Mount()
	return r
}

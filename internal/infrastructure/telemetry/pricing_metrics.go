package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// SettlementFlow labels which caller assembled a settlement
type SettlementFlow string

const (
	SettlementFlowQuote     SettlementFlow = "quote"
	SettlementFlowSale      SettlementFlow = "sale"
	SettlementFlowReconcile SettlementFlow = "reconcile"
)

// PricingMetrics records settlement and sale activity.
// A nil *PricingMetrics is valid and records nothing.
type PricingMetrics struct {
	logger *zap.Logger

	assembledTotal metric.Int64Counter
	rejectedTotal  metric.Int64Counter
	surchargeTotal metric.Int64Counter
	committedTotal metric.Int64Counter
	rateRecorded   metric.Int64Counter
}

// NewPricingMetrics registers the pricing instruments on meter
func NewPricingMetrics(meter metric.Meter, logger *zap.Logger) (*PricingMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pm := &PricingMetrics{logger: logger}

	err := RegisterCounters(meter,
		Int64CounterSpec{&pm.assembledTotal, "phs_settlement_assembled_total",
			"Settlements assembled successfully", "{settlements}"},
		Int64CounterSpec{&pm.rejectedTotal, "phs_settlement_rejected_total",
			"Settlement attempts rejected by a domain error", "{settlements}"},
		Int64CounterSpec{&pm.surchargeTotal, "phs_settlement_surcharge_total",
			"Financing surcharge charged on committed sales, in settlement currency cents", "{cents}"},
		Int64CounterSpec{&pm.committedTotal, "phs_sale_committed_total",
			"Sales handed to the persistence boundary and committed", "{sales}"},
		Int64CounterSpec{&pm.rateRecorded, "phs_exchange_rate_recorded_total",
			"Exchange rates appended to the ledger", "{rates}"},
	)
	if err != nil {
		return nil, err
	}
	return pm, nil
}

// RecordAssembled counts a settlement produced by flow
func (pm *PricingMetrics) RecordAssembled(ctx context.Context, flow SettlementFlow) {
	if pm == nil {
		return
	}
	pm.assembledTotal.Add(ctx, 1, metric.WithAttributes(AttrFlow.String(string(flow))))
}

// RecordRejected counts a settlement rejected with a domain error code
func (pm *PricingMetrics) RecordRejected(ctx context.Context, flow SettlementFlow, code string) {
	if pm == nil {
		return
	}
	pm.rejectedTotal.Add(ctx, 1, metric.WithAttributes(AttrFlow.String(string(flow)), AttrErrorCode.String(code)))
}

// RecordSaleCommitted counts a committed sale and adds its surcharge in cents
func (pm *PricingMetrics) RecordSaleCommitted(ctx context.Context, policy string, surcharge decimal.Decimal) {
	if pm == nil {
		return
	}
	pm.committedTotal.Add(ctx, 1, metric.WithAttributes(AttrFinancingPolicy.String(policy)))
	if surcharge.IsPositive() {
		cents := surcharge.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
		pm.surchargeTotal.Add(ctx, cents, metric.WithAttributes(AttrFinancingPolicy.String(policy)))
	}
}

// RecordRateRecorded counts a new ledger entry for source
func (pm *PricingMetrics) RecordRateRecorded(ctx context.Context, source string) {
	if pm == nil {
		return
	}
	pm.rateRecorded.Add(ctx, 1, metric.WithAttributes(AttrRateSource.String(source)))
}

package telemetry_test

import (
	"context"
	"testing"

	"github.com/phonestore/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newTestPricingMetrics(t *testing.T) (*telemetry.PricingMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	pm, err := telemetry.NewPricingMetrics(provider.Meter("test"), zap.NewNop())
	require.NoError(t, err)
	return pm, reader
}

// sumOf returns the total of an int64 sum across data points matching attrs.
func sumOf(t *testing.T, reader *sdkmetric.ManualReader, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				matches := true
				for _, a := range attrs {
					v, found := dp.Attributes.Value(a.Key)
					if !found || v != a.Value {
						matches = false
						break
					}
				}
				if matches {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestNewPricingMetrics_NilMeter(t *testing.T) {
	pm, err := telemetry.NewPricingMetrics(nil, zap.NewNop())
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, pm)
}

func TestPricingMetrics_NilReceiver(t *testing.T) {
	var pm *telemetry.PricingMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		pm.RecordAssembled(ctx, telemetry.SettlementFlowQuote)
		pm.RecordRejected(ctx, telemetry.SettlementFlowSale, "UNBALANCED_PAYMENT")
		pm.RecordSaleCommitted(ctx, "strict", decimal.NewFromInt(60))
		pm.RecordRateRecorded(ctx, "blue")
	})
}

func TestPricingMetrics_NoopMeter(t *testing.T) {
	pm, err := telemetry.NewPricingMetrics(noop.NewMeterProvider().Meter("test"), nil)
	require.NoError(t, err)
	pm.RecordAssembled(context.Background(), telemetry.SettlementFlowReconcile)
}

func TestPricingMetrics_Counts(t *testing.T) {
	pm, reader := newTestPricingMetrics(t)
	ctx := context.Background()

	pm.RecordAssembled(ctx, telemetry.SettlementFlowQuote)
	pm.RecordAssembled(ctx, telemetry.SettlementFlowQuote)
	pm.RecordAssembled(ctx, telemetry.SettlementFlowSale)
	pm.RecordRejected(ctx, telemetry.SettlementFlowSale, "UNBALANCED_PAYMENT")
	pm.RecordRateRecorded(ctx, "blue")

	assert.Equal(t, int64(2), sumOf(t, reader, "phs_settlement_assembled_total",
		telemetry.AttrFlow.String("quote")))
	assert.Equal(t, int64(1), sumOf(t, reader, "phs_settlement_assembled_total",
		telemetry.AttrFlow.String("sale")))
	assert.Equal(t, int64(1), sumOf(t, reader, "phs_settlement_rejected_total",
		telemetry.AttrErrorCode.String("UNBALANCED_PAYMENT")))
	assert.Equal(t, int64(1), sumOf(t, reader, "phs_exchange_rate_recorded_total",
		telemetry.AttrRateSource.String("blue")))
}

func TestPricingMetrics_SurchargeInCents(t *testing.T) {
	pm, reader := newTestPricingMetrics(t)
	ctx := context.Background()

	pm.RecordSaleCommitted(ctx, "strict", decimal.RequireFromString("60.005"))
	pm.RecordSaleCommitted(ctx, "strict", decimal.Zero)

	assert.Equal(t, int64(2), sumOf(t, reader, "phs_sale_committed_total"))
	assert.Equal(t, int64(6001), sumOf(t, reader, "phs_settlement_surcharge_total",
		telemetry.AttrFinancingPolicy.String("strict")))
}

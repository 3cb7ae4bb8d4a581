package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/phonestore/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value
	}
	return m
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, span := telemetry.StartServiceSpan(context.Background(), "settlement", "commit_sale",
		telemetry.AttrSellerID.Int64(7),
		telemetry.AttrLineCount.Int(3),
	)
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "settlement.commit_sale", spans[0].Name())
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, int64(7), attrs[telemetry.AttrSellerID].AsInt64())
	assert.Equal(t, int64(3), attrs[telemetry.AttrLineCount].AsInt64())
}

func TestRecordError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus codes.Code
		wantEvent  string
		wantCode   string
	}{
		{
			name:       "infrastructure failure",
			err:        errors.New("connection reset"),
			wantStatus: codes.Error,
			wantEvent:  "exception",
		},
		{
			name:       "domain rejection",
			err:        shared.NewDomainError(shared.CodeUnbalancedPayment, "payments do not settle the total"),
			wantStatus: codes.Unset,
			wantEvent:  telemetry.EventRejected,
			wantCode:   shared.CodeUnbalancedPayment,
		},
		{
			name:       "wrapped domain rejection",
			err:        errors.Join(errors.New("commit"), shared.ErrDuplicateSerial),
			wantStatus: codes.Unset,
			wantEvent:  telemetry.EventRejected,
			wantCode:   shared.CodeDuplicateSerial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := setupTestTracer(t)

			_, span := telemetry.StartServiceSpan(context.Background(), "settlement", "commit_sale")
			telemetry.RecordError(span, tt.err)
			telemetry.RecordError(span, nil)
			span.End()

			ended := sr.Ended()[0]
			assert.Equal(t, tt.wantStatus, ended.Status().Code)
			require.Len(t, ended.Events(), 1)
			assert.Equal(t, tt.wantEvent, ended.Events()[0].Name)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, attrMap(ended.Attributes())[telemetry.AttrErrorCode].AsString())
			}
		})
	}
}

func TestAddEvent(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, span := telemetry.StartServiceSpan(context.Background(), "exchange_rate", "active")
	telemetry.AddEvent(ctx, "rate_cache_miss", telemetry.AttrRateSource.String("blue"))
	span.End()

	events := sr.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "rate_cache_miss", events[0].Name)
	assert.Equal(t, "blue", attrMap(events[0].Attributes)[telemetry.AttrRateSource].AsString())
}

func TestSpanHelpers_WithoutSpan(t *testing.T) {
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
	assert.NotPanics(t, func() {
		telemetry.RecordError(nil, errors.New("x"))
		telemetry.AddEvent(context.Background(), "ignored")
	})
}

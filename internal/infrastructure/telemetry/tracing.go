package telemetry

import (
	"context"
	"errors"

	"github.com/phonestore/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer used for application service spans
const TracerName = "phonestore-backend"

// Span attributes set by the application services
const (
	AttrCustomerID = attribute.Key("sale.customer_id")
	AttrSellerID   = attribute.Key("sale.seller_id")
	AttrSaleID     = attribute.Key("sale.id")
	AttrLineCount  = attribute.Key("sale.line_count")
	AttrRateSource = attribute.Key("rate.source")
	AttrRate       = attribute.Key("rate.value")
	AttrErrorCode  = attribute.Key("error.code")
)

// EventRejected is added to a span when a business rule refuses the request
const EventRejected = "business_rule.rejected"

// StartServiceSpan starts an internal span named "{service}.{method}".
// The caller ends the span.
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "commit_sale")
//	defer span.End()
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError annotates span with err.
//
// A *shared.DomainError is a refused request rather than a failure: it is
// recorded as an EventRejected event carrying the error code and the span
// status is left unset. Any other error marks the span as failed.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		span.SetAttributes(AttrErrorCode.String(domainErr.Code))
		span.AddEvent(EventRejected, trace.WithAttributes(AttrErrorCode.String(domainErr.Code)))
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddEvent adds an event to the span carried by ctx, if any is recording
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the trace ID of the span in ctx, or "" without one
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

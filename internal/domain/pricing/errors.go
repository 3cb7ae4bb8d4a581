package pricing

import (
	"fmt"

	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvalidRateError is returned whenever a conversion is attempted with a missing,
// zero or negative exchange rate. Callers must abort; there is no fallback rate.
type InvalidRateError struct {
	*shared.DomainError
	Source string
	Rate   decimal.Decimal
}

// Unwrap exposes the underlying DomainError to errors.As
func (e *InvalidRateError) Unwrap() error {
	return e.DomainError
}

// NewInvalidRateError builds an InvalidRateError for the given rate value
func NewInvalidRateError(source string, rate decimal.Decimal) *InvalidRateError {
	var msg string
	switch {
	case rate.IsZero() && source != "":
		msg = fmt.Sprintf("No usable exchange rate for source %q; record a positive rate before pricing", source)
	case rate.IsZero():
		msg = "Exchange rate is missing or zero; record a positive rate before pricing"
	default:
		msg = fmt.Sprintf("Exchange rate must be positive, got %s", rate.String())
	}
	return &InvalidRateError{
		DomainError: shared.NewDomainError(shared.CodeInvalidRate, msg),
		Source:      source,
		Rate:        rate,
	}
}

// NewMissingRateError reports that no active rate exists for a source
func NewMissingRateError(source string) *InvalidRateError {
	return &InvalidRateError{
		DomainError: shared.NewDomainError(shared.CodeInvalidRate,
			fmt.Sprintf("No active exchange rate for source %q; record one before pricing", source)),
		Source: source,
		Rate:   decimal.Zero,
	}
}

// AmbiguousFinancingError is returned by the strict financing policy when more than
// one payment entry carries a multiplier above 1.
type AmbiguousFinancingError struct {
	*shared.DomainError
	InstrumentIDs []int64
}

// Unwrap exposes the underlying DomainError to errors.As
func (e *AmbiguousFinancingError) Unwrap() error {
	return e.DomainError
}

// NewAmbiguousFinancingError builds an AmbiguousFinancingError listing the financed instruments
func NewAmbiguousFinancingError(instrumentIDs []int64) *AmbiguousFinancingError {
	return &AmbiguousFinancingError{
		DomainError: shared.NewDomainError(shared.CodeAmbiguousFinancing,
			fmt.Sprintf("Only one financed payment is allowed per sale, got %d (instruments %v); "+
				"merge them into a single instalment plan", len(instrumentIDs), instrumentIDs)),
		InstrumentIDs: instrumentIDs,
	}
}

// UnbalancedPaymentError is returned when tendered payments do not add up to the amount due
type UnbalancedPaymentError struct {
	*shared.DomainError
	FinalTotal    decimal.Decimal
	TotalTendered decimal.Decimal
	Difference    decimal.Decimal // FinalTotal - TotalTendered, negative when overpaid
}

// Unwrap exposes the underlying DomainError to errors.As
func (e *UnbalancedPaymentError) Unwrap() error {
	return e.DomainError
}

// NewUnbalancedPaymentError builds an UnbalancedPaymentError with an actionable message
func NewUnbalancedPaymentError(finalTotal, tendered decimal.Decimal) *UnbalancedPaymentError {
	diff := finalTotal.Sub(tendered)
	var msg string
	if diff.IsPositive() {
		msg = fmt.Sprintf("Payments total %s but the amount due is %s; add %s to settle",
			tendered.StringFixed(2), finalTotal.StringFixed(2), diff.StringFixed(2))
	} else {
		msg = fmt.Sprintf("Payments total %s but the amount due is %s; reduce payments by %s",
			tendered.StringFixed(2), finalTotal.StringFixed(2), diff.Neg().StringFixed(2))
	}
	return &UnbalancedPaymentError{
		DomainError:   shared.NewDomainError(shared.CodeUnbalancedPayment, msg),
		FinalTotal:    finalTotal,
		TotalTendered: tendered,
		Difference:    diff,
	}
}

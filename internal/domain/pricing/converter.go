package pricing

import (
	"github.com/shopspring/decimal"
)

// ToSettlement converts a base-currency amount using rate (settlement units per base unit)
func ToSettlement(amountBase, rate decimal.Decimal) (decimal.Decimal, error) {
	if !rate.IsPositive() {
		return decimal.Zero, NewInvalidRateError("", rate)
	}
	return amountBase.Mul(rate), nil
}

// ToBase converts a settlement-currency amount back to the base currency
func ToBase(amountSettlement, rate decimal.Decimal) (decimal.Decimal, error) {
	if !rate.IsPositive() {
		return decimal.Zero, NewInvalidRateError("", rate)
	}
	return amountSettlement.Div(rate), nil
}

// Converter is a CurrencyConverter bound to a validated rate.
// The zero value has no rate and fails every conversion with InvalidRateError.
type Converter struct {
	source string
	rate   decimal.Decimal
}

// NewConverter validates rate and returns a converter for it
func NewConverter(rate decimal.Decimal) (Converter, error) {
	return NewConverterForSource("", rate)
}

// NewConverterForSource is NewConverter with the rate source kept for error messages
func NewConverterForSource(source string, rate decimal.Decimal) (Converter, error) {
	if !rate.IsPositive() {
		return Converter{}, NewInvalidRateError(source, rate)
	}
	return Converter{source: source, rate: rate}, nil
}

// Rate returns the bound rate
func (c Converter) Rate() decimal.Decimal {
	return c.rate
}

// Source returns the rate source, empty when unknown
func (c Converter) Source() string {
	return c.source
}

// Valid reports whether the converter carries a usable rate
func (c Converter) Valid() bool {
	return c.rate.IsPositive()
}

// ToSettlement converts a base-currency amount to the settlement currency
func (c Converter) ToSettlement(amountBase decimal.Decimal) (decimal.Decimal, error) {
	if !c.Valid() {
		return decimal.Zero, NewInvalidRateError(c.source, c.rate)
	}
	return amountBase.Mul(c.rate), nil
}

// ToBase converts a settlement-currency amount to the base currency
func (c Converter) ToBase(amountSettlement decimal.Decimal) (decimal.Decimal, error) {
	if !c.Valid() {
		return decimal.Zero, NewInvalidRateError(c.source, c.rate)
	}
	return amountSettlement.Div(c.rate), nil
}

// Normalize returns the payment amount in the settlement currency.
// Settlement-denominated entries pass through without touching the rate.
func (c Converter) Normalize(p PaymentEntry) (decimal.Decimal, error) {
	if p.Currency == CurrencyBase {
		return c.ToSettlement(p.Amount)
	}
	return p.Amount, nil
}

package pricing

import (
	"fmt"

	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentCurrency tells in which currency a payment entry amount is expressed
type PaymentCurrency string

const (
	CurrencyBase       PaymentCurrency = "base"
	CurrencySettlement PaymentCurrency = "settlement"
)

// IsValid checks if the payment currency is known
func (c PaymentCurrency) IsValid() bool {
	switch c {
	case CurrencyBase, CurrencySettlement:
		return true
	}
	return false
}

// PaymentEntry is one tendered payment as chosen by the operator
type PaymentEntry struct {
	InstrumentID int64
	Installments int // 0 when paid in a single instalment
	Amount       decimal.Decimal
	Currency     PaymentCurrency
	Reference    string
}

// Validate checks the entry shape; it does not look at the instrument catalog
func (p PaymentEntry) Validate() error {
	if p.InstrumentID <= 0 {
		return shared.NewDomainError(shared.CodeInvalidPayment, "Payment instrument is required")
	}
	if p.Installments < 0 {
		return shared.NewDomainError(shared.CodeInvalidPayment,
			fmt.Sprintf("Installment count cannot be negative, got %d", p.Installments))
	}
	if p.Amount.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidPayment,
			fmt.Sprintf("Payment amount cannot be negative, got %s", p.Amount.String()))
	}
	if !p.Currency.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidPayment,
			fmt.Sprintf("Payment currency must be %q or %q, got %q", CurrencyBase, CurrencySettlement, p.Currency))
	}
	return nil
}

// ResolvedPayment is a PaymentEntry after its multiplier has been looked up.
// A resolved payment is financed when its multiplier is above 1.
type ResolvedPayment struct {
	Entry      PaymentEntry
	Multiplier decimal.Decimal
	Normalized decimal.Decimal // amount in settlement currency
}

// Financed reports whether the payment carries an interest surcharge
func (r ResolvedPayment) Financed() bool {
	return r.Multiplier.GreaterThan(decimal.NewFromInt(1))
}

package commission

import (
	"fmt"

	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Kind discriminates the two commission variants
type Kind string

const (
	KindPercentage Kind = "percentage"
	KindFixed      Kind = "fixed"
)

var hundred = decimal.NewFromInt(100)

// Value is a commission rate: either a percentage of the line price or a fixed
// base-currency amount per unit. Build it with NewPercentage or NewFixed; the
// zero value is "unset" and never yields a commission.
type Value struct {
	kind   Kind
	amount decimal.Decimal
}

// NewPercentage creates a percentage commission (0..100)
func NewPercentage(pct decimal.Decimal) (Value, error) {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return Value{}, shared.NewDomainError(shared.CodeInvalidCommission,
			fmt.Sprintf("Commission percentage must be between 0 and 100, got %s", pct.String()))
	}
	return Value{kind: KindPercentage, amount: pct}, nil
}

// NewFixed creates a fixed per-unit commission in base currency
func NewFixed(amount decimal.Decimal) (Value, error) {
	if amount.IsNegative() {
		return Value{}, shared.NewDomainError(shared.CodeInvalidCommission,
			fmt.Sprintf("Fixed commission cannot be negative, got %s", amount.String()))
	}
	return Value{kind: KindFixed, amount: amount}, nil
}

// MustPercentage is NewPercentage that panics; for fixtures
func MustPercentage(pct string) Value {
	v, err := NewPercentage(decimal.RequireFromString(pct))
	if err != nil {
		panic(err)
	}
	return v
}

// MustFixed is NewFixed that panics; for fixtures
func MustFixed(amount string) Value {
	v, err := NewFixed(decimal.RequireFromString(amount))
	if err != nil {
		panic(err)
	}
	return v
}

// FromFields builds a Value from the nullable column pair used in storage and
// on the wire. Exactly one of pct and fixed must be set.
func FromFields(pct, fixed *decimal.Decimal) (Value, error) {
	switch {
	case pct != nil && fixed != nil:
		return Value{}, shared.NewDomainError(shared.CodeInvalidCommission,
			"Set either a commission percentage or a fixed commission, not both")
	case pct != nil:
		return NewPercentage(*pct)
	case fixed != nil:
		return NewFixed(*fixed)
	}
	return Value{}, shared.NewDomainError(shared.CodeInvalidCommission,
		"A commission percentage or a fixed commission is required")
}

// Fields is the inverse of FromFields
func (v Value) Fields() (pct, fixed *decimal.Decimal) {
	amount := v.amount
	switch v.kind {
	case KindPercentage:
		return &amount, nil
	case KindFixed:
		return nil, &amount
	}
	return nil, nil
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) Amount() decimal.Decimal {
	return v.amount
}

// IsSet reports whether v was built by a constructor
func (v Value) IsSet() bool {
	return v.kind == KindPercentage || v.kind == KindFixed
}

// ItemCommission returns the base-currency commission for quantity units sold at usdPrice
func (v Value) ItemCommission(usdPrice decimal.Decimal, quantity int) decimal.Decimal {
	qty := decimal.NewFromInt(int64(quantity))
	switch v.kind {
	case KindPercentage:
		return usdPrice.Mul(qty).Mul(v.amount).Div(hundred)
	case KindFixed:
		return v.amount.Mul(qty)
	}
	return decimal.Zero
}

// Equals compares kind and amount
func (v Value) Equals(other Value) bool {
	return v.kind == other.kind && v.amount.Equal(other.amount)
}

func (v Value) String() string {
	switch v.kind {
	case KindPercentage:
		return v.amount.String() + "%"
	case KindFixed:
		return v.amount.StringFixed(2) + " fixed"
	}
	return "unset"
}

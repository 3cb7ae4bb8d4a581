package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code.
type Currency string

const (
	USD Currency = "USD" // catalog and commission unit
	ARS Currency = "ARS" // what customers pay in
)

// Defaults of the back office; config may override both.
const (
	DefaultBaseCurrency       = USD
	DefaultSettlementCurrency = ARS
)

// MinorUnitPlaces is the number of fraction digits shown to clients.
const MinorUnitPlaces int32 = 2

var errNoCurrency = errors.New("currency cannot be empty")

// Money is an immutable amount tagged with its currency.
// Arithmetic keeps full precision; rounding happens only through Round or on output.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errNoCurrency
	}
	return Money{amount: amount, currency: currency}, nil
}

// MustMoney is NewMoney for callers that already hold a known currency.
func MustMoney(amount decimal.Decimal, currency Currency) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseMoney reads a decimal string such as "1059.99".
func ParseMoney(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return NewMoney(d, currency)
}

// Zero is the additive identity in currency.
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }

// Accumulate adds raw amounts that are already expressed in m's currency.
func (m Money) Accumulate(amounts ...decimal.Decimal) Money {
	sum := m.amount
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	return Money{amount: sum, currency: m.currency}
}

// Plus adds two amounts of the same currency.
func (m Money) Plus(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("currency mismatch: %s + %s", m.currency, other.currency)
	}
	return m.Accumulate(other.amount), nil
}

// Round uses half-away-from-zero rounding at places.
func (m Money) Round(places int32) Money {
	return Money{amount: m.amount.Round(places), currency: m.currency}
}

func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) String() string {
	return m.amount.StringFixed(MinorUnitPlaces) + " " + string(m.currency)
}

type moneyJSON struct {
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
}

// MarshalJSON renders the amount as a fixed two-digit string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount.StringFixed(MinorUnitPlaces), Currency: m.currency})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseMoney(v.Amount, v.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

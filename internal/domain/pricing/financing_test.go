package pricing

import (
	"testing"

	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ars(instrument int64, installments int, amount string) PaymentEntry {
	return PaymentEntry{InstrumentID: instrument, Installments: installments, Amount: d(amount), Currency: CurrencySettlement}
}

func TestFinancingCalculator_SingleFinancedEntry(t *testing.T) {
	calc := NewFinancingCalculator(testCatalog(t), nil)

	res, err := calc.Calculate(d("1000"), decimal.Zero, []PaymentEntry{
		ars(cashID, 0, "400"),
		ars(visaID, 3, "660"),
	}, Converter{})
	require.NoError(t, err)

	assert.True(t, res.PaidNoInterest.Equal(d("400")))
	assert.True(t, res.RemainingAfterNoInterest.Equal(d("600")))
	assert.True(t, res.Surcharge.Equal(d("60")), "surcharge %s", res.Surcharge)
	assert.True(t, res.FinalTotal.Equal(d("1060")))
	assert.True(t, res.Multiplier.Equal(d("1.10")))
	assert.True(t, res.HasFinancing())
	require.Len(t, res.Payments, 2)
	assert.False(t, res.Payments[0].Financed())
	assert.True(t, res.Payments[1].Financed())
}

func TestFinancingCalculator_NoFinancingIdentity(t *testing.T) {
	calc := NewFinancingCalculator(testCatalog(t), nil)

	tests := []struct {
		name     string
		base     string
		discount string
		payments []PaymentEntry
	}{
		{"no payments", "1000", "0", nil},
		{"cash only", "1000", "0", []PaymentEntry{ars(cashID, 0, "1000")}},
		{"cash and transfer with discount", "1234.56", "34.56", []PaymentEntry{ars(cashID, 0, "200"), ars(transferID, 0, "1000")}},
		{"installments without a tier", "500", "10", []PaymentEntry{ars(visaID, 5, "490")}},
		{"underpaid", "800", "0", []PaymentEntry{ars(cashID, 0, "100")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := calc.Calculate(d(tt.base), d(tt.discount), tt.payments, Converter{})
			require.NoError(t, err)
			assert.True(t, res.Surcharge.IsZero())
			assert.True(t, res.FinalTotal.Equal(d(tt.base).Sub(d(tt.discount))))
			assert.False(t, res.HasFinancing())
		})
	}
}

func TestFinancingCalculator_DiscountReducesFinancedBase(t *testing.T) {
	calc := NewFinancingCalculator(testCatalog(t), nil)

	res, err := calc.Calculate(d("1000"), d("100"), []PaymentEntry{
		ars(cashID, 0, "400"),
		ars(visaID, 6, "625"),
	}, Converter{})
	require.NoError(t, err)

	assert.True(t, res.RemainingAfterNoInterest.Equal(d("500")))
	assert.True(t, res.Surcharge.Equal(d("125")))
	assert.True(t, res.FinalTotal.Equal(d("1025")))
	assert.True(t, res.FinalTotal.Equal(res.BaseTotal.Sub(res.Discount).Add(res.Surcharge)))
}

func TestFinancingCalculator_NoInterestOverpaysBase(t *testing.T) {
	calc := NewFinancingCalculator(testCatalog(t), nil)

	res, err := calc.Calculate(d("1000"), decimal.Zero, []PaymentEntry{
		ars(cashID, 0, "1200"),
		ars(visaID, 3, "0"),
	}, Converter{})
	require.NoError(t, err)
	assert.True(t, res.RemainingAfterNoInterest.IsZero())
	assert.True(t, res.Surcharge.IsZero())
	assert.True(t, res.FinalTotal.Equal(d("1000")))
}

func TestFinancingCalculator_BaseCurrencyPayments(t *testing.T) {
	calc := NewFinancingCalculator(testCatalog(t), nil)
	conv, err := NewConverter(d("1000"))
	require.NoError(t, err)

	res, err := calc.Calculate(d("1000"), decimal.Zero, []PaymentEntry{
		{InstrumentID: cashID, Amount: d("0.4"), Currency: CurrencyBase},
		ars(visaID, 3, "660"),
	}, conv)
	require.NoError(t, err)
	assert.True(t, res.PaidNoInterest.Equal(d("400")))
	assert.True(t, res.FinalTotal.Equal(d("1060")))

	_, err = calc.Calculate(d("1000"), decimal.Zero, []PaymentEntry{
		{InstrumentID: cashID, Amount: d("0.4"), Currency: CurrencyBase},
	}, Converter{})
	assert.ErrorAs(t, err, new(*InvalidRateError))
}

func TestFinancingCalculator_StrictRejectsMultipleFinanced(t *testing.T) {
	calc := NewFinancingCalculator(testCatalog(t), NewStrictFinancingPolicy())

	_, err := calc.Calculate(d("1000"), decimal.Zero, []PaymentEntry{
		ars(visaID, 3, "500"),
		ars(debitID, 0, "500"),
	}, Converter{})

	var ambiguous *AmbiguousFinancingError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, []int64{visaID, debitID}, ambiguous.InstrumentIDs)
	assert.Equal(t, shared.CodeAmbiguousFinancing, ambiguous.Code)
}

func TestFinancingCalculator_WeightedPolicy(t *testing.T) {
	calc := NewFinancingCalculator(testCatalog(t), NewWeightedFinancingPolicy())

	// (300*1.10 + 100*1.50) / 400 = 1.20
	res, err := calc.Calculate(d("1000"), decimal.Zero, []PaymentEntry{
		ars(cashID, 0, "600"),
		ars(visaID, 3, "300"),
		ars(visaID, 12, "100"),
	}, Converter{})
	require.NoError(t, err)
	assert.True(t, res.Multiplier.Equal(d("1.2")), "multiplier %s", res.Multiplier)
	assert.True(t, res.Surcharge.Equal(d("80")))
	assert.True(t, res.FinalTotal.Equal(d("1080")))

	t.Run("zero amounts use the simple mean", func(t *testing.T) {
		res, err := calc.Calculate(d("1000"), decimal.Zero, []PaymentEntry{
			ars(visaID, 3, "0"),
			ars(visaID, 12, "0"),
		}, Converter{})
		require.NoError(t, err)
		assert.True(t, res.Multiplier.Equal(d("1.3")))
		assert.True(t, res.Surcharge.Equal(d("300")))
	})
}

func TestFinancingCalculator_InputValidation(t *testing.T) {
	calc := NewFinancingCalculator(testCatalog(t), nil)

	tests := []struct {
		name     string
		base     string
		discount string
		payments []PaymentEntry
		code     string
	}{
		{"negative discount", "100", "-1", nil, shared.CodeInvalidDiscount},
		{"discount above base", "100", "100.01", nil, shared.CodeInvalidDiscount},
		{"negative base", "-1", "0", nil, shared.CodeInvalidLine},
		{"negative payment", "100", "0", []PaymentEntry{ars(cashID, 0, "-5")}, shared.CodeInvalidPayment},
		{"missing instrument", "100", "0", []PaymentEntry{ars(0, 0, "5")}, shared.CodeInvalidPayment},
		{"negative installments", "100", "0", []PaymentEntry{ars(visaID, -3, "5")}, shared.CodeInvalidPayment},
		{"unknown currency", "100", "0", []PaymentEntry{{InstrumentID: cashID, Amount: d("5"), Currency: "EUR"}}, shared.CodeInvalidPayment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Calculate(d(tt.base), d(tt.discount), tt.payments, Converter{})
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.code, domainErr.Code)
		})
	}
}

func TestNewFinancingPolicy(t *testing.T) {
	p, err := NewFinancingPolicy("")
	require.NoError(t, err)
	assert.Equal(t, FinancingPolicyStrict, p.Name())

	p, err = NewFinancingPolicy(FinancingPolicyWeighted)
	require.NoError(t, err)
	assert.Equal(t, FinancingPolicyWeighted, p.Name())
	assert.NotEmpty(t, p.Description())

	_, err = NewFinancingPolicy("first-wins")
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeInvalidFinancingPol, domainErr.Code)
	assert.Contains(t, err.Error(), "strict, weighted")

	assert.Equal(t, []string{FinancingPolicyStrict, FinancingPolicyWeighted}, FinancingPolicyNames())
}

package pricing

import (
	"testing"

	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	cashID     int64 = 1
	transferID int64 = 2
	visaID     int64 = 3
	debitID    int64 = 4
)

func testCatalog(t *testing.T) *PaymentPlanCatalog {
	t.Helper()
	catalog, err := NewPaymentPlanCatalog(
		[]PaymentInstrument{
			{ID: cashID, Name: "Cash", BaseMultiplier: d("1")},
			{ID: transferID, Name: "Bank transfer"},
			{ID: visaID, Name: "Visa", BaseMultiplier: d("1")},
			{ID: debitID, Name: "Debit card", BaseMultiplier: d("1.05")},
		},
		[]InstallmentTier{
			{InstrumentID: visaID, InstallmentCount: 12, Multiplier: d("1.50")},
			{InstrumentID: visaID, InstallmentCount: 3, Multiplier: d("1.10"), Description: "3 cuotas"},
			{InstrumentID: visaID, InstallmentCount: 6, Multiplier: d("1.25")},
		},
	)
	require.NoError(t, err)
	return catalog
}

func TestPaymentPlanCatalog_MultiplierFor(t *testing.T) {
	catalog := testCatalog(t)

	tests := []struct {
		name         string
		instrument   int64
		installments int
		want         string
	}{
		{"tier match", visaID, 3, "1.10"},
		{"another tier", visaID, 12, "1.50"},
		{"no installments uses base multiplier", visaID, 0, "1"},
		{"unknown installment count falls back to base", visaID, 5, "1"},
		{"zero base multiplier reads as one", transferID, 0, "1"},
		{"base surcharge without tiers", debitID, 0, "1.05"},
		{"installments on instrument without tiers", debitID, 3, "1.05"},
		{"unknown instrument", 99, 3, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := catalog.MultiplierFor(tt.instrument, tt.installments)
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestPaymentPlanCatalog_TiersFor(t *testing.T) {
	catalog := testCatalog(t)

	tiers := catalog.TiersFor(visaID)
	require.Len(t, tiers, 3)
	assert.Equal(t, 3, tiers[0].InstallmentCount)
	assert.Equal(t, 6, tiers[1].InstallmentCount)
	assert.Equal(t, 12, tiers[2].InstallmentCount)
	assert.Equal(t, "3 cuotas", tiers[0].Description)

	assert.Empty(t, catalog.TiersFor(cashID))

	tiers[0].Multiplier = d("9")
	assert.True(t, catalog.MultiplierFor(visaID, 3).Equal(d("1.10")), "returned tiers must be a copy")
}

func TestPaymentPlanCatalog_Instruments(t *testing.T) {
	catalog := testCatalog(t)
	names := make([]string, 0)
	for _, inst := range catalog.Instruments() {
		names = append(names, inst.Name)
	}
	assert.Equal(t, []string{"Bank transfer", "Cash", "Debit card", "Visa"}, names)

	inst, ok := catalog.Instrument(transferID)
	require.True(t, ok)
	assert.True(t, inst.BaseMultiplier.Equal(decimal.NewFromInt(1)))
}

func TestNewPaymentPlanCatalog_Validation(t *testing.T) {
	visa := PaymentInstrument{ID: visaID, Name: "Visa", BaseMultiplier: d("1")}

	tests := []struct {
		name        string
		instruments []PaymentInstrument
		tiers       []InstallmentTier
	}{
		{
			name:        "duplicate instrument",
			instruments: []PaymentInstrument{visa, visa},
		},
		{
			name:        "multiplier below one",
			instruments: []PaymentInstrument{{ID: 1, Name: "Promo", BaseMultiplier: d("0.9")}},
		},
		{
			name:        "tier for unknown instrument",
			instruments: []PaymentInstrument{visa},
			tiers:       []InstallmentTier{{InstrumentID: 42, InstallmentCount: 3, Multiplier: d("1.1")}},
		},
		{
			name:        "non positive installment count",
			instruments: []PaymentInstrument{visa},
			tiers:       []InstallmentTier{{InstrumentID: visaID, InstallmentCount: 0, Multiplier: d("1.1")}},
		},
		{
			name:        "tier multiplier below one",
			instruments: []PaymentInstrument{visa},
			tiers:       []InstallmentTier{{InstrumentID: visaID, InstallmentCount: 3, Multiplier: d("0.5")}},
		},
		{
			name:        "duplicate tier",
			instruments: []PaymentInstrument{visa},
			tiers: []InstallmentTier{
				{InstrumentID: visaID, InstallmentCount: 3, Multiplier: d("1.1")},
				{InstrumentID: visaID, InstallmentCount: 3, Multiplier: d("1.2")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPaymentPlanCatalog(tt.instruments, tt.tiers)
			require.Error(t, err)
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, shared.CodeInvalidPaymentPlan, domainErr.Code)
		})
	}
}

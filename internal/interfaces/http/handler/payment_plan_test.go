package handler

import (
	"net/http"
	"testing"

	pricingapp "github.com/phonestore/backend/internal/application/pricing"
	"github.com/phonestore/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentPlanHandler_ListInstruments(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/payment-instruments", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var instruments []pricingapp.InstrumentResponse
	decodeData(t, w, &instruments)
	require.Len(t, instruments, 2)
	assert.Equal(t, "Cash", instruments[0].Name)
	assert.False(t, instruments[0].HasInstallments)
	assert.Equal(t, "Visa", instruments[1].Name)
	assert.True(t, instruments[1].HasInstallments)
}

func TestPaymentPlanHandler_ListTiers(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/payment-instruments/2/tiers", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tiers []pricingapp.TierResponse
	decodeData(t, w, &tiers)
	require.Len(t, tiers, 2)
	assert.Equal(t, 3, tiers[0].InstallmentCount)
	assert.Equal(t, 6, tiers[1].InstallmentCount)

	w = s.do(t, http.MethodGet, "/api/v1/payment-instruments/99/tiers", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/payment-instruments/abc/tiers", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentPlanHandler_GetMultiplier(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		wantStatus     int
		wantMultiplier string
		wantFinanced   bool
		wantCode       string
	}{
		{name: "matching tier", path: "/api/v1/payment-instruments/2/multiplier?installments=6", wantStatus: http.StatusOK, wantMultiplier: "1.25", wantFinanced: true},
		{name: "no matching tier", path: "/api/v1/payment-instruments/2/multiplier?installments=12", wantStatus: http.StatusOK, wantMultiplier: "1"},
		{name: "single payment by default", path: "/api/v1/payment-instruments/1/multiplier", wantStatus: http.StatusOK, wantMultiplier: "1"},
		{name: "negative installments", path: "/api/v1/payment-instruments/2/multiplier?installments=-1", wantStatus: http.StatusBadRequest, wantCode: dto.ErrCodeBadRequest},
		{name: "unknown instrument", path: "/api/v1/payment-instruments/99/multiplier", wantStatus: http.StatusNotFound, wantCode: dto.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			w := s.do(t, http.MethodGet, tt.path, nil)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
				return
			}

			var m pricingapp.MultiplierResponse
			decodeData(t, w, &m)
			assert.True(t, m.Multiplier.Equal(dec(tt.wantMultiplier)), m.Multiplier.String())
			assert.Equal(t, tt.wantFinanced, m.Financed)
		})
	}
}

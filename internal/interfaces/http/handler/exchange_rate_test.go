package handler

import (
	"net/http"
	"testing"

	pricingapp "github.com/phonestore/backend/internal/application/pricing"
	"github.com/phonestore/backend/internal/domain/pricing"
	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/phonestore/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExchangeRateHandler_GetActive(t *testing.T) {
	t.Run("default source", func(t *testing.T) {
		s := newTestServer(t)
		s.rates.On("FindActive", mock.Anything, "blue").Return(activeRate(t, "blue", "1185.50"), nil)

		w := s.do(t, http.MethodGet, "/api/v1/exchange-rates/active", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var rate pricingapp.ExchangeRateResponse
		decodeData(t, w, &rate)
		assert.Equal(t, "blue", rate.Source)
		assert.True(t, rate.Rate.Equal(dec("1185.50")))
		assert.True(t, rate.IsActive)
	})

	t.Run("named source is normalized", func(t *testing.T) {
		s := newTestServer(t)
		s.rates.On("FindActive", mock.Anything, "official").Return(activeRate(t, "official", "980"), nil)

		w := s.do(t, http.MethodGet, "/api/v1/exchange-rates/active?source=Official", nil)
		require.Equal(t, http.StatusOK, w.Code)
		s.rates.AssertExpectations(t)
	})

	t.Run("no active rate", func(t *testing.T) {
		s := newTestServer(t)
		s.rates.On("FindActive", mock.Anything, "blue").Return(nil, shared.ErrNotFound)

		w := s.do(t, http.MethodGet, "/api/v1/exchange-rates/active", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidRate, decodeError(t, w).Code)
	})
}

func TestExchangeRateHandler_Record(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]any
		repoErr    error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "records a rate",
			body:       map[string]any{"source": "blue", "rate": "1200"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "zero rate",
			body:       map[string]any{"source": "blue", "rate": "0"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodeInvalidRate,
		},
		{
			name:       "missing source",
			body:       map[string]any{"rate": "1200"},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
		},
		{
			name:       "concurrent writer",
			body:       map[string]any{"source": "blue", "rate": "1200"},
			repoErr:    shared.NewDomainError(shared.CodeRateConflict, "Another rate was recorded for blue concurrently"),
			wantStatus: http.StatusConflict,
			wantCode:   dto.ErrCodeRateConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.rates.On("Record", mock.Anything, mock.AnythingOfType("*pricing.ExchangeRate")).Return(tt.repoErr).Maybe()

			w := s.do(t, http.MethodPost, "/api/v1/exchange-rates", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
				return
			}

			var rate pricingapp.ExchangeRateResponse
			decodeData(t, w, &rate)
			assert.True(t, rate.Rate.Equal(dec("1200")))
			assert.True(t, rate.IsActive)
		})
	}
}

func TestExchangeRateHandler_History(t *testing.T) {
	s := newTestServer(t)
	older := activeRate(t, "blue", "1100")
	older.IsActive = false
	s.rates.On("History", mock.Anything, "blue", 2).Return([]pricing.ExchangeRate{
		*activeRate(t, "blue", "1200"),
		*older,
	}, nil)

	w := s.do(t, http.MethodGet, "/api/v1/exchange-rates/history?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var rates []pricingapp.ExchangeRateResponse
	decodeData(t, w, &rates)
	require.Len(t, rates, 2)
	assert.True(t, rates[0].IsActive)
	assert.False(t, rates[1].IsActive)

	w = s.do(t, http.MethodGet, "/api/v1/exchange-rates/history?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

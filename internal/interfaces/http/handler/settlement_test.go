package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	pricingapp "github.com/phonestore/backend/internal/application/pricing"
	"github.com/phonestore/backend/internal/domain/settlement"
	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/phonestore/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func cart(payments ...map[string]any) map[string]any {
	return map[string]any{
		"lines": []map[string]any{{
			"variant_id":  uuid.NewString(),
			"description": "Galaxy S24",
			"usd_price":   "500",
			"quantity":    2,
			"serials":     []string{"SN-1", "SN-2"},
		}},
		"payments": payments,
	}
}

var (
	cashPayment = map[string]any{"instrument_id": cashID, "amount": "400000"}
	visaPayment = map[string]any{"instrument_id": visaID, "installments": 3, "amount": "660000"}
)

func TestSettlementHandler_Quote(t *testing.T) {
	s := newTestServer(t)
	s.rates.On("FindActive", mock.Anything, "blue").Return(activeRate(t, "blue", "1000"), nil)

	w := s.do(t, http.MethodPost, "/api/v1/settlements/quote", cart(cashPayment, visaPayment))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var quote pricingapp.SettlementResponse
	decodeData(t, w, &quote)
	assert.True(t, quote.BaseTotal.Equal(dec("1000000")))
	assert.True(t, quote.SurchargeAmount.Equal(dec("60000")))
	assert.True(t, quote.FinalTotal.Equal(dec("1060000")))
	assert.True(t, quote.Balanced)
	require.Len(t, quote.Lines, 1)
	assert.True(t, quote.Lines[0].CommissionUSD.Equal(dec("50")))
}

func TestSettlementHandler_Quote_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		rate       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "no lines",
			body:       map[string]any{"lines": []any{}},
			rate:       "1000",
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
		},
		{
			name:       "malformed body",
			body:       `{"lines": [`,
			rate:       "1000",
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeInvalidJSON,
		},
		{
			name: "two financed payments",
			body: cart(
				map[string]any{"instrument_id": visaID, "installments": 3, "amount": "500000"},
				map[string]any{"instrument_id": visaID, "installments": 6, "amount": "500000"},
			),
			rate:       "1000",
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodeAmbiguousFinancing,
		},
		{
			name:       "discount above total",
			body:       func() map[string]any { b := cart(); b["discount"] = "2000000"; return b }(),
			rate:       "1000",
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeInvalidDiscount,
		},
		{
			name:       "negative payment",
			body:       cart(map[string]any{"instrument_id": cashID, "amount": "-100"}),
			rate:       "1000",
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeInvalidPayment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.rates.On("FindActive", mock.Anything, "blue").Return(activeRate(t, "blue", tt.rate), nil).Maybe()

			w := s.do(t, http.MethodPost, "/api/v1/settlements/quote", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
		})
	}
}

func TestSettlementHandler_Quote_NoActiveRate(t *testing.T) {
	s := newTestServer(t)
	s.rates.On("FindActive", mock.Anything, "blue").Return(nil, shared.ErrNotFound)

	w := s.do(t, http.MethodPost, "/api/v1/settlements/quote", cart())
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidRate, decodeError(t, w).Code)
}

func TestSettlementHandler_Reconcile(t *testing.T) {
	s := newTestServer(t)
	s.rates.On("FindActive", mock.Anything, "blue").Return(activeRate(t, "blue", "1000"), nil)

	body := map[string]any{
		"final_total": "1060000",
		"payments": []map[string]any{
			cashPayment,
			{"instrument_id": visaID, "installments": 3, "amount": "660", "currency": "base"},
		},
	}
	w := s.do(t, http.MethodPost, "/api/v1/settlements/reconcile", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rec pricingapp.ReconcileResponse
	decodeData(t, w, &rec)
	assert.True(t, rec.Balanced)
	assert.True(t, rec.TotalTendered.Equal(dec("1060000")))
	assert.True(t, rec.RemainingBalance.IsZero())
}

func TestSettlementHandler_CommitSale(t *testing.T) {
	s := newTestServer(t)
	s.rates.On("FindActive", mock.Anything, "blue").Return(activeRate(t, "blue", "1000"), nil)
	saleID := uuid.New()
	s.committer.On("Commit", mock.Anything, mock.MatchedBy(func(p *settlement.CommitPayload) bool {
		return p.CustomerID == 7 && p.SellerID == 3
	})).Return(saleID, nil)

	body := cart(cashPayment, visaPayment)
	body["customer_id"] = 7
	body["seller_id"] = 3

	w := s.do(t, http.MethodPost, "/api/v1/sales", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp pricingapp.CommitSaleResponse
	decodeData(t, w, &resp)
	assert.Equal(t, saleID, resp.SaleID)
	assert.True(t, resp.Settlement.FinalTotal.Equal(dec("1060000")))
	s.committer.AssertExpectations(t)
}

func TestSettlementHandler_CommitSale_Rejected(t *testing.T) {
	t.Run("unbalanced payments are never committed", func(t *testing.T) {
		s := newTestServer(t)
		s.rates.On("FindActive", mock.Anything, "blue").Return(activeRate(t, "blue", "1000"), nil)

		body := cart(cashPayment)
		body["customer_id"] = 7
		body["seller_id"] = 3

		w := s.do(t, http.MethodPost, "/api/v1/sales", body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeUnbalancedPayment, decodeError(t, w).Code)
		s.committer.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
	})

	t.Run("serial already sold", func(t *testing.T) {
		s := newTestServer(t)
		s.rates.On("FindActive", mock.Anything, "blue").Return(activeRate(t, "blue", "1000"), nil)
		s.committer.On("Commit", mock.Anything, mock.Anything).Return(uuid.Nil, shared.ErrDuplicateSerial)

		body := cart(cashPayment, visaPayment)
		body["customer_id"] = 7
		body["seller_id"] = 3

		w := s.do(t, http.MethodPost, "/api/v1/sales", body)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeDuplicateSerial, decodeError(t, w).Code)
	})

	t.Run("missing seller", func(t *testing.T) {
		s := newTestServer(t)

		body := cart(cashPayment, visaPayment)
		body["customer_id"] = 7

		w := s.do(t, http.MethodPost, "/api/v1/sales", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		errInfo := decodeError(t, w)
		assert.Equal(t, dto.ErrCodeValidation, errInfo.Code)
		require.Len(t, errInfo.Details, 1)
		assert.Equal(t, "seller_id", errInfo.Details[0].Field)
	})
}

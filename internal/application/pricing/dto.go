package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/phonestore/backend/internal/domain/commission"
	"github.com/phonestore/backend/internal/domain/pricing"
	"github.com/phonestore/backend/internal/domain/settlement"
	"github.com/shopspring/decimal"
)

// RecordRateRequest appends a rate to the ledger
type RecordRateRequest struct {
	Source     string          `json:"source" binding:"required,max=30,ratesource"`
	Rate       decimal.Decimal `json:"rate"`
	CapturedAt *time.Time      `json:"captured_at"`
}

// ExchangeRateResponse represents a ledger entry in API responses
type ExchangeRateResponse struct {
	ID         uuid.UUID       `json:"id"`
	Source     string          `json:"source"`
	Rate       decimal.Decimal `json:"rate"`
	IsActive   bool            `json:"is_active"`
	CapturedAt time.Time       `json:"captured_at"`
}

// ToExchangeRateResponse converts a domain rate
func ToExchangeRateResponse(r *pricing.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ID:         r.ID,
		Source:     r.Source,
		Rate:       r.Rate,
		IsActive:   r.IsActive,
		CapturedAt: r.CapturedAt,
	}
}

// InstrumentResponse represents a payment instrument
type InstrumentResponse struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	BaseMultiplier  decimal.Decimal `json:"base_multiplier"`
	HasInstallments bool            `json:"has_installments"`
}

// TierResponse represents an installment tier
type TierResponse struct {
	InstrumentID     int64           `json:"instrument_id"`
	InstallmentCount int             `json:"installment_count"`
	Multiplier       decimal.Decimal `json:"multiplier"`
	Description      string          `json:"description,omitempty"`
}

// MultiplierResponse is the answer to a multiplier lookup
type MultiplierResponse struct {
	InstrumentID int64           `json:"instrument_id"`
	Installments int             `json:"installments"`
	Multiplier   decimal.Decimal `json:"multiplier"`
	Financed     bool            `json:"financed"`
}

// LineInput is a catalog line as sent by the sales screen
type LineInput struct {
	VariantID       uuid.UUID        `json:"variant_id" binding:"required"`
	Description     string           `json:"description" binding:"max=200"`
	USDPrice        decimal.Decimal  `json:"usd_price"`
	Quantity        int              `json:"quantity" binding:"required,min=1"`
	BrandID         *int64           `json:"brand_id"`
	CategoryID      *int64           `json:"category_id"`
	CommissionPct   *decimal.Decimal `json:"commission_pct"`
	CommissionFixed *decimal.Decimal `json:"commission_fixed"`
	Serials         []string         `json:"serials" binding:"omitempty,dive,max=64,serial"`
}

// PaymentInput is a tendered payment
type PaymentInput struct {
	InstrumentID int64           `json:"instrument_id" binding:"required,min=1"`
	Installments int             `json:"installments" binding:"min=0"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency" binding:"omitempty,oneof=base settlement"`
	Reference    string          `json:"reference" binding:"max=100"`
}

// QuoteRequest prices a cart against a set of payments
type QuoteRequest struct {
	Lines      []LineInput     `json:"lines" binding:"required,min=1,dive"`
	Payments   []PaymentInput  `json:"payments" binding:"omitempty,dive"`
	Discount   decimal.Decimal `json:"discount"`
	RateSource string          `json:"rate_source" binding:"omitempty,max=30,ratesource"`
}

// CommitSaleRequest is a quote plus the parties of the sale
type CommitSaleRequest struct {
	QuoteRequest
	CustomerID int64 `json:"customer_id" binding:"required,min=1"`
	SellerID   int64 `json:"seller_id" binding:"required,min=1"`
}

// ReconcileRequest checks payments against an already computed final total
type ReconcileRequest struct {
	FinalTotal decimal.Decimal `json:"final_total"`
	Payments   []PaymentInput  `json:"payments" binding:"omitempty,dive"`
	RateSource string          `json:"rate_source" binding:"omitempty,max=30,ratesource"`
}

// ReconcileResponse reports the balance of a payment set
type ReconcileResponse struct {
	FinalTotal       decimal.Decimal `json:"final_total"`
	TotalTendered    decimal.Decimal `json:"total_tendered"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	OverpaidAmount   decimal.Decimal `json:"overpaid_amount"`
	Balanced         bool            `json:"balanced"`
}

// SettlementLineResponse is a priced line with its commission snapshot
type SettlementLineResponse struct {
	VariantID          uuid.UUID        `json:"variant_id"`
	Description        string           `json:"description"`
	USDPrice           decimal.Decimal  `json:"usd_price"`
	Quantity           int              `json:"quantity"`
	Serials            []string         `json:"serials,omitempty"`
	CommissionPct      *decimal.Decimal `json:"commission_pct,omitempty"`
	CommissionFixed    *decimal.Decimal `json:"commission_fixed,omitempty"`
	CommissionRuleID   *int64           `json:"commission_rule_id,omitempty"`
	CommissionOverride bool             `json:"commission_override"`
	CommissionUSD      decimal.Decimal  `json:"commission_usd"`
	SubtotalBase       decimal.Decimal  `json:"subtotal_base"`
	SubtotalSettlement decimal.Decimal  `json:"subtotal_settlement"`
}

// SettlementPaymentResponse is a payment with its resolved multiplier
type SettlementPaymentResponse struct {
	InstrumentID int64           `json:"instrument_id"`
	Installments int             `json:"installments,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Normalized   decimal.Decimal `json:"normalized_amount"`
	Multiplier   decimal.Decimal `json:"multiplier"`
	Financed     bool            `json:"financed"`
	Reference    string          `json:"reference,omitempty"`
}

// SettlementResponse is a settlement rendered for quotes and invoices.
// Amounts are rounded to two places here and only here.
type SettlementResponse struct {
	Lines            []SettlementLineResponse    `json:"lines"`
	Payments         []SettlementPaymentResponse `json:"payments"`
	BaseTotalUSD     decimal.Decimal             `json:"base_total_usd"`
	BaseTotal        decimal.Decimal             `json:"base_total"`
	DiscountAmount   decimal.Decimal             `json:"discount_amount"`
	SurchargeAmount  decimal.Decimal             `json:"surcharge_amount"`
	FinalTotal       decimal.Decimal             `json:"final_total"`
	Multiplier       decimal.Decimal             `json:"multiplier"`
	TotalTendered    decimal.Decimal             `json:"total_tendered"`
	RemainingBalance decimal.Decimal             `json:"remaining_balance"`
	OverpaidAmount   decimal.Decimal             `json:"overpaid_amount"`
	Balanced         bool                        `json:"balanced"`
	RateUsed         decimal.Decimal             `json:"rate_used"`
	RateSource       string                      `json:"rate_source"`
	FinancingPolicy  string                      `json:"financing_policy"`
	CommissionUSD    decimal.Decimal             `json:"commission_usd"`
}

// CommitSaleResponse is returned after the persistence boundary accepted a sale
type CommitSaleResponse struct {
	SaleID     uuid.UUID          `json:"sale_id"`
	Settlement SettlementResponse `json:"settlement"`
}

func round(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// ToSettlementResponse renders a settlement
func ToSettlementResponse(s *settlement.Settlement) SettlementResponse {
	lines := s.Lines()
	resp := SettlementResponse{
		Lines:            make([]SettlementLineResponse, 0, len(lines)),
		BaseTotalUSD:     round(s.BaseTotalUSD()),
		BaseTotal:        round(s.BaseTotal()),
		DiscountAmount:   round(s.DiscountAmount()),
		SurchargeAmount:  round(s.SurchargeAmount()),
		FinalTotal:       round(s.FinalTotal()),
		Multiplier:       s.Multiplier(),
		TotalTendered:    round(s.TotalTendered()),
		RemainingBalance: round(s.RemainingBalance()),
		OverpaidAmount:   round(s.OverpaidAmount()),
		Balanced:         s.Balanced(),
		RateUsed:         s.RateUsed(),
		RateSource:       s.RateSource(),
		FinancingPolicy:  s.FinancingPolicy(),
		CommissionUSD:    round(s.TotalCommission()),
	}
	for _, l := range lines {
		pct, fixed := l.Commission.Fields()
		resp.Lines = append(resp.Lines, SettlementLineResponse{
			VariantID:          l.VariantID,
			Description:        l.Description,
			USDPrice:           l.USDPrice,
			Quantity:           l.Quantity,
			Serials:            l.Serials,
			CommissionPct:      pct,
			CommissionFixed:    fixed,
			CommissionRuleID:   l.CommissionRuleID,
			CommissionOverride: l.CommissionOverride,
			CommissionUSD:      round(l.ItemCommission()),
			SubtotalBase:       round(l.SubtotalBase),
			SubtotalSettlement: round(l.SubtotalSettlement),
		})
	}
	payments := s.Payments()
	resp.Payments = make([]SettlementPaymentResponse, 0, len(payments))
	for _, p := range payments {
		resp.Payments = append(resp.Payments, SettlementPaymentResponse{
			InstrumentID: p.Entry.InstrumentID,
			Installments: p.Entry.Installments,
			Amount:       p.Entry.Amount,
			Currency:     string(p.Entry.Currency),
			Normalized:   round(p.Normalized),
			Multiplier:   p.Multiplier,
			Financed:     p.Financed(),
			Reference:    p.Entry.Reference,
		})
	}
	return resp
}

// ToReconcileResponse renders a reconciliation
func ToReconcileResponse(rec pricing.Reconciliation) ReconcileResponse {
	return ReconcileResponse{
		FinalTotal:       round(rec.FinalTotal),
		TotalTendered:    round(rec.TotalTendered),
		RemainingBalance: round(rec.RemainingBalance),
		OverpaidAmount:   round(rec.Overpaid),
		Balanced:         rec.Balanced,
	}
}

// toPaymentEntries maps inputs; an empty currency means settlement currency
func toPaymentEntries(in []PaymentInput) []pricing.PaymentEntry {
	out := make([]pricing.PaymentEntry, 0, len(in))
	for _, p := range in {
		currency := pricing.PaymentCurrency(p.Currency)
		if currency == "" {
			currency = pricing.CurrencySettlement
		}
		out = append(out, pricing.PaymentEntry{
			InstrumentID: p.InstrumentID,
			Installments: p.Installments,
			Amount:       p.Amount,
			Currency:     currency,
			Reference:    p.Reference,
		})
	}
	return out
}

// toCatalogLines maps inputs, validating the optional own commission rule
func toCatalogLines(in []LineInput) ([]settlement.CatalogLine, error) {
	out := make([]settlement.CatalogLine, 0, len(in))
	for _, l := range in {
		line := settlement.CatalogLine{
			VariantID:   l.VariantID,
			Description: l.Description,
			USDPrice:    l.USDPrice,
			Quantity:    l.Quantity,
			BrandID:     l.BrandID,
			CategoryID:  l.CategoryID,
			Serials:     l.Serials,
		}
		if l.CommissionPct != nil || l.CommissionFixed != nil {
			own, err := commission.FromFields(l.CommissionPct, l.CommissionFixed)
			if err != nil {
				return nil, err
			}
			line.OwnRule = &own
		}
		out = append(out, line)
	}
	return out, nil
}

package settlement

import (
	"github.com/google/uuid"
	"github.com/phonestore/backend/internal/domain/commission"
	"github.com/phonestore/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// CatalogLine is a product variant put on a quote or sale
type CatalogLine struct {
	VariantID   uuid.UUID
	Description string
	USDPrice    decimal.Decimal
	Quantity    int
	BrandID     *int64
	CategoryID  *int64
	OwnRule     *commission.Value // product-level override, nil to use the rule table
	Serials     []string
}

// Line is a catalog line with its commission snapshot and converted subtotal
type Line struct {
	VariantID          uuid.UUID
	Description        string
	USDPrice           decimal.Decimal
	Quantity           int
	Serials            []string
	Commission         commission.Value
	CommissionRuleID   *int64
	CommissionOverride bool
	SubtotalBase       decimal.Decimal
	SubtotalSettlement decimal.Decimal
}

// ItemCommission returns the base-currency commission earned by the line
func (l Line) ItemCommission() decimal.Decimal {
	return l.Commission.ItemCommission(l.USDPrice, l.Quantity)
}

// Settlement is the immutable result of pricing a cart against tendered payments.
// All totals except BaseTotalUSD are in settlement currency and unrounded.
type Settlement struct {
	lines            []Line
	baseTotalUSD     decimal.Decimal
	baseTotal        decimal.Decimal
	discountAmount   decimal.Decimal
	surchargeAmount  decimal.Decimal
	finalTotal       decimal.Decimal
	multiplier       decimal.Decimal
	payments         []pricing.ResolvedPayment
	totalTendered    decimal.Decimal
	remainingBalance decimal.Decimal
	overpaidAmount   decimal.Decimal
	balanced         bool
	rateUsed         decimal.Decimal
	rateSource       string
	financingPolicy  string
}

// Lines returns a deep copy; writes to it never reach the settlement.
func (s *Settlement) Lines() []Line {
	out := make([]Line, len(s.lines))
	for i, l := range s.lines {
		l.Serials = append([]string(nil), l.Serials...)
		if l.CommissionRuleID != nil {
			id := *l.CommissionRuleID
			l.CommissionRuleID = &id
		}
		out[i] = l
	}
	return out
}

func (s *Settlement) Payments() []pricing.ResolvedPayment {
	out := make([]pricing.ResolvedPayment, len(s.payments))
	copy(out, s.payments)
	return out
}

func (s *Settlement) BaseTotalUSD() decimal.Decimal     { return s.baseTotalUSD }
func (s *Settlement) BaseTotal() decimal.Decimal        { return s.baseTotal }
func (s *Settlement) DiscountAmount() decimal.Decimal   { return s.discountAmount }
func (s *Settlement) SurchargeAmount() decimal.Decimal  { return s.surchargeAmount }
func (s *Settlement) FinalTotal() decimal.Decimal       { return s.finalTotal }
func (s *Settlement) Multiplier() decimal.Decimal       { return s.multiplier }
func (s *Settlement) TotalTendered() decimal.Decimal    { return s.totalTendered }
func (s *Settlement) RemainingBalance() decimal.Decimal { return s.remainingBalance }
func (s *Settlement) OverpaidAmount() decimal.Decimal   { return s.overpaidAmount }
func (s *Settlement) Balanced() bool                    { return s.balanced }
func (s *Settlement) RateUsed() decimal.Decimal         { return s.rateUsed }
func (s *Settlement) RateSource() string                { return s.rateSource }
func (s *Settlement) FinancingPolicy() string           { return s.financingPolicy }

// TotalCommission sums the line commissions in base currency
func (s *Settlement) TotalCommission() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.ItemCommission())
	}
	return total
}

// Unbalanced returns UnbalancedPaymentError when payments do not settle the final total
func (s *Settlement) Unbalanced() error {
	if s.balanced {
		return nil
	}
	return pricing.NewUnbalancedPaymentError(s.finalTotal, s.totalTendered)
}

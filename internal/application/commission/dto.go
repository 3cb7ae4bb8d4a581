package commission

import (
	"time"

	"github.com/phonestore/backend/internal/domain/commission"
	"github.com/phonestore/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ResolveRuleRequest asks which commission applies to a product
type ResolveRuleRequest struct {
	BrandID         *int64           `json:"brand_id"`
	CategoryID      *int64           `json:"category_id"`
	CommissionPct   *decimal.Decimal `json:"commission_pct"`
	CommissionFixed *decimal.Decimal `json:"commission_fixed"`
}

// ResolveRuleResponse is the resolved commission variant
type ResolveRuleResponse struct {
	Kind            string           `json:"kind"`
	CommissionPct   *decimal.Decimal `json:"commission_pct,omitempty"`
	CommissionFixed *decimal.Decimal `json:"commission_fixed,omitempty"`
	RuleID          *int64           `json:"rule_id,omitempty"`
	Override        bool             `json:"override"`
}

// CreateRuleRequest adds a commission rule
type CreateRuleRequest struct {
	BrandID         *int64           `json:"brand_id" binding:"omitempty,min=1"`
	CategoryID      *int64           `json:"category_id" binding:"omitempty,min=1"`
	CommissionPct   *decimal.Decimal `json:"commission_pct"`
	CommissionFixed *decimal.Decimal `json:"commission_fixed"`
	Priority        int              `json:"priority"`
}

// RuleResponse represents a commission rule
type RuleResponse struct {
	ID              int64            `json:"id"`
	BrandID         *int64           `json:"brand_id"`
	CategoryID      *int64           `json:"category_id"`
	CommissionPct   *decimal.Decimal `json:"commission_pct,omitempty"`
	CommissionFixed *decimal.Decimal `json:"commission_fixed,omitempty"`
	Priority        int              `json:"priority"`
	Specificity     string           `json:"specificity"`
}

// ToRuleResponse converts a domain rule
func ToRuleResponse(r commission.CommissionRule) RuleResponse {
	pct, fixed := r.Value.Fields()
	return RuleResponse{
		ID:              r.ID,
		BrandID:         r.BrandID,
		CategoryID:      r.CategoryID,
		CommissionPct:   pct,
		CommissionFixed: fixed,
		Priority:        r.Priority,
		Specificity:     r.Specificity().String(),
	}
}

// SellerCommissionResponse is one row of the seller report
type SellerCommissionResponse struct {
	SellerID        int64           `json:"seller_id"`
	SellerName      string          `json:"seller_name"`
	SalesCount      int             `json:"sales_count"`
	UnitsSold       int             `json:"units_sold"`
	TotalUSD        decimal.Decimal `json:"total_commission_usd"`
	TotalSettlement decimal.Decimal `json:"total_commission_settlement"`
}

// SellerReportResponse is the commission report of a period.
// The settlement-currency figures use the rate active when the report is run.
type SellerReportResponse struct {
	StartDate   time.Time                  `json:"start_date"`
	EndDate     time.Time                  `json:"end_date"`
	RateUsed    decimal.Decimal            `json:"rate_used"`
	RateSource  string                     `json:"rate_source"`
	Sellers     []SellerCommissionResponse `json:"sellers"`
	TotalUSD    decimal.Decimal            `json:"total_commission_usd"`
	// TotalSettlement carries its currency code for display
	TotalSettlement valueobject.Money `json:"total_commission_settlement"`
	GeneratedAt time.Time                  `json:"generated_at"`
}

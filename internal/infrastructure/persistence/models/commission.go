package models

import (
	"github.com/phonestore/backend/internal/domain/commission"
	"github.com/shopspring/decimal"
)

// CommissionRuleModel stores a rule's value as a nullable column pair;
// exactly one of Percentage and FixedAmount is set.
type CommissionRuleModel struct {
	ID          int64            `gorm:"primaryKey;autoIncrement"`
	BrandID     *int64           `gorm:"index:idx_commission_rules_keys,priority:1"`
	CategoryID  *int64           `gorm:"index:idx_commission_rules_keys,priority:2"`
	Percentage  *decimal.Decimal `gorm:"type:decimal(7,4)"`
	FixedAmount *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Priority    int              `gorm:"not null;default:0"`
	TimestampModel
}

func (CommissionRuleModel) TableName() string {
	return "commission_rules"
}

// ToDomain converts the row to a domain rule. A row with an invalid value
// pair is reported rather than silently skipped.
func (m *CommissionRuleModel) ToDomain() (*commission.CommissionRule, error) {
	value, err := commission.FromFields(m.Percentage, m.FixedAmount)
	if err != nil {
		return nil, err
	}
	return commission.NewCommissionRule(m.ID, m.BrandID, m.CategoryID, value, m.Priority)
}

// CommissionRuleModelFromDomain builds a row from a domain rule
func CommissionRuleModelFromDomain(r *commission.CommissionRule) *CommissionRuleModel {
	pct, fixed := r.Value.Fields()
	return &CommissionRuleModel{
		ID:          r.ID,
		BrandID:     r.BrandID,
		CategoryID:  r.CategoryID,
		Percentage:  pct,
		FixedAmount: fixed,
		Priority:    r.Priority,
	}
}

package commission

import (
	"context"
)

// RuleRepository loads the commission rule table
type RuleRepository interface {
	FindAll(ctx context.Context) ([]CommissionRule, error)
	Save(ctx context.Context, rule *CommissionRule) error
}

// SaleRepository reads committed sales with their item snapshots
type SaleRepository interface {
	// FindInPeriod returns sales with SaleDate in [period.Start, period.End), any status
	FindInPeriod(ctx context.Context, period Period) ([]Sale, error)
}

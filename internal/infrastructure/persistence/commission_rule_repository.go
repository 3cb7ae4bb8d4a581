package persistence

import (
	"context"
	"fmt"

	"github.com/phonestore/backend/internal/domain/commission"
	"github.com/phonestore/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCommissionRuleRepository implements commission.RuleRepository using GORM
type GormCommissionRuleRepository struct {
	db *gorm.DB
}

// NewGormCommissionRuleRepository creates a new GormCommissionRuleRepository
func NewGormCommissionRuleRepository(db *gorm.DB) *GormCommissionRuleRepository {
	return &GormCommissionRuleRepository{db: db}
}

// FindAll loads the whole rule table
func (r *GormCommissionRuleRepository) FindAll(ctx context.Context) ([]commission.CommissionRule, error) {
	var rows []models.CommissionRuleModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	rules := make([]commission.CommissionRule, 0, len(rows))
	for i := range rows {
		rule, err := rows[i].ToDomain()
		if err != nil {
			return nil, fmt.Errorf("commission rule %d: %w", rows[i].ID, err)
		}
		rules = append(rules, *rule)
	}
	return rules, nil
}

// Save inserts a rule when its ID is zero, otherwise updates it. The
// generated ID is written back to rule.
func (r *GormCommissionRuleRepository) Save(ctx context.Context, rule *commission.CommissionRule) error {
	m := models.CommissionRuleModelFromDomain(rule)
	db := r.db.WithContext(ctx)

	if m.ID == 0 {
		if err := db.Create(m).Error; err != nil {
			return fmt.Errorf("failed to create commission rule: %w", err)
		}
		rule.ID = m.ID
		return nil
	}

	// Select("*") so nil pointers clear the previous value
	if err := db.Model(m).Select("*").Omit("created_at").Updates(m).Error; err != nil {
		return fmt.Errorf("failed to update commission rule %d: %w", m.ID, err)
	}
	return nil
}

package persistence

import (
	"context"

	"github.com/phonestore/backend/internal/domain/pricing"
	"github.com/phonestore/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentPlanRepository implements pricing.PaymentPlanRepository using GORM
type GormPaymentPlanRepository struct {
	db *gorm.DB
}

// NewGormPaymentPlanRepository creates a new GormPaymentPlanRepository
func NewGormPaymentPlanRepository(db *gorm.DB) *GormPaymentPlanRepository {
	return &GormPaymentPlanRepository{db: db}
}

// FindInstruments loads every payment instrument
func (r *GormPaymentPlanRepository) FindInstruments(ctx context.Context) ([]pricing.PaymentInstrument, error) {
	var rows []models.PaymentInstrumentModel
	if err := r.db.WithContext(ctx).Order("name, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]pricing.PaymentInstrument, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

// FindTiers loads every installment tier
func (r *GormPaymentPlanRepository) FindTiers(ctx context.Context) ([]pricing.InstallmentTier, error) {
	var rows []models.InstallmentTierModel
	if err := r.db.WithContext(ctx).Order("instrument_id, installment_count").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]pricing.InstallmentTier, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

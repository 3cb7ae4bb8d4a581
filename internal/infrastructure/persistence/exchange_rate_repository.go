package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/phonestore/backend/internal/domain/pricing"
	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/phonestore/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// DefaultHistoryLimit caps History when the caller passes a non-positive limit
const DefaultHistoryLimit = 50

// GormExchangeRateRepository implements pricing.ExchangeRateRepository using GORM
type GormExchangeRateRepository struct {
	db *gorm.DB
}

// NewGormExchangeRateRepository creates a new GormExchangeRateRepository
func NewGormExchangeRateRepository(db *gorm.DB) *GormExchangeRateRepository {
	return &GormExchangeRateRepository{db: db}
}

// FindActive returns the active rate of a source
func (r *GormExchangeRateRepository) FindActive(ctx context.Context, source string) (*pricing.ExchangeRate, error) {
	var m models.ExchangeRateModel
	err := r.db.WithContext(ctx).
		Where("source = ? AND is_active = ?", source, true).
		Order("captured_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// History returns the latest rates of a source, newest first
func (r *GormExchangeRateRepository) History(ctx context.Context, source string, limit int) ([]pricing.ExchangeRate, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	var rows []models.ExchangeRateModel
	err := r.db.WithContext(ctx).
		Where("source = ?", source).
		Order("captured_at DESC, created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	rates := make([]pricing.ExchangeRate, 0, len(rows))
	for i := range rows {
		rates = append(rates, *rows[i].ToDomain())
	}
	return rates, nil
}

// Record deactivates the current rate of the source and appends the new one
// in a single transaction. On PostgreSQL a concurrent Record for the same
// source fails on the partial unique index instead of leaving two active rows.
func (r *GormExchangeRateRepository) Record(ctx context.Context, rate *pricing.ExchangeRate) error {
	if rate == nil {
		return shared.ErrInvalidInput
	}
	rate.IsActive = true
	m := models.ExchangeRateModelFromDomain(rate)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ExchangeRateModel{}).
			Where("source = ? AND is_active = ?", rate.Source, true).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("failed to supersede active rate: %w", err)
		}
		if err := tx.Create(m).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.NewDomainError(shared.CodeRateConflict,
					fmt.Sprintf("Another rate for %s was recorded concurrently; retry", rate.Source))
			}
			return fmt.Errorf("failed to record rate: %w", err)
		}
		return nil
	})
}

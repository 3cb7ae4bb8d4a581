package persistence

import (
	"context"
	"fmt"

	"github.com/phonestore/backend/internal/domain/commission"
	"github.com/phonestore/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSaleRepository implements commission.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindInPeriod loads sales dated in [period.Start, period.End) with their
// seller, items and serials. Status is not filtered here.
func (r *GormSaleRepository) FindInPeriod(ctx context.Context, period commission.Period) ([]commission.Sale, error) {
	var rows []models.SaleModel
	err := r.db.WithContext(ctx).
		Preload("Seller").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Serials").
		Where("sale_date >= ? AND sale_date < ?", period.Start, period.End).
		Order("sale_date, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	sales := make([]commission.Sale, 0, len(rows))
	for i := range rows {
		sale, err := rows[i].ToDomain()
		if err != nil {
			return nil, fmt.Errorf("sale %s: %w", rows[i].ID, err)
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

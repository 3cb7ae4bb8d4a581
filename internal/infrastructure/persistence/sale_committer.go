package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phonestore/backend/internal/domain/commission"
	"github.com/phonestore/backend/internal/domain/settlement"
	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/phonestore/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleCommitter implements settlement.SaleCommitter. The sale header,
// its items, serials and payments are written in one transaction.
type GormSaleCommitter struct {
	db     *gorm.DB
	now    func() time.Time
	logger *zap.Logger
}

// SaleCommitterOption configures a GormSaleCommitter
type SaleCommitterOption func(*GormSaleCommitter)

// WithClock overrides the sale date source
func WithClock(now func() time.Time) SaleCommitterOption {
	return func(c *GormSaleCommitter) {
		c.now = now
	}
}

// WithCommitterLogger sets the logger
func WithCommitterLogger(logger *zap.Logger) SaleCommitterOption {
	return func(c *GormSaleCommitter) {
		c.logger = logger
	}
}

// NewGormSaleCommitter creates a new GormSaleCommitter
func NewGormSaleCommitter(db *gorm.DB, opts ...SaleCommitterOption) *GormSaleCommitter {
	c := &GormSaleCommitter{
		db:     db,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Commit writes the payload and returns the new sale ID. A serial that was
// already sold fails the whole commit with DUPLICATE_SERIAL.
func (c *GormSaleCommitter) Commit(ctx context.Context, payload *settlement.CommitPayload) (uuid.UUID, error) {
	if payload == nil || len(payload.Items) == 0 {
		return uuid.Nil, shared.NewDomainError(shared.CodeInvalidLine, "A sale needs at least one item")
	}

	sale := buildSaleModel(payload, c.now().UTC())

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkSerialsUnsold(tx, payload); err != nil {
			return err
		}
		return writeSale(tx, sale)
	})
	if err != nil {
		return uuid.Nil, err
	}

	c.logger.Debug("Sale written",
		zap.String("sale_id", sale.ID.String()),
		zap.Int("items", len(sale.Items)),
		zap.Int("payments", len(sale.Payments)),
	)
	return sale.ID, nil
}

// writeSale inserts rows table by table. Association saving is skipped
// because GORM upserts associations, which would hide conflicts.
func writeSale(tx *gorm.DB, sale *models.SaleModel) error {
	if err := tx.Omit(clause.Associations).Create(sale).Error; err != nil {
		return fmt.Errorf("failed to write sale: %w", err)
	}

	for i := range sale.Items {
		item := &sale.Items[i]
		if err := tx.Omit(clause.Associations).Create(item).Error; err != nil {
			return fmt.Errorf("failed to write sale item: %w", err)
		}
		if len(item.Serials) == 0 {
			continue
		}
		for j := range item.Serials {
			item.Serials[j].SaleItemID = item.ID
		}
		if err := tx.Create(&item.Serials).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.NewDomainError(shared.CodeDuplicateSerial,
					"One of the serial numbers was sold by another sale; recompute and retry")
			}
			return fmt.Errorf("failed to write serials: %w", err)
		}
	}

	if len(sale.Payments) > 0 {
		if err := tx.Create(&sale.Payments).Error; err != nil {
			return fmt.Errorf("failed to write payments: %w", err)
		}
	}
	return nil
}

func checkSerialsUnsold(tx *gorm.DB, payload *settlement.CommitPayload) error {
	var serials []string
	for _, item := range payload.Items {
		serials = append(serials, item.Serials...)
	}
	if len(serials) == 0 {
		return nil
	}

	var sold []string
	if err := tx.Model(&models.SaleItemSerialModel{}).
		Where("serial IN ?", serials).
		Order("serial").
		Pluck("serial", &sold).Error; err != nil {
		return fmt.Errorf("failed to check serials: %w", err)
	}
	if len(sold) > 0 {
		return shared.NewDomainError(shared.CodeDuplicateSerial,
			fmt.Sprintf("Serial numbers already sold: %s", strings.Join(sold, ", ")))
	}
	return nil
}

func buildSaleModel(p *settlement.CommitPayload, saleDate time.Time) *models.SaleModel {
	id := uuid.New()
	sale := &models.SaleModel{
		ID:         id,
		CustomerID: p.CustomerID,
		SellerID:   p.SellerID,
		SaleDate:   saleDate,
		Status:     string(commission.SaleStatusCompleted),
		FXRate:     p.FXRate,
		RateSource: p.RateSource,
		TotalUSD:   p.TotalBase,
		Discount:   p.Discount,
		Surcharge:  p.Surcharge,
		TotalARS:   p.TotalSettlement,
		Items:      make([]models.SaleItemModel, 0, len(p.Items)),
		Payments:   make([]models.SalePaymentModel, 0, len(p.Payments)),
	}

	for _, item := range p.Items {
		row := models.SaleItemModel{
			SaleID:          id,
			VariantID:       item.VariantID,
			Quantity:        item.Quantity,
			USDPrice:        item.USDPrice,
			CommissionPct:   item.CommissionPct,
			CommissionFixed: item.CommissionFixed,
		}
		for _, serial := range item.Serials {
			row.Serials = append(row.Serials, models.SaleItemSerialModel{Serial: serial})
		}
		sale.Items = append(sale.Items, row)
	}

	for _, pay := range p.Payments {
		sale.Payments = append(sale.Payments, models.SalePaymentModel{
			SaleID:       id,
			InstrumentID: pay.InstrumentID,
			Amount:       pay.Amount,
			Multiplier:   pay.Multiplier,
			Installments: pay.Installments,
			Reference:    pay.Reference,
		})
	}
	return sale
}

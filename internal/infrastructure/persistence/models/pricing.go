package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/phonestore/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// ExchangeRateModel is one row of the append-only rate ledger
type ExchangeRateModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Source     string          `gorm:"type:varchar(40);not null;index:idx_exchange_rates_source_captured,priority:1"`
	Rate       decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	IsActive   bool            `gorm:"not null;default:true"`
	CapturedAt time.Time       `gorm:"not null;index:idx_exchange_rates_source_captured,priority:2"`
	CreatedAt  time.Time       `gorm:"not null"`
}

func (ExchangeRateModel) TableName() string {
	return "exchange_rates"
}

// ToDomain converts the row to a domain ExchangeRate
func (m *ExchangeRateModel) ToDomain() *pricing.ExchangeRate {
	return &pricing.ExchangeRate{
		ID:         m.ID,
		Source:     m.Source,
		Rate:       m.Rate,
		IsActive:   m.IsActive,
		CapturedAt: m.CapturedAt,
	}
}

// ExchangeRateModelFromDomain builds a row from a domain ExchangeRate
func ExchangeRateModelFromDomain(r *pricing.ExchangeRate) *ExchangeRateModel {
	return &ExchangeRateModel{
		ID:         r.ID,
		Source:     r.Source,
		Rate:       r.Rate,
		IsActive:   r.IsActive,
		CapturedAt: r.CapturedAt,
	}
}

// PaymentInstrumentModel is a way of paying
type PaymentInstrumentModel struct {
	ID             int64           `gorm:"primaryKey;autoIncrement"`
	Name           string          `gorm:"type:varchar(80);not null;uniqueIndex"`
	BaseMultiplier decimal.Decimal `gorm:"type:decimal(10,6);not null;default:1"`
	TimestampModel
}

func (PaymentInstrumentModel) TableName() string {
	return "payment_instruments"
}

// ToDomain converts the row to a domain PaymentInstrument
func (m *PaymentInstrumentModel) ToDomain() pricing.PaymentInstrument {
	return pricing.PaymentInstrument{
		ID:             m.ID,
		Name:           m.Name,
		BaseMultiplier: m.BaseMultiplier,
	}
}

// InstallmentTierModel is the multiplier of an instrument for N installments
type InstallmentTierModel struct {
	ID               int64           `gorm:"primaryKey;autoIncrement"`
	InstrumentID     int64           `gorm:"not null;uniqueIndex:ux_installment_tiers_instrument_count,priority:1"`
	InstallmentCount int             `gorm:"not null;uniqueIndex:ux_installment_tiers_instrument_count,priority:2"`
	Multiplier       decimal.Decimal `gorm:"type:decimal(10,6);not null"`
	Description      string          `gorm:"type:varchar(200);not null;default:''"`
}

func (InstallmentTierModel) TableName() string {
	return "installment_tiers"
}

// ToDomain converts the row to a domain InstallmentTier
func (m *InstallmentTierModel) ToDomain() pricing.InstallmentTier {
	return pricing.InstallmentTier{
		InstrumentID:     m.InstrumentID,
		InstallmentCount: m.InstallmentCount,
		Multiplier:       m.Multiplier,
		Description:      m.Description,
	}
}

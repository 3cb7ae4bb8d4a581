package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/phonestore/backend/internal/domain/commission"
	"github.com/shopspring/decimal"
)

// SellerModel is the minimal seller row joined by commission reports
type SellerModel struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:varchar(120);not null"`
	TimestampModel
}

func (SellerModel) TableName() string {
	return "sellers"
}

// SaleModel is a committed sale header. Amounts are stored as computed at
// commit time and never recomputed.
type SaleModel struct {
	ID         uuid.UUID          `gorm:"type:uuid;primaryKey"`
	CustomerID int64              `gorm:"not null"`
	SellerID   int64              `gorm:"not null;index:idx_sales_seller"`
	SaleDate   time.Time          `gorm:"not null;index:idx_sales_sale_date"`
	Status     string             `gorm:"type:varchar(20);not null;default:'completed'"`
	FXRate     decimal.Decimal    `gorm:"column:fx_rate;type:decimal(18,6);not null"`
	RateSource string             `gorm:"type:varchar(40);not null"`
	TotalUSD   decimal.Decimal    `gorm:"column:total_usd;type:decimal(18,4);not null"`
	Discount   decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	Surcharge  decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	TotalARS   decimal.Decimal    `gorm:"column:total_ars;type:decimal(18,4);not null"`
	Seller     *SellerModel       `gorm:"foreignKey:SellerID"`
	Items      []SaleItemModel    `gorm:"foreignKey:SaleID"`
	Payments   []SalePaymentModel `gorm:"foreignKey:SaleID"`
	TimestampModel
}

func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the header and its loaded items to the commission read model.
// Items with a broken commission snapshot fail the conversion.
func (m *SaleModel) ToDomain() (commission.Sale, error) {
	sale := commission.Sale{
		ID:       m.ID,
		SellerID: m.SellerID,
		SaleDate: m.SaleDate,
		Status:   commission.SaleStatus(m.Status),
		Items:    make([]commission.SaleItem, 0, len(m.Items)),
	}
	if m.Seller != nil {
		sale.SellerName = m.Seller.Name
	}
	for i := range m.Items {
		item, err := m.Items[i].ToDomain()
		if err != nil {
			return commission.Sale{}, err
		}
		sale.Items = append(sale.Items, item)
	}
	return sale, nil
}

// SaleItemModel is one sold line with its commission snapshot
type SaleItemModel struct {
	ID              int64                 `gorm:"primaryKey;autoIncrement"`
	SaleID          uuid.UUID             `gorm:"type:uuid;not null;index:idx_sale_items_sale"`
	VariantID       uuid.UUID             `gorm:"type:uuid;not null"`
	Quantity        int                   `gorm:"not null"`
	USDPrice        decimal.Decimal       `gorm:"column:usd_price;type:decimal(18,4);not null"`
	CommissionPct   *decimal.Decimal      `gorm:"type:decimal(7,4)"`
	CommissionFixed *decimal.Decimal      `gorm:"type:decimal(18,4)"`
	Serials         []SaleItemSerialModel `gorm:"foreignKey:SaleItemID"`
}

func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the row to a domain SaleItem
func (m *SaleItemModel) ToDomain() (commission.SaleItem, error) {
	value, err := commission.FromFields(m.CommissionPct, m.CommissionFixed)
	if err != nil {
		return commission.SaleItem{}, err
	}
	serials := make([]string, 0, len(m.Serials))
	for _, s := range m.Serials {
		serials = append(serials, s.Serial)
	}
	return commission.NewSaleItem(m.VariantID, m.USDPrice, m.Quantity, value, serials)
}

// SaleItemSerialModel is a sold serial number; serials are unique across all sales
type SaleItemSerialModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	SaleItemID int64  `gorm:"not null"`
	Serial     string `gorm:"type:varchar(80);not null;uniqueIndex:ux_sale_item_serials_serial"`
}

func (SaleItemSerialModel) TableName() string {
	return "sale_item_serials"
}

// SalePaymentModel is one tendered payment in settlement currency
type SalePaymentModel struct {
	ID           int64           `gorm:"primaryKey;autoIncrement"`
	SaleID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_sale_payments_sale"`
	InstrumentID int64           `gorm:"not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Multiplier   decimal.Decimal `gorm:"type:decimal(10,6);not null;default:1"`
	Installments *int
	Reference    *string `gorm:"type:varchar(120)"`
}

func (SalePaymentModel) TableName() string {
	return "sale_payments"
}

// AllModels lists every model in dependency order, for AutoMigrate in tests
func AllModels() []any {
	return []any{
		&SellerModel{},
		&ExchangeRateModel{},
		&PaymentInstrumentModel{},
		&InstallmentTierModel{},
		&CommissionRuleModel{},
		&SaleModel{},
		&SaleItemModel{},
		&SaleItemSerialModel{},
		&SalePaymentModel{},
	}
}

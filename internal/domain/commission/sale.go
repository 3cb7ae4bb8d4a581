package commission

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SaleStatus is the lifecycle state of a committed sale
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusCancelled SaleStatus = "cancelled"
	SaleStatusVoid      SaleStatus = "void"
)

// IsValid checks if the status is known
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusCompleted, SaleStatusCancelled, SaleStatusVoid:
		return true
	}
	return false
}

// CountsForCommission reports whether items of a sale in this status earn commission
func (s SaleStatus) CountsForCommission() bool {
	return s == SaleStatusCompleted
}

// SaleItem is the commission snapshot taken when the sale was assembled.
// Later rule edits never change it.
type SaleItem struct {
	VariantID  uuid.UUID
	USDPrice   decimal.Decimal
	Quantity   int
	Commission Value
	Serials    []string
}

// NewSaleItem validates and snapshots a sold line
func NewSaleItem(variantID uuid.UUID, usdPrice decimal.Decimal, quantity int, commission Value, serials []string) (SaleItem, error) {
	if !usdPrice.IsPositive() {
		return SaleItem{}, shared.NewDomainError(shared.CodeInvalidLine,
			fmt.Sprintf("Unit price must be positive, got %s", usdPrice.String()))
	}
	if quantity <= 0 {
		return SaleItem{}, shared.NewDomainError(shared.CodeInvalidLine,
			fmt.Sprintf("Quantity must be positive, got %d", quantity))
	}
	if !commission.IsSet() {
		return SaleItem{}, shared.NewDomainError(shared.CodeInvalidCommission,
			"Sale item has no commission snapshot")
	}
	return SaleItem{
		VariantID:  variantID,
		USDPrice:   usdPrice,
		Quantity:   quantity,
		Commission: commission,
		Serials:    append([]string(nil), serials...),
	}, nil
}

// ItemCommission returns the base-currency commission earned by this item
func (i SaleItem) ItemCommission() decimal.Decimal {
	return i.Commission.ItemCommission(i.USDPrice, i.Quantity)
}

// Subtotal returns usdPrice * quantity
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.USDPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Sale is the read model the aggregator works on
type Sale struct {
	ID         uuid.UUID
	SellerID   int64
	SellerName string
	SaleDate   time.Time
	Status     SaleStatus
	Items      []SaleItem
}

// TotalCommission sums item commissions regardless of status
func (s Sale) TotalCommission() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.ItemCommission())
	}
	return total
}

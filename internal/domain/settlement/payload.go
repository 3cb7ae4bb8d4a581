package settlement

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CommitItem is one sold line as the persistence boundary expects it
type CommitItem struct {
	VariantID       uuid.UUID
	Quantity        int
	Serials         []string
	USDPrice        decimal.Decimal
	CommissionPct   *decimal.Decimal
	CommissionFixed *decimal.Decimal
}

// CommitPayment is one tendered payment, amount in settlement currency
type CommitPayment struct {
	InstrumentID int64
	Amount       decimal.Decimal
	Multiplier   decimal.Decimal
	Installments *int
	Reference    *string
}

// CommitPayload is handed to a SaleCommitter. TotalBase is in base currency,
// TotalSettlement is the final amount due.
type CommitPayload struct {
	CustomerID      int64
	SellerID        int64
	FXRate          decimal.Decimal
	RateSource      string
	Items           []CommitItem
	Payments        []CommitPayment
	TotalBase       decimal.Decimal
	Discount        decimal.Decimal
	Surcharge       decimal.Decimal
	TotalSettlement decimal.Decimal
}

// SaleCommitter persists a sale atomically: every item, serial and payment is
// written or none is. Errors such as a duplicate serial are returned as-is and
// the caller must recompute from corrected inputs.
type SaleCommitter interface {
	Commit(ctx context.Context, payload *CommitPayload) (uuid.UUID, error)
}

// BuildCommitPayload turns a balanced settlement into the persistence shape
func BuildCommitPayload(s *Settlement, customerID, sellerID int64) (*CommitPayload, error) {
	if err := s.Unbalanced(); err != nil {
		return nil, err
	}
	if customerID <= 0 {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Select a customer before committing the sale")
	}
	if sellerID <= 0 {
		return nil, shared.NewDomainError("INVALID_SELLER", "Select a seller before committing the sale")
	}

	seen := make(map[string]int)
	items := make([]CommitItem, 0, len(s.lines))
	for i, l := range s.lines {
		if len(l.Serials) > 0 && len(l.Serials) != l.Quantity {
			return nil, shared.NewDomainError(shared.CodeInvalidLine,
				fmt.Sprintf("Line %d (%s): %d serial numbers given for quantity %d",
					i+1, l.Description, len(l.Serials), l.Quantity))
		}
		serials := make([]string, 0, len(l.Serials))
		for _, raw := range l.Serials {
			serial := strings.TrimSpace(raw)
			if serial == "" {
				return nil, shared.NewDomainError(shared.CodeInvalidLine,
					fmt.Sprintf("Line %d (%s): serial numbers cannot be blank", i+1, l.Description))
			}
			if prev, dup := seen[serial]; dup {
				return nil, shared.NewDomainError(shared.CodeDuplicateSerial,
					fmt.Sprintf("Serial %s appears on lines %d and %d", serial, prev, i+1))
			}
			seen[serial] = i + 1
			serials = append(serials, serial)
		}
		pct, fixed := l.Commission.Fields()
		items = append(items, CommitItem{
			VariantID:       l.VariantID,
			Quantity:        l.Quantity,
			Serials:         serials,
			USDPrice:        l.USDPrice,
			CommissionPct:   pct,
			CommissionFixed: fixed,
		})
	}

	payments := make([]CommitPayment, 0, len(s.payments))
	for _, p := range s.payments {
		cp := CommitPayment{
			InstrumentID: p.Entry.InstrumentID,
			Amount:       p.Normalized,
			Multiplier:   p.Multiplier,
		}
		if p.Entry.Installments > 0 {
			n := p.Entry.Installments
			cp.Installments = &n
		}
		if ref := strings.TrimSpace(p.Entry.Reference); ref != "" {
			cp.Reference = &ref
		}
		payments = append(payments, cp)
	}

	return &CommitPayload{
		CustomerID:      customerID,
		SellerID:        sellerID,
		FXRate:          s.rateUsed,
		RateSource:      s.rateSource,
		Items:           items,
		Payments:        payments,
		TotalBase:       s.baseTotalUSD,
		Discount:        s.discountAmount,
		Surcharge:       s.surchargeAmount,
		TotalSettlement: s.finalTotal,
	}, nil
}

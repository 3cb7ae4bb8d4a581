package commission

import (
	"fmt"
	"sort"
	"time"

	"github.com/phonestore/backend/internal/domain/pricing"
	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Period is a half-open reporting window [Start, End)
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod validates that end is after start
func NewPeriod(start, end time.Time) (Period, error) {
	if !end.After(start) {
		return Period{}, shared.NewDomainError(shared.CodeInvalidPeriod,
			fmt.Sprintf("Period end %s must be after start %s",
				end.Format(time.RFC3339), start.Format(time.RFC3339)))
	}
	return Period{Start: start, End: end}, nil
}

// Contains reports whether t falls in [Start, End)
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// SellerCommission is one row of the period commission report
type SellerCommission struct {
	SellerID        int64
	SellerName      string
	SalesCount      int // distinct completed sales
	UnitsSold       int
	TotalUSD        decimal.Decimal
	TotalSettlement decimal.Decimal // zero until ConvertForDisplay
}

// Aggregate sums item commissions per seller over completed sales dated in period.
// Rows are ordered by TotalUSD descending, then SellerID.
func Aggregate(sales []Sale, period Period) []SellerCommission {
	bySeller := make(map[int64]*SellerCommission)
	counted := make(map[int64]map[string]struct{})

	for _, sale := range sales {
		if !sale.Status.CountsForCommission() || !period.Contains(sale.SaleDate) {
			continue
		}
		row, ok := bySeller[sale.SellerID]
		if !ok {
			row = &SellerCommission{SellerID: sale.SellerID, SellerName: sale.SellerName, TotalUSD: decimal.Zero}
			bySeller[sale.SellerID] = row
			counted[sale.SellerID] = make(map[string]struct{})
		}
		if _, seen := counted[sale.SellerID][sale.ID.String()]; !seen {
			counted[sale.SellerID][sale.ID.String()] = struct{}{}
			row.SalesCount++
		}
		for _, item := range sale.Items {
			row.TotalUSD = row.TotalUSD.Add(item.ItemCommission())
			row.UnitsSold += item.Quantity
		}
	}

	rows := make([]SellerCommission, 0, len(bySeller))
	for _, row := range bySeller {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].TotalUSD.Equal(rows[j].TotalUSD) {
			return rows[i].TotalUSD.GreaterThan(rows[j].TotalUSD)
		}
		return rows[i].SellerID < rows[j].SellerID
	})
	return rows
}

// ConvertForDisplay fills TotalSettlement using conv.
// Callers pass the rate active now, not the one active when each sale happened;
// commissions are earned in base currency and the converted figure is informational.
func ConvertForDisplay(rows []SellerCommission, conv pricing.Converter) ([]SellerCommission, error) {
	out := make([]SellerCommission, len(rows))
	for i, row := range rows {
		converted, err := conv.ToSettlement(row.TotalUSD)
		if err != nil {
			return nil, err
		}
		row.TotalSettlement = converted
		out[i] = row
	}
	return out, nil
}

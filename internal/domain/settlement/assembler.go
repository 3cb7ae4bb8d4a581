package settlement

import (
	"fmt"

	"github.com/phonestore/backend/internal/domain/commission"
	"github.com/phonestore/backend/internal/domain/pricing"
	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Assembler composes conversion, commission resolution, financing and
// reconciliation into a Settlement. It performs no I/O.
type Assembler struct {
	calculator *pricing.FinancingCalculator
	reconciler *pricing.PaymentReconciler
	resolver   *commission.Resolver
}

// NewAssembler creates an assembler over a rule table and payment plan snapshot
func NewAssembler(calculator *pricing.FinancingCalculator, reconciler *pricing.PaymentReconciler, resolver *commission.Resolver) *Assembler {
	return &Assembler{
		calculator: calculator,
		reconciler: reconciler,
		resolver:   resolver,
	}
}

// Assemble prices lines in settlement currency, snapshots their commission,
// applies financing and discount, and reconciles payments. Unbalanced payments
// are reported on the Settlement, not as an error; quotes need that.
func (a *Assembler) Assemble(lines []CatalogLine, payments []pricing.PaymentEntry, rate pricing.Converter, discount decimal.Decimal) (*Settlement, error) {
	if len(lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidLine, "Add at least one product before pricing")
	}
	if !rate.Valid() {
		return nil, pricing.NewInvalidRateError(rate.Source(), rate.Rate())
	}

	snap := make([]Line, 0, len(lines))
	baseUSD := decimal.Zero
	baseTotal := decimal.Zero
	for i, cl := range lines {
		line, err := a.snapshot(i, cl, rate)
		if err != nil {
			return nil, err
		}
		baseUSD = baseUSD.Add(line.SubtotalBase)
		baseTotal = baseTotal.Add(line.SubtotalSettlement)
		snap = append(snap, line)
	}

	fin, err := a.calculator.Calculate(baseTotal, discount, payments, rate)
	if err != nil {
		return nil, err
	}
	rec := a.reconciler.ReconcileResolved(fin.FinalTotal, fin.Payments)

	return &Settlement{
		lines:            snap,
		baseTotalUSD:     baseUSD,
		baseTotal:        fin.BaseTotal,
		discountAmount:   fin.Discount,
		surchargeAmount:  fin.Surcharge,
		finalTotal:       fin.FinalTotal,
		multiplier:       fin.Multiplier,
		payments:         fin.Payments,
		totalTendered:    rec.TotalTendered,
		remainingBalance: rec.RemainingBalance,
		overpaidAmount:   rec.Overpaid,
		balanced:         rec.Balanced,
		rateUsed:         rate.Rate(),
		rateSource:       rate.Source(),
		financingPolicy:  a.calculator.Policy().Name(),
	}, nil
}

// AssembleForCommit is Assemble for the sale flow: payments must settle the total
func (a *Assembler) AssembleForCommit(lines []CatalogLine, payments []pricing.PaymentEntry, rate pricing.Converter, discount decimal.Decimal) (*Settlement, error) {
	s, err := a.Assemble(lines, payments, rate, discount)
	if err != nil {
		return nil, err
	}
	if err := s.Unbalanced(); err != nil {
		return nil, err
	}
	return s, nil
}

func (a *Assembler) snapshot(i int, cl CatalogLine, rate pricing.Converter) (Line, error) {
	if !cl.USDPrice.IsPositive() {
		return Line{}, shared.NewDomainError(shared.CodeInvalidLine,
			fmt.Sprintf("Line %d (%s): price must be positive, got %s", i+1, cl.Description, cl.USDPrice.String()))
	}
	if cl.Quantity <= 0 {
		return Line{}, shared.NewDomainError(shared.CodeInvalidLine,
			fmt.Sprintf("Line %d (%s): quantity must be positive, got %d", i+1, cl.Description, cl.Quantity))
	}

	res, err := a.resolver.Resolve(commission.LineKey{BrandID: cl.BrandID, CategoryID: cl.CategoryID}, cl.OwnRule)
	if err != nil {
		return Line{}, err
	}

	subtotal := cl.USDPrice.Mul(decimal.NewFromInt(int64(cl.Quantity)))
	converted, err := rate.ToSettlement(subtotal)
	if err != nil {
		return Line{}, err
	}

	return Line{
		VariantID:          cl.VariantID,
		Description:        cl.Description,
		USDPrice:           cl.USDPrice,
		Quantity:           cl.Quantity,
		Serials:            append([]string(nil), cl.Serials...),
		Commission:         res.Value,
		CommissionRuleID:   res.RuleID,
		CommissionOverride: res.Override,
		SubtotalBase:       subtotal,
		SubtotalSettlement: converted,
	}, nil
}

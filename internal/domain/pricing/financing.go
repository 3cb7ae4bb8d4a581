package pricing

import (
	"fmt"

	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FinancingResult is the breakdown of a financing calculation.
// Amounts are in settlement currency and unrounded.
type FinancingResult struct {
	BaseTotal                decimal.Decimal
	Discount                 decimal.Decimal
	PaidNoInterest           decimal.Decimal
	RemainingAfterNoInterest decimal.Decimal
	Multiplier               decimal.Decimal // effective financed multiplier, 1 when nothing is financed
	Surcharge                decimal.Decimal
	FinalTotal               decimal.Decimal
	Payments                 []ResolvedPayment
}

// HasFinancing reports whether a surcharge multiplier was applied
func (r *FinancingResult) HasFinancing() bool {
	return r.Multiplier.GreaterThan(one)
}

// FinancingCalculator computes the interest surcharge for a mix of payments
type FinancingCalculator struct {
	catalog *PaymentPlanCatalog
	policy  FinancingPolicy
}

// NewFinancingCalculator creates a calculator; a nil policy means strict
func NewFinancingCalculator(catalog *PaymentPlanCatalog, policy FinancingPolicy) *FinancingCalculator {
	if policy == nil {
		policy = NewStrictFinancingPolicy()
	}
	return &FinancingCalculator{catalog: catalog, policy: policy}
}

// Policy returns the financing policy in use
func (c *FinancingCalculator) Policy() FinancingPolicy {
	return c.policy
}

// Resolve looks up the multiplier of every entry and normalizes its amount.
// The converter is only consulted for base-currency entries.
func (c *FinancingCalculator) Resolve(payments []PaymentEntry, conv Converter) ([]ResolvedPayment, error) {
	resolved := make([]ResolvedPayment, 0, len(payments))
	for i, p := range payments {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("payment %d: %w", i+1, err)
		}
		normalized, err := conv.Normalize(p)
		if err != nil {
			return nil, err
		}
		m := one
		if c.catalog != nil {
			m = c.catalog.MultiplierFor(p.InstrumentID, p.Installments)
		}
		resolved = append(resolved, ResolvedPayment{Entry: p, Multiplier: m, Normalized: normalized})
	}
	return resolved, nil
}

// Calculate applies the financing rules:
// the discount and the no-interest payments reduce the financed base, the
// financed remainder is charged (m-1) on top, and without financed payments the
// final total is exactly baseTotal - discount.
func (c *FinancingCalculator) Calculate(baseTotal, discount decimal.Decimal, payments []PaymentEntry, conv Converter) (*FinancingResult, error) {
	if baseTotal.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidLine,
			fmt.Sprintf("Base total cannot be negative, got %s", baseTotal.String()))
	}
	if err := ValidateDiscount(discount, baseTotal); err != nil {
		return nil, err
	}

	resolved, err := c.Resolve(payments, conv)
	if err != nil {
		return nil, err
	}

	paidNoInterest := decimal.Zero
	var financed []ResolvedPayment
	for _, r := range resolved {
		if r.Financed() {
			financed = append(financed, r)
			continue
		}
		paidNoInterest = paidNoInterest.Add(r.Normalized)
	}

	due := baseTotal.Sub(discount)
	remaining := decimal.Max(due.Sub(paidNoInterest), decimal.Zero)

	result := &FinancingResult{
		BaseTotal:                baseTotal,
		Discount:                 discount,
		PaidNoInterest:           paidNoInterest,
		RemainingAfterNoInterest: remaining,
		Multiplier:               one,
		Surcharge:                decimal.Zero,
		FinalTotal:               due,
		Payments:                 resolved,
	}
	if len(financed) == 0 {
		return result, nil
	}

	m, err := c.policy.EffectiveMultiplier(financed)
	if err != nil {
		return nil, err
	}
	result.Multiplier = m
	result.Surcharge = remaining.Mul(m.Sub(one))
	result.FinalTotal = due.Add(result.Surcharge)
	return result, nil
}

// ValidateDiscount checks 0 <= discount <= baseTotal
func ValidateDiscount(discount, baseTotal decimal.Decimal) error {
	if discount.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidDiscount,
			fmt.Sprintf("Discount cannot be negative, got %s", discount.String()))
	}
	if discount.GreaterThan(baseTotal) {
		return shared.NewDomainError(shared.CodeInvalidDiscount,
			fmt.Sprintf("Discount %s exceeds the base total %s", discount.StringFixed(2), baseTotal.StringFixed(2)))
	}
	return nil
}

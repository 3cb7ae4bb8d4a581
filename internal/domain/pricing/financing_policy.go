package pricing

import (
	"fmt"
	"strings"

	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/phonestore/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// Financing policy names accepted by NewFinancingPolicy
const (
	FinancingPolicyStrict   = "strict"
	FinancingPolicyWeighted = "weighted"
)

// FinancingPolicy decides which multiplier applies when financed payments are present
type FinancingPolicy interface {
	strategy.Strategy
	// EffectiveMultiplier returns the multiplier applied to the financed remainder.
	// financed is never empty.
	EffectiveMultiplier(financed []ResolvedPayment) (decimal.Decimal, error)
}

var financingPolicies = strategy.NewRegistry[FinancingPolicy]("financing", FinancingPolicyStrict).
	MustRegister(NewStrictFinancingPolicy(), NewWeightedFinancingPolicy())

// FinancingPolicyNames lists the names NewFinancingPolicy accepts
func FinancingPolicyNames() []string {
	return financingPolicies.Names()
}

// NewFinancingPolicy returns the policy registered under name; empty selects strict
func NewFinancingPolicy(name string) (FinancingPolicy, error) {
	p, err := financingPolicies.Get(name)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidFinancingPol,
			fmt.Sprintf("Unknown financing policy %q; use one of %s", name, strings.Join(FinancingPolicyNames(), ", ")))
	}
	return p, nil
}

// StrictFinancingPolicy allows a single financed payment per settlement
type StrictFinancingPolicy struct {
	strategy.Base
}

// NewStrictFinancingPolicy creates the default policy
func NewStrictFinancingPolicy() *StrictFinancingPolicy {
	return &StrictFinancingPolicy{
		Base: strategy.NewBase(FinancingPolicyStrict, "Rejects settlements with more than one financed payment"),
	}
}

// EffectiveMultiplier returns the single financed multiplier or AmbiguousFinancingError
func (p *StrictFinancingPolicy) EffectiveMultiplier(financed []ResolvedPayment) (decimal.Decimal, error) {
	if len(financed) > 1 {
		ids := make([]int64, 0, len(financed))
		for _, f := range financed {
			ids = append(ids, f.Entry.InstrumentID)
		}
		return decimal.Zero, NewAmbiguousFinancingError(ids)
	}
	return financed[0].Multiplier, nil
}

// WeightedFinancingPolicy blends several financed multipliers by tendered amount
type WeightedFinancingPolicy struct {
	strategy.Base
}

// NewWeightedFinancingPolicy creates the amount-weighted policy
func NewWeightedFinancingPolicy() *WeightedFinancingPolicy {
	return &WeightedFinancingPolicy{
		Base: strategy.NewBase(FinancingPolicyWeighted, "Amount-weighted mean of financed multipliers"),
	}
}

// EffectiveMultiplier returns Σ(amount·m)/Σ amount over financed payments.
// When every financed amount is zero the plain mean is used.
func (p *WeightedFinancingPolicy) EffectiveMultiplier(financed []ResolvedPayment) (decimal.Decimal, error) {
	if len(financed) == 1 {
		return financed[0].Multiplier, nil
	}

	weighted := decimal.Zero
	total := decimal.Zero
	sum := decimal.Zero
	for _, f := range financed {
		weighted = weighted.Add(f.Normalized.Mul(f.Multiplier))
		total = total.Add(f.Normalized)
		sum = sum.Add(f.Multiplier)
	}

	if total.IsZero() {
		return sum.Div(decimal.NewFromInt(int64(len(financed)))), nil
	}
	return weighted.Div(total), nil
}

package pricing

import (
	"context"
	"fmt"
	"sort"

	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// PaymentInstrument is a way of paying (cash, transfer, card...)
type PaymentInstrument struct {
	ID             int64
	Name           string
	BaseMultiplier decimal.Decimal // surcharge factor without instalments; zero reads as 1
}

// InstallmentTier is the interest multiplier for paying with an instrument in N instalments
type InstallmentTier struct {
	InstrumentID     int64
	InstallmentCount int
	Multiplier       decimal.Decimal
	Description      string
}

// PaymentPlanCatalog answers which multiplier applies to an instrument/instalment pair
type PaymentPlanCatalog struct {
	instruments map[int64]PaymentInstrument
	tiers       map[int64][]InstallmentTier
}

// NewPaymentPlanCatalog validates and indexes instruments and tiers
func NewPaymentPlanCatalog(instruments []PaymentInstrument, tiers []InstallmentTier) (*PaymentPlanCatalog, error) {
	c := &PaymentPlanCatalog{
		instruments: make(map[int64]PaymentInstrument, len(instruments)),
		tiers:       make(map[int64][]InstallmentTier),
	}

	for _, inst := range instruments {
		if _, dup := c.instruments[inst.ID]; dup {
			return nil, invalidPlan("Payment instrument %d is defined twice", inst.ID)
		}
		if inst.BaseMultiplier.IsZero() {
			inst.BaseMultiplier = one
		}
		if inst.BaseMultiplier.LessThan(one) {
			return nil, invalidPlan("Payment instrument %q has multiplier %s; multipliers cannot be below 1",
				inst.Name, inst.BaseMultiplier.String())
		}
		c.instruments[inst.ID] = inst
	}

	seen := make(map[[2]int64]struct{}, len(tiers))
	for _, tier := range tiers {
		if _, ok := c.instruments[tier.InstrumentID]; !ok {
			return nil, invalidPlan("Installment tier references unknown instrument %d", tier.InstrumentID)
		}
		if tier.InstallmentCount <= 0 {
			return nil, invalidPlan("Installment count must be positive for instrument %d, got %d",
				tier.InstrumentID, tier.InstallmentCount)
		}
		if tier.Multiplier.LessThan(one) {
			return nil, invalidPlan("Installment tier %d x%d has multiplier %s; multipliers cannot be below 1",
				tier.InstrumentID, tier.InstallmentCount, tier.Multiplier.String())
		}
		key := [2]int64{tier.InstrumentID, int64(tier.InstallmentCount)}
		if _, dup := seen[key]; dup {
			return nil, invalidPlan("Instrument %d has two tiers for %d installments",
				tier.InstrumentID, tier.InstallmentCount)
		}
		seen[key] = struct{}{}
		c.tiers[tier.InstrumentID] = append(c.tiers[tier.InstrumentID], tier)
	}

	for id := range c.tiers {
		sort.Slice(c.tiers[id], func(i, j int) bool {
			return c.tiers[id][i].InstallmentCount < c.tiers[id][j].InstallmentCount
		})
	}

	return c, nil
}

func invalidPlan(format string, args ...any) error {
	return shared.NewDomainError(shared.CodeInvalidPaymentPlan, fmt.Sprintf(format, args...))
}

// MultiplierFor returns the tier multiplier when installments matches a tier,
// otherwise the instrument base multiplier, otherwise 1.
func (c *PaymentPlanCatalog) MultiplierFor(instrumentID int64, installments int) decimal.Decimal {
	if installments > 0 {
		for _, tier := range c.tiers[instrumentID] {
			if tier.InstallmentCount == installments {
				return tier.Multiplier
			}
		}
	}
	if inst, ok := c.instruments[instrumentID]; ok {
		return inst.BaseMultiplier
	}
	return one
}

// TiersFor returns the tiers of an instrument ordered by installment count.
// An empty result means the instrument is single-payment.
func (c *PaymentPlanCatalog) TiersFor(instrumentID int64) []InstallmentTier {
	tiers := c.tiers[instrumentID]
	out := make([]InstallmentTier, len(tiers))
	copy(out, tiers)
	return out
}

// Instrument looks up an instrument by ID
func (c *PaymentPlanCatalog) Instrument(id int64) (PaymentInstrument, bool) {
	inst, ok := c.instruments[id]
	return inst, ok
}

// Instruments returns all instruments ordered by name
func (c *PaymentPlanCatalog) Instruments() []PaymentInstrument {
	out := make([]PaymentInstrument, 0, len(c.instruments))
	for _, inst := range c.instruments {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// PaymentPlanRepository loads the instrument and tier tables
type PaymentPlanRepository interface {
	FindInstruments(ctx context.Context) ([]PaymentInstrument, error)
	FindTiers(ctx context.Context) ([]InstallmentTier, error)
}

package pricing

import (
	"github.com/shopspring/decimal"
)

// DefaultReconcileEpsilon is one minor unit of the settlement currency
var DefaultReconcileEpsilon = decimal.New(1, -2)

// Reconciliation compares tendered payments with the amount due
type Reconciliation struct {
	FinalTotal       decimal.Decimal
	TotalTendered    decimal.Decimal
	RemainingBalance decimal.Decimal
	Overpaid         decimal.Decimal
	Balanced         bool
}

// PaymentReconciler checks that payments settle a final total
type PaymentReconciler struct {
	epsilon decimal.Decimal
}

// NewPaymentReconciler creates a reconciler; a non-positive epsilon selects the default.
// The bound is exclusive: payments balance when the cent-rounded gap is strictly
// below epsilon, so the default 0.01 demands an exact match to the cent and 0.05
// tolerates gaps up to 0.04.
func NewPaymentReconciler(epsilon decimal.Decimal) *PaymentReconciler {
	if !epsilon.IsPositive() {
		epsilon = DefaultReconcileEpsilon
	}
	return &PaymentReconciler{epsilon: epsilon}
}

// Epsilon returns the tolerance used for the balance check
func (r *PaymentReconciler) Epsilon() decimal.Decimal {
	return r.epsilon
}

// Reconcile normalizes payments and computes remaining and overpaid balances.
// Unbalanced payments are not an error here; see Validate.
func (r *PaymentReconciler) Reconcile(finalTotal decimal.Decimal, payments []PaymentEntry, conv Converter) (Reconciliation, error) {
	tendered := decimal.Zero
	for _, p := range payments {
		if err := p.Validate(); err != nil {
			return Reconciliation{}, err
		}
		n, err := conv.Normalize(p)
		if err != nil {
			return Reconciliation{}, err
		}
		tendered = tendered.Add(n)
	}
	return r.compare(finalTotal, tendered), nil
}

// ReconcileResolved is Reconcile for payments already normalized by the calculator
func (r *PaymentReconciler) ReconcileResolved(finalTotal decimal.Decimal, payments []ResolvedPayment) Reconciliation {
	tendered := decimal.Zero
	for _, p := range payments {
		tendered = tendered.Add(p.Normalized)
	}
	return r.compare(finalTotal, tendered)
}

func (r *PaymentReconciler) compare(finalTotal, tendered decimal.Decimal) Reconciliation {
	diff := tendered.Round(2).Sub(finalTotal.Round(2)).Abs()
	return Reconciliation{
		FinalTotal:       finalTotal,
		TotalTendered:    tendered,
		RemainingBalance: decimal.Max(finalTotal.Sub(tendered), decimal.Zero),
		Overpaid:         decimal.Max(tendered.Sub(finalTotal), decimal.Zero),
		Balanced:         diff.LessThan(r.epsilon),
	}
}

// Validate reconciles and returns UnbalancedPaymentError when payments do not settle finalTotal
func (r *PaymentReconciler) Validate(finalTotal decimal.Decimal, payments []PaymentEntry, conv Converter) (Reconciliation, error) {
	rec, err := r.Reconcile(finalTotal, payments, conv)
	if err != nil {
		return Reconciliation{}, err
	}
	if err := rec.Err(); err != nil {
		return rec, err
	}
	return rec, nil
}

// Err returns UnbalancedPaymentError for an unbalanced reconciliation, nil otherwise
func (rec Reconciliation) Err() error {
	if rec.Balanced {
		return nil
	}
	return NewUnbalancedPaymentError(rec.FinalTotal, rec.TotalTendered)
}

package pricing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExchangeRate is one entry of the append-only rate ledger.
// Rows are never edited; recording a new rate for a source deactivates the previous one.
type ExchangeRate struct {
	ID         uuid.UUID
	Source     string
	Rate       decimal.Decimal // settlement units per base unit
	IsActive   bool
	CapturedAt time.Time
}

// NewExchangeRate creates a new active rate for a source
func NewExchangeRate(source string, rate decimal.Decimal, capturedAt time.Time) (*ExchangeRate, error) {
	source = strings.TrimSpace(strings.ToLower(source))
	if source == "" {
		return nil, shared.NewDomainError("INVALID_RATE_SOURCE", "Exchange rate source cannot be empty")
	}
	if !rate.IsPositive() {
		return nil, NewInvalidRateError(source, rate)
	}
	if capturedAt.IsZero() {
		capturedAt = time.Now()
	}
	return &ExchangeRate{
		ID:         uuid.New(),
		Source:     source,
		Rate:       rate,
		IsActive:   true,
		CapturedAt: capturedAt,
	}, nil
}

// Converter returns a converter bound to this rate
func (r *ExchangeRate) Converter() (Converter, error) {
	if r == nil {
		return Converter{}, NewInvalidRateError("", decimal.Zero)
	}
	if !r.IsActive {
		return Converter{}, NewMissingRateError(r.Source)
	}
	return NewConverterForSource(r.Source, r.Rate)
}

// ExchangeRateRepository reads and appends to the rate ledger
type ExchangeRateRepository interface {
	// FindActive returns the active rate for a source, or shared.ErrNotFound
	FindActive(ctx context.Context, source string) (*ExchangeRate, error)
	// History returns the most recent rates for a source, newest first
	History(ctx context.Context, source string, limit int) ([]ExchangeRate, error)
	// Record appends a rate and deactivates the previously active one atomically
	Record(ctx context.Context, rate *ExchangeRate) error
}

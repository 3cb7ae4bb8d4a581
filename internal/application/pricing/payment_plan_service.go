package pricing

import (
	"context"
	"fmt"

	"github.com/phonestore/backend/internal/domain/pricing"
	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/phonestore/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PaymentPlanService exposes the payment instrument catalog
type PaymentPlanService struct {
	repo   pricing.PaymentPlanRepository
	logger *zap.Logger
}

// NewPaymentPlanService creates a new PaymentPlanService
func NewPaymentPlanService(repo pricing.PaymentPlanRepository, logger *zap.Logger) *PaymentPlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentPlanService{repo: repo, logger: logger}
}

// Catalog loads instruments and tiers into a validated catalog snapshot
func (s *PaymentPlanService) Catalog(ctx context.Context) (*pricing.PaymentPlanCatalog, error) {
	instruments, err := s.repo.FindInstruments(ctx)
	if err != nil {
		s.log(ctx).Error("Failed to load payment instruments", zap.Error(err))
		return nil, err
	}
	tiers, err := s.repo.FindTiers(ctx)
	if err != nil {
		s.log(ctx).Error("Failed to load installment tiers", zap.Error(err))
		return nil, err
	}
	catalog, err := pricing.NewPaymentPlanCatalog(instruments, tiers)
	if err != nil {
		s.log(ctx).Error("Payment plan tables are inconsistent", zap.Error(err))
		return nil, err
	}
	return catalog, nil
}

// ListInstruments returns all instruments ordered by name
func (s *PaymentPlanService) ListInstruments(ctx context.Context) ([]InstrumentResponse, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	instruments := catalog.Instruments()
	out := make([]InstrumentResponse, 0, len(instruments))
	for _, inst := range instruments {
		out = append(out, InstrumentResponse{
			ID:              inst.ID,
			Name:            inst.Name,
			BaseMultiplier:  inst.BaseMultiplier,
			HasInstallments: len(catalog.TiersFor(inst.ID)) > 0,
		})
	}
	return out, nil
}

// TiersFor returns the installment tiers of an instrument
func (s *PaymentPlanService) TiersFor(ctx context.Context, instrumentID int64) ([]TierResponse, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := catalog.Instrument(instrumentID); !ok {
		return nil, instrumentNotFound(instrumentID)
	}
	tiers := catalog.TiersFor(instrumentID)
	out := make([]TierResponse, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, TierResponse{
			InstrumentID:     t.InstrumentID,
			InstallmentCount: t.InstallmentCount,
			Multiplier:       t.Multiplier,
			Description:      t.Description,
		})
	}
	return out, nil
}

// MultiplierFor resolves the multiplier of an instrument and installment count
func (s *PaymentPlanService) MultiplierFor(ctx context.Context, instrumentID int64, installments int) (*MultiplierResponse, error) {
	if installments < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidPayment,
			fmt.Sprintf("Installment count cannot be negative, got %d", installments))
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := catalog.Instrument(instrumentID); !ok {
		return nil, instrumentNotFound(instrumentID)
	}
	m := catalog.MultiplierFor(instrumentID, installments)
	return &MultiplierResponse{
		InstrumentID: instrumentID,
		Installments: installments,
		Multiplier:   m,
		Financed:     pricing.ResolvedPayment{Multiplier: m}.Financed(),
	}, nil
}

func instrumentNotFound(id int64) error {
	return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Payment instrument %d not found", id))
}

func (s *PaymentPlanService) log(ctx context.Context) *zap.Logger {
	return logger.For(ctx, s.logger)
}

package pricing

import (
	"context"
	"errors"

	"github.com/phonestore/backend/internal/domain/commission"
	"github.com/phonestore/backend/internal/domain/pricing"
	"github.com/phonestore/backend/internal/domain/settlement"
	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/phonestore/backend/internal/infrastructure/logger"
	"github.com/phonestore/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SettlementService runs the settlement engine against the current rate,
// payment plan and commission rule snapshots.
type SettlementService struct {
	rates      *ExchangeRateService
	plans      *PaymentPlanService
	rules      commission.RuleRepository
	committer  settlement.SaleCommitter
	policy     pricing.FinancingPolicy
	reconciler *pricing.PaymentReconciler
	metrics    *telemetry.PricingMetrics
	logger     *zap.Logger
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	rates *ExchangeRateService,
	plans *PaymentPlanService,
	rules commission.RuleRepository,
	committer settlement.SaleCommitter,
	policy pricing.FinancingPolicy,
	reconciler *pricing.PaymentReconciler,
	logger *zap.Logger,
) *SettlementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == nil {
		policy = pricing.NewStrictFinancingPolicy()
	}
	if reconciler == nil {
		reconciler = pricing.NewPaymentReconciler(pricing.DefaultReconcileEpsilon)
	}
	return &SettlementService{
		rates:      rates,
		plans:      plans,
		rules:      rules,
		committer:  committer,
		policy:     policy,
		reconciler: reconciler,
		logger:     logger,
	}
}

// SetMetrics sets the pricing metrics recorder
func (s *SettlementService) SetMetrics(metrics *telemetry.PricingMetrics) {
	s.metrics = metrics
}

func (s *SettlementService) assembler(ctx context.Context) (*settlement.Assembler, error) {
	catalog, err := s.plans.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	rules, err := s.rules.FindAll(ctx)
	if err != nil {
		s.log(ctx).Error("Failed to load commission rules", zap.Error(err))
		return nil, err
	}
	resolver, err := commission.NewResolver(rules)
	if err != nil {
		return nil, err
	}
	return settlement.NewAssembler(
		pricing.NewFinancingCalculator(catalog, s.policy),
		s.reconciler,
		resolver,
	), nil
}

// Quote prices a cart. Payments may be incomplete; the remaining balance is reported.
func (s *SettlementService) Quote(ctx context.Context, req QuoteRequest) (*SettlementResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "quote")
	defer span.End()

	result, err := s.assemble(ctx, req, telemetry.SettlementFlowQuote)
	if err != nil {
		telemetry.RecordError(span, err)
		s.reject(ctx, telemetry.SettlementFlowQuote, err)
		return nil, err
	}
	s.metrics.RecordAssembled(ctx, telemetry.SettlementFlowQuote)

	resp := ToSettlementResponse(result)
	return &resp, nil
}

// Reconcile checks payments against a final total computed earlier
func (s *SettlementService) Reconcile(ctx context.Context, req ReconcileRequest) (*ReconcileResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "reconcile",
		telemetry.AttrRateSource.String(req.RateSource),
	)
	defer span.End()

	payments := toPaymentEntries(req.Payments)

	var conv pricing.Converter
	for _, p := range payments {
		if p.Currency == pricing.CurrencyBase {
			c, err := s.rates.ActiveConverter(ctx, req.RateSource)
			if err != nil {
				telemetry.RecordError(span, err)
				s.reject(ctx, telemetry.SettlementFlowReconcile, err)
				return nil, err
			}
			conv = c
			break
		}
	}

	rec, err := s.reconciler.Reconcile(req.FinalTotal, payments, conv)
	if err != nil {
		telemetry.RecordError(span, err)
		s.reject(ctx, telemetry.SettlementFlowReconcile, err)
		return nil, err
	}
	s.metrics.RecordAssembled(ctx, telemetry.SettlementFlowReconcile)

	resp := ToReconcileResponse(rec)
	return &resp, nil
}

// CommitSale assembles a balanced settlement and hands it to the persistence boundary.
// Nothing is written unless the payments settle the final total.
func (s *SettlementService) CommitSale(ctx context.Context, req CommitSaleRequest) (*CommitSaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "commit_sale",
		telemetry.AttrCustomerID.Int64(req.CustomerID),
		telemetry.AttrSellerID.Int64(req.SellerID),
		telemetry.AttrLineCount.Int(len(req.Lines)),
	)
	defer span.End()

	result, err := s.assemble(ctx, req.QuoteRequest, telemetry.SettlementFlowSale)
	if err != nil {
		telemetry.RecordError(span, err)
		s.reject(ctx, telemetry.SettlementFlowSale, err)
		return nil, err
	}

	payload, err := settlement.BuildCommitPayload(result, req.CustomerID, req.SellerID)
	if err != nil {
		telemetry.RecordError(span, err)
		s.reject(ctx, telemetry.SettlementFlowSale, err)
		return nil, err
	}

	saleID, err := s.committer.Commit(ctx, payload)
	if err != nil {
		telemetry.RecordError(span, err)
		s.reject(ctx, telemetry.SettlementFlowSale, err)
		return nil, err
	}

	s.metrics.RecordAssembled(ctx, telemetry.SettlementFlowSale)
	s.metrics.RecordSaleCommitted(ctx, result.FinancingPolicy(), result.SurchargeAmount())
	span.SetAttributes(telemetry.AttrSaleID.String(saleID.String()))

	s.log(ctx).Info("Sale committed",
		zap.String("sale_id", saleID.String()),
		zap.Int64("customer_id", req.CustomerID),
		zap.Int64("seller_id", req.SellerID),
		zap.String("final_total", result.FinalTotal().StringFixed(2)),
		zap.String("surcharge", result.SurchargeAmount().StringFixed(2)),
		zap.String("rate", result.RateUsed().String()),
	)

	return &CommitSaleResponse{
		SaleID:     saleID,
		Settlement: ToSettlementResponse(result),
	}, nil
}

// assemble runs under pprof labels naming the flow and the financing policy.
func (s *SettlementService) assemble(ctx context.Context, req QuoteRequest, flow telemetry.SettlementFlow) (result *settlement.Settlement, err error) {
	telemetry.WithProfilingLabels(ctx, map[string]string{
		telemetry.ProfilingLabelFlow:   string(flow),
		telemetry.ProfilingLabelPolicy: s.policy.Name(),
	}, func(ctx context.Context) {
		result, err = s.assembleSettlement(ctx, req, flow == telemetry.SettlementFlowSale)
	})
	return result, err
}

func (s *SettlementService) assembleSettlement(ctx context.Context, req QuoteRequest, forCommit bool) (*settlement.Settlement, error) {
	lines, err := toCatalogLines(req.Lines)
	if err != nil {
		return nil, err
	}
	conv, err := s.rates.ActiveConverter(ctx, req.RateSource)
	if err != nil {
		return nil, err
	}
	assembler, err := s.assembler(ctx)
	if err != nil {
		return nil, err
	}
	payments := toPaymentEntries(req.Payments)
	if forCommit {
		return assembler.AssembleForCommit(lines, payments, conv, req.Discount)
	}
	return assembler.Assemble(lines, payments, conv, req.Discount)
}

// reject logs domain rejections at Warn and everything else at Error
func (s *SettlementService) reject(ctx context.Context, flow telemetry.SettlementFlow, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		s.metrics.RecordRejected(ctx, flow, domainErr.Code)
		s.log(ctx).Warn("Settlement rejected",
			zap.String("flow", string(flow)),
			zap.String("code", domainErr.Code),
			zap.String("reason", domainErr.Message),
		)
		return
	}
	s.metrics.RecordRejected(ctx, flow, "INTERNAL")
	s.log(ctx).Error("Settlement failed", zap.String("flow", string(flow)), zap.Error(err))
}

func (s *SettlementService) log(ctx context.Context) *zap.Logger {
	return logger.For(ctx, s.logger)
}

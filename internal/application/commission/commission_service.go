package commission

import (
	"context"
	"time"

	"github.com/phonestore/backend/internal/domain/commission"
	"github.com/phonestore/backend/internal/domain/pricing"
	"github.com/phonestore/backend/internal/domain/shared/valueobject"
	"github.com/phonestore/backend/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RateProvider supplies the currently active exchange rate
type RateProvider interface {
	ActiveConverter(ctx context.Context, source string) (pricing.Converter, error)
}

// CommissionService resolves commission rules and builds seller reports
type CommissionService struct {
	rules  commission.RuleRepository
	sales  commission.SaleRepository
	rates  RateProvider
	logger *zap.Logger

	settlementCurrency valueobject.Currency
}

// NewCommissionService creates a new CommissionService
func NewCommissionService(
	rules commission.RuleRepository,
	sales commission.SaleRepository,
	rates RateProvider,
	logger *zap.Logger,
) *CommissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommissionService{
		rules:  rules,
		sales:  sales,
		rates:  rates,
		logger: logger,

		settlementCurrency: valueobject.DefaultSettlementCurrency,
	}
}

// WithSettlementCurrency sets the currency code printed on report totals
func (s *CommissionService) WithSettlementCurrency(code string) *CommissionService {
	if code != "" {
		s.settlementCurrency = valueobject.Currency(code)
	}
	return s
}

func (s *CommissionService) resolver(ctx context.Context) (*commission.Resolver, error) {
	rules, err := s.rules.FindAll(ctx)
	if err != nil {
		s.log(ctx).Error("Failed to load commission rules", zap.Error(err))
		return nil, err
	}
	return commission.NewResolver(rules)
}

// Resolve returns the commission a new catalog line would get
func (s *CommissionService) Resolve(ctx context.Context, req ResolveRuleRequest) (*ResolveRuleResponse, error) {
	var own *commission.Value
	if req.CommissionPct != nil || req.CommissionFixed != nil {
		v, err := commission.FromFields(req.CommissionPct, req.CommissionFixed)
		if err != nil {
			return nil, err
		}
		own = &v
	}

	resolver, err := s.resolver(ctx)
	if err != nil {
		return nil, err
	}
	res, err := resolver.Resolve(commission.LineKey{BrandID: req.BrandID, CategoryID: req.CategoryID}, own)
	if err != nil {
		s.log(ctx).Warn("No commission rule applies",
			zap.Any("brand_id", req.BrandID),
			zap.Any("category_id", req.CategoryID),
		)
		return nil, err
	}

	pct, fixed := res.Value.Fields()
	return &ResolveRuleResponse{
		Kind:            string(res.Value.Kind()),
		CommissionPct:   pct,
		CommissionFixed: fixed,
		RuleID:          res.RuleID,
		Override:        res.Override,
	}, nil
}

// ListRules returns the rule table in precedence order
func (s *CommissionService) ListRules(ctx context.Context) ([]RuleResponse, error) {
	resolver, err := s.resolver(ctx)
	if err != nil {
		return nil, err
	}
	rules := resolver.Rules()
	out := make([]RuleResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, ToRuleResponse(r))
	}
	return out, nil
}

// CreateRule adds a rule to the table
func (s *CommissionService) CreateRule(ctx context.Context, req CreateRuleRequest) (*RuleResponse, error) {
	value, err := commission.FromFields(req.CommissionPct, req.CommissionFixed)
	if err != nil {
		return nil, err
	}
	rule, err := commission.NewCommissionRule(0, req.BrandID, req.CategoryID, value, req.Priority)
	if err != nil {
		return nil, err
	}
	if err := s.rules.Save(ctx, rule); err != nil {
		s.log(ctx).Error("Failed to save commission rule", zap.Error(err))
		return nil, err
	}
	s.log(ctx).Info("Commission rule created",
		zap.Int64("rule_id", rule.ID),
		zap.String("specificity", rule.Specificity().String()),
		zap.String("value", rule.Value.String()),
	)
	resp := ToRuleResponse(*rule)
	return &resp, nil
}

// SellerReport aggregates commissions of completed sales in [start, end).
// Settlement-currency totals use the rate active now, on purpose.
func (s *CommissionService) SellerReport(ctx context.Context, start, end time.Time, rateSource string) (*SellerReportResponse, error) {
	period, err := commission.NewPeriod(start, end)
	if err != nil {
		return nil, err
	}

	sales, err := s.sales.FindInPeriod(ctx, period)
	if err != nil {
		s.log(ctx).Error("Failed to load sales for commission report", zap.Error(err))
		return nil, err
	}
	rows := commission.Aggregate(sales, period)

	conv, err := s.rates.ActiveConverter(ctx, rateSource)
	if err != nil {
		return nil, err
	}
	rows, err = commission.ConvertForDisplay(rows, conv)
	if err != nil {
		return nil, err
	}

	resp := &SellerReportResponse{
		StartDate:   period.Start,
		EndDate:     period.End,
		RateUsed:    conv.Rate(),
		RateSource:  conv.Source(),
		Sellers:     make([]SellerCommissionResponse, 0, len(rows)),
		TotalUSD:    decimal.Zero,
		GeneratedAt: time.Now(),
	}
	totalSettlement := valueobject.Zero(s.settlementCurrency)
	for _, r := range rows {
		resp.TotalUSD = resp.TotalUSD.Add(r.TotalUSD)
		totalSettlement = totalSettlement.Accumulate(r.TotalSettlement)
		resp.Sellers = append(resp.Sellers, SellerCommissionResponse{
			SellerID:        r.SellerID,
			SellerName:      r.SellerName,
			SalesCount:      r.SalesCount,
			UnitsSold:       r.UnitsSold,
			TotalUSD:        r.TotalUSD.Round(2),
			TotalSettlement: r.TotalSettlement.Round(2),
		})
	}
	resp.TotalUSD = resp.TotalUSD.Round(2)
	resp.TotalSettlement = totalSettlement.Round(valueobject.MinorUnitPlaces)
	return resp, nil
}

func (s *CommissionService) log(ctx context.Context) *zap.Logger {
	return logger.For(ctx, s.logger)
}

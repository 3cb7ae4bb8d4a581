package persistence

import (
	"context"
	"testing"

	"github.com/phonestore/backend/internal/domain/commission"
	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/phonestore/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestGormCommissionRuleRepository_SaveAndFindAll(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCommissionRuleRepository(setupTestDB(t))

	global, err := commission.NewCommissionRule(0, nil, nil, commission.MustPercentage("1"), 100)
	require.NoError(t, err)
	brand, err := commission.NewCommissionRule(0, int64Ptr(7), nil, commission.MustFixed("15"), 0)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, global))
	require.NoError(t, repo.Save(ctx, brand))
	assert.NotZero(t, global.ID)
	assert.NotZero(t, brand.ID)
	assert.NotEqual(t, global.ID, brand.ID)

	rules, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, commission.SpecificityGlobal, rules[0].Specificity())
	assert.True(t, rules[0].Value.Equals(commission.MustPercentage("1")))
	assert.Equal(t, 100, rules[0].Priority)

	assert.Equal(t, commission.SpecificityBrand, rules[1].Specificity())
	require.NotNil(t, rules[1].BrandID)
	assert.Equal(t, int64(7), *rules[1].BrandID)
	assert.True(t, rules[1].Value.Equals(commission.MustFixed("15")))
}

func TestGormCommissionRuleRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCommissionRuleRepository(setupTestDB(t))

	rule, err := commission.NewCommissionRule(0, int64Ptr(1), int64Ptr(2), commission.MustPercentage("5"), 0)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, rule))

	rule.Value = commission.MustFixed("20")
	rule.CategoryID = nil
	require.NoError(t, repo.Save(ctx, rule))

	rules, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, rule.ID, rules[0].ID)
	assert.Nil(t, rules[0].CategoryID)
	assert.True(t, rules[0].Value.Equals(commission.MustFixed("20")), "percentage column cleared")
}

func TestGormCommissionRuleRepository_CorruptRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCommissionRuleRepository(db)

	pct := decimal.NewFromInt(5)
	fixed := decimal.NewFromInt(10)
	require.NoError(t, db.Create(&models.CommissionRuleModel{Percentage: &pct, FixedAmount: &fixed}).Error)

	_, err := repo.FindAll(context.Background())
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeInvalidCommission, domainErr.Code)
}

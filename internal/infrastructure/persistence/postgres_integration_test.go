//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/phonestore/backend/internal/domain/commission"
	"github.com/phonestore/backend/internal/domain/pricing"
	"github.com/phonestore/backend/internal/domain/shared"
	"github.com/phonestore/backend/internal/infrastructure/migration"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgres starts a PostgreSQL container and applies the embedded migrations
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("phonestore_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	database, err := Open(postgres.Open(dsn))
	require.NoError(t, err)
	sqlDB, err := database.DB.DB()
	require.NoError(t, err)

	m, err := migration.NewEmbedded(sqlDB, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), version)

	return database.DB
}

func TestPostgres_SeededPaymentPlans(t *testing.T) {
	db := setupPostgres(t)
	repo := NewGormPaymentPlanRepository(db)
	ctx := context.Background()

	instruments, err := repo.FindInstruments(ctx)
	require.NoError(t, err)
	tiers, err := repo.FindTiers(ctx)
	require.NoError(t, err)

	catalog, err := pricing.NewPaymentPlanCatalog(instruments, tiers)
	require.NoError(t, err)
	require.Len(t, catalog.Instruments(), 4)

	var card pricing.PaymentInstrument
	for _, inst := range catalog.Instruments() {
		if inst.Name == "Credit card" {
			card = inst
		}
	}
	require.NotZero(t, card.ID)
	assert.True(t, catalog.MultiplierFor(card.ID, 6).Equal(decimal.RequireFromString("1.35")))

	rules, err := NewGormCommissionRuleRepository(db).FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, commission.SpecificityGlobal, rules[0].Specificity())
}

func TestPostgres_RecordKeepsOneActiveRate(t *testing.T) {
	db := setupPostgres(t)
	repo := NewGormExchangeRateRepository(db)
	ctx := context.Background()

	for _, r := range []string{"1200", "1250", "1300"} {
		rate, err := pricing.NewExchangeRate("blue", decimal.RequireFromString(r), time.Now())
		require.NoError(t, err)
		require.NoError(t, repo.Record(ctx, rate))
	}

	active, err := repo.FindActive(ctx, "blue")
	require.NoError(t, err)
	assert.True(t, active.Rate.Equal(decimal.NewFromInt(1300)))

	history, err := repo.History(ctx, "blue", 10)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestPostgres_DuplicateSerialAcrossSales(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	sellerID := seedSeller(t, db, "Ana")

	var cash int64
	require.NoError(t, db.Raw("SELECT id FROM payment_instruments WHERE name = 'Cash'").Scan(&cash).Error)

	committer := NewGormSaleCommitter(db)
	payload := samplePayload(sellerID, "IMEI-1")
	for i := range payload.Payments {
		payload.Payments[i].InstrumentID = cash
	}
	_, err := committer.Commit(ctx, payload)
	require.NoError(t, err)

	_, err = committer.Commit(ctx, payload)
	assert.ErrorIs(t, err, shared.ErrDuplicateSerial)
}

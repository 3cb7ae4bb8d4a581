package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/phonestore/backend/docs"
	commissionapp "github.com/phonestore/backend/internal/application/commission"
	pricingapp "github.com/phonestore/backend/internal/application/pricing"
	"github.com/phonestore/backend/internal/domain/pricing"
	"github.com/phonestore/backend/internal/infrastructure/cache"
	"github.com/phonestore/backend/internal/infrastructure/config"
	"github.com/phonestore/backend/internal/infrastructure/logger"
	"github.com/phonestore/backend/internal/infrastructure/migration"
	"github.com/phonestore/backend/internal/infrastructure/persistence"
	"github.com/phonestore/backend/internal/infrastructure/telemetry"
	"github.com/phonestore/backend/internal/interfaces/http/handler"
	"github.com/phonestore/backend/internal/interfaces/http/middleware"
	"github.com/phonestore/backend/internal/interfaces/http/router"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

//	@title			Phone Store Pricing API
//	@version		1.0
//	@description	Pricing, financing and commission computation for the phone store back office.

//	@contact.name	API Support
//	@contact.url	https://github.com/phonestore/backend

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

// run wires the engine and serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	tel, err := telemetry.Setup(ctx, telemetrySettings(cfg), log)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	log = tel.Logger
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(sctx); err != nil {
			log.Warn("Telemetry shutdown incomplete", zap.Error(err))
		}
	}()

	log.Info("Starting pricing engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("financing_policy", cfg.Pricing.FinancingPolicy),
		zap.String("rate_source", cfg.Pricing.RateSource),
	)

	db, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	rateCache, err := cache.NewRateCacheFactory(
		cfg.Pricing.CacheBackend,
		cache.RedisConfig{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB},
		cfg.Pricing.RateCacheTTL,
		cache.WithLogger(log),
	).Create(ctx)
	if err != nil {
		return fmt.Errorf("rate cache: %w", err)
	}
	defer func() {
		if err := rateCache.Close(); err != nil {
			log.Warn("Failed to close rate cache", zap.Error(err))
		}
	}()

	handlers, err := buildHandlers(cfg, db, rateCache, tel, log)
	if err != nil {
		return err
	}
	engine, writeGuard := newEngine(cfg, tel, log)
	api := router.Setup(engine, handlers, writeGuard)
	log.Debug("Routes registered", zap.String("base_path", api.BasePath()), zap.Int("count", len(api.Routes())))

	return serve(ctx, &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}, log)
}

func telemetrySettings(cfg *config.Config) telemetry.Settings {
	t := cfg.Telemetry
	return telemetry.Settings{
		Exporter: telemetry.Exporter{
			Endpoint:       t.CollectorEndpoint,
			Insecure:       t.Insecure,
			ServiceName:    t.ServiceName,
			ServiceVersion: version,
		},
		Traces:          t.Enabled,
		SamplingRatio:   t.SamplingRatio,
		Metrics:         t.MetricsEnabled,
		MetricsInterval: t.MetricsInterval,
		Logs:            t.LogsEnabled,
		LogLevel:        logger.ParseLevel(cfg.Log.Level),
		Profiler: telemetry.ProfilerConfig{
			Enabled:           t.ProfilingEnabled,
			ServerAddress:     t.PyroscopeAddress,
			ApplicationName:   t.ServiceName,
			BasicAuthUser:     t.PyroscopeUser,
			BasicAuthPassword: t.PyroscopePassword,
			ProfileTypes:      t.ProfileTypes,
		},
		SpanProfiles: t.SpanProfiles,
	}
}

// openDatabase connects with statement tracing and, when configured, brings
// the schema up to date from the embedded migrations.
func openDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	tracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(log, logger.MapGormLogLevel(cfg.Log.Level)),
		persistence.WithSlowQuery(cfg.Telemetry.DBSlowQueryThresh),
		persistence.WithTracing(tracing),
	)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.DBName),
	)
	if !cfg.Database.AutoMigrate {
		return db, nil
	}

	pool, err := db.SQL()
	if err == nil {
		var m *migration.Migrator
		// Not closed: closing the migrator closes the shared pool.
		if m, err = migration.NewEmbedded(pool, log); err == nil {
			err = m.Up()
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}

func buildHandlers(cfg *config.Config, db *persistence.Database, rateCache pricing.RateCache, tel *telemetry.Telemetry, log *zap.Logger) (router.Handlers, error) {
	policy, err := pricing.NewFinancingPolicy(cfg.Pricing.FinancingPolicy)
	if err != nil {
		return router.Handlers{}, err
	}
	metrics, err := telemetry.NewPricingMetrics(tel.Meter.Meter(telemetry.MeterName), log)
	if err != nil {
		log.Warn("Pricing metrics unavailable", zap.Error(err))
		metrics = nil
	}

	rules := persistence.NewGormCommissionRuleRepository(db.DB)
	rates := pricingapp.NewExchangeRateService(persistence.NewGormExchangeRateRepository(db.DB), log,
		pricingapp.WithRateCache(rateCache, cfg.Pricing.RateCacheTTL),
		pricingapp.WithDefaultSource(cfg.Pricing.RateSource),
		pricingapp.WithRateMetrics(metrics),
	)
	plans := pricingapp.NewPaymentPlanService(persistence.NewGormPaymentPlanRepository(db.DB), log)
	settlements := pricingapp.NewSettlementService(rates, plans, rules,
		persistence.NewGormSaleCommitter(db.DB, persistence.WithCommitterLogger(log)),
		policy, pricing.NewPaymentReconciler(cfg.Pricing.ReconcileEpsilon), log)
	settlements.SetMetrics(metrics)
	commissions := commissionapp.NewCommissionService(rules, persistence.NewGormSaleRepository(db.DB), rates, log).
		WithSettlementCurrency(cfg.Pricing.SettlementCurrency)

	checks := map[string]handler.Pinger{"database": db}
	if pinger, ok := rateCache.(handler.Pinger); ok {
		checks["rate_cache"] = pinger
	}
	return router.Handlers{
		Settlement:   handler.NewSettlementHandler(settlements),
		ExchangeRate: handler.NewExchangeRateHandler(rates),
		PaymentPlan:  handler.NewPaymentPlanHandler(plans),
		Commission:   handler.NewCommissionHandler(commissions),
		Report:       handler.NewReportHandler(commissions),
		System:       handler.NewSystemHandler(cfg.App.Name, version, checks),
	}, nil
}

// newEngine builds the gin engine with the global middleware chain. The
// returned guard, nil unless rate limiting is on, throttles write routes.
func newEngine(cfg *config.Config, tel *telemetry.Telemetry, log *zap.Logger) (*gin.Engine, gin.HandlerFunc) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Request ID first so recovery and access logs carry it.
	engine.Use(middleware.RequestID(), logger.Recovery(log), logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
		Skip:        middleware.ProbePaths(),
	})...)
	if tel.Meter.IsEnabled() {
		engine.Use(middleware.HTTPMetrics(tel.Meter.Meter("http.server")))
	}
	if tel.Profiler.IsEnabled() {
		engine.Use(middleware.Profiling())
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.Secure(), middleware.CORSWithConfig(cors), middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	var writeGuard gin.HandlerFunc
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)))
		writeGuard = middleware.WriteRateLimit(middleware.NewRateLimiter(cfg.HTTP.WriteRateLimitRequests, cfg.HTTP.RateLimitWindow))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Int("write_requests", cfg.HTTP.WriteRateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return engine, writeGuard
}

// serve runs srv until ctx ends, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, log *zap.Logger) error {
	errc := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("Server exited gracefully")
	return nil
}

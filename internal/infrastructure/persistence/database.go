package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/phonestore/backend/internal/infrastructure/config"
	"github.com/phonestore/backend/internal/infrastructure/logger"
	"github.com/phonestore/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database wraps the GORM handle shared by the repositories.
type Database struct {
	DB *gorm.DB
}

type Option func(*options)

type options struct {
	log       *zap.Logger
	level     gormlogger.LogLevel
	slowQuery time.Duration
	tracing   *telemetry.DBTracingPlugin
}

// WithLogger sends GORM statement logs to l at level.
func WithLogger(l *zap.Logger, level gormlogger.LogLevel) Option {
	return func(o *options) { o.log, o.level = l, level }
}

// WithSlowQuery overrides the slow statement threshold. Zero keeps the logger default.
func WithSlowQuery(d time.Duration) Option {
	return func(o *options) { o.slowQuery = d }
}

func WithTracing(plugin *telemetry.DBTracingPlugin) Option {
	return func(o *options) { o.tracing = plugin }
}

func (o *options) gormLogger() gormlogger.Interface {
	if o.log == nil {
		return gormlogger.Default.LogMode(o.level)
	}
	var extra []logger.GormLoggerOption
	if o.slowQuery > 0 {
		extra = append(extra, logger.WithSlowThreshold(o.slowQuery))
	}
	return logger.NewGormLogger(o.log, o.level, extra...)
}

// NewDatabase connects to PostgreSQL, sizes the pool from cfg and verifies
// the connection before returning.
func NewDatabase(cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	db, err := Open(postgres.Open(cfg.DSN()), opts...)
	if err != nil {
		return nil, err
	}
	pool, err := db.SQL()
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	pool.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping postgres %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return db, nil
}

// Open opens GORM on any dialector. Driver errors are translated, so unique
// violations come back as gorm.ErrDuplicatedKey whatever the backend.
func Open(dialector gorm.Dialector, opts ...Option) (*Database, error) {
	o := options{level: gormlogger.Silent}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 o.gormLogger(),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialector.Name(), err)
	}
	if o.tracing != nil {
		if err := o.tracing.Register(db); err != nil {
			return nil, fmt.Errorf("register db tracing: %w", err)
		}
	}
	return &Database{DB: db}, nil
}

// SQL returns the pooled connection under GORM.
func (d *Database) SQL() (*sql.DB, error) {
	pool, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	return pool, nil
}

func (d *Database) Close() error {
	pool, err := d.SQL()
	if err != nil {
		return err
	}
	return pool.Close()
}

// Ping satisfies handler.Pinger for the health endpoint.
func (d *Database) Ping(ctx context.Context) error {
	pool, err := d.SQL()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

// Transaction runs fn in a transaction bound to ctx.
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}

package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQuery is the statement duration above which queries are reported at warn level.
const DefaultSlowQuery = 200 * time.Millisecond

// GormLogger adapts GORM statement tracing to zap.
//
// Statement failures that the repositories translate into domain outcomes
// (missing rows, duplicate serials, rate uniqueness) are logged at debug so
// a rejected sale does not look like a database fault.
type GormLogger struct {
	logger   *zap.Logger
	level    gormlogger.LogLevel
	slow     time.Duration
	expected func(error) bool
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold overrides DefaultSlowQuery. Zero disables slow reporting.
func WithSlowThreshold(d time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slow = d }
}

// WithExpectedErrors replaces the classifier for errors that are part of
// normal control flow.
func WithExpectedErrors(fn func(error) bool) GormLoggerOption {
	return func(l *GormLogger) { l.expected = fn }
}

// NewGormLogger creates a GORM logger writing to the "gorm" child of zapLogger
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	gl := &GormLogger{
		logger:   zapLogger.Named("gorm"),
		level:    level,
		slow:     DefaultSlowQuery,
		expected: isExpectedStatementError,
	}
	for _, opt := range opts {
		opt(gl)
	}
	return gl
}

func isExpectedStatementError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, gorm.ErrDuplicatedKey)
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, min gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.level < min {
		return
	}
	if ce := l.logger.Check(lvl, fmt.Sprintf(msg, data...)); ce != nil {
		ce.Write(traceFields(ctx)...)
	}
}

// Trace implements gormlogger.Interface. It is called once per statement.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	lvl, msg, ok := l.classify(elapsed, err)
	if !ok {
		return
	}

	ce := l.logger.Check(lvl, msg)
	if ce == nil {
		return
	}

	sql, rows := fc()
	fields := append(traceFields(ctx),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	)
	if id := RequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	ce.Write(fields...)
}

// classify picks the zap level and message for a finished statement
func (l *GormLogger) classify(elapsed time.Duration, err error) (zapcore.Level, string, bool) {
	switch {
	case err != nil && l.expected != nil && l.expected(err):
		return zapcore.DebugLevel, "sql statement rejected", l.level >= gormlogger.Info
	case err != nil:
		return zapcore.ErrorLevel, "sql statement failed", l.level >= gormlogger.Error
	case l.slow > 0 && elapsed >= l.slow:
		return zapcore.WarnLevel, "slow sql statement", l.level >= gormlogger.Warn
	default:
		return zapcore.DebugLevel, "sql statement", l.level >= gormlogger.Info
	}
}

// MapGormLogLevel maps the application log level to a GORM log level.
// Only debug surfaces every statement.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

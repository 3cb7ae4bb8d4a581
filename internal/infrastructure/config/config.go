// Package config loads service settings from config.toml and PHS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. PHS_DATABASE_PASSWORD.
const EnvPrefix = "PHS"

// Cache backends for the active-rate cache
const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, or file path
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"` // apply embedded migrations on startup
}

// DSN renders a postgres URL with user and password escaped.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type HTTPConfig struct {
	ReadTimeout            time.Duration `mapstructure:"read_timeout"`
	WriteTimeout           time.Duration `mapstructure:"write_timeout"`
	IdleTimeout            time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes         int           `mapstructure:"max_header_bytes"`
	MaxBodySize            int64         `mapstructure:"max_body_size"`
	RateLimitEnabled       bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests      int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow        time.Duration `mapstructure:"rate_limit_window"`
	WriteRateLimitRequests int           `mapstructure:"write_rate_limit_requests"` // per window, state-changing routes only
	CORSAllowOrigins       []string      `mapstructure:"cors_allow_origins"`
	TrustedProxies         []string      `mapstructure:"trusted_proxies"`
}

// TelemetryConfig covers OTLP export, database tracing and continuous profiling.
type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"` // traces
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
	LogsEnabled       bool          `mapstructure:"logs_enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"`
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"` // defaults to app.name
	Insecure          bool          `mapstructure:"insecure"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`

	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`

	ProfilingEnabled  bool     `mapstructure:"profiling_enabled"`
	PyroscopeAddress  string   `mapstructure:"pyroscope_address"`
	ProfileTypes      []string `mapstructure:"profile_types"`
	SpanProfiles      bool     `mapstructure:"span_profiles"`
	PyroscopeUser     string   `mapstructure:"pyroscope_user"`
	PyroscopePassword string   `mapstructure:"pyroscope_password"`
}

// PricingConfig holds the engine's tunables.
type PricingConfig struct {
	BaseCurrency       string          `mapstructure:"base_currency"`
	SettlementCurrency string          `mapstructure:"settlement_currency"`
	RateSource         string          `mapstructure:"rate_source"`
	ReconcileEpsilon   decimal.Decimal `mapstructure:"reconcile_epsilon"` // exclusive bound on the cent-rounded gap
	FinancingPolicy    string          `mapstructure:"financing_policy"` // strict | weighted
	RateCacheTTL       time.Duration   `mapstructure:"rate_cache_ttl"`
	CacheBackend       string          `mapstructure:"cache_backend"`
}

// defaults lists every key Load understands. AutomaticEnv only reaches keys
// viper already knows, so keys without a meaningful default are listed with
// their zero value.
var defaults = map[string]any{
	"app.name": "phonestore-backend",
	"app.env":  "development",
	"app.port": "8080",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "phonestore",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  time.Hour,
	"database.conn_max_idle_time": 30 * time.Minute,
	"database.auto_migrate":       false,

	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":              15 * time.Second,
	"http.write_timeout":             15 * time.Second,
	"http.idle_timeout":              time.Minute,
	"http.max_header_bytes":          1 << 20,
	"http.max_body_size":             1 << 20,
	"http.rate_limit_enabled":        false,
	"http.rate_limit_requests":       100,
	"http.rate_limit_window":         time.Minute,
	"http.write_rate_limit_requests": 30,
	"http.cors_allow_origins":        []string{},
	"http.trusted_proxies":           []string{},

	"telemetry.enabled":                 false,
	"telemetry.metrics_enabled":         false,
	"telemetry.logs_enabled":            false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "",
	"telemetry.insecure":                false,
	"telemetry.metrics_interval":        time.Minute,
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,
	"telemetry.profiling_enabled":       false,
	"telemetry.pyroscope_address":       "http://localhost:4040",
	"telemetry.profile_types":           []string{},
	"telemetry.span_profiles":           false,
	"telemetry.pyroscope_user":          "",
	"telemetry.pyroscope_password":      "",

	"pricing.base_currency":       "USD",
	"pricing.settlement_currency": "ARS",
	"pricing.rate_source":         "blue",
	"pricing.reconcile_epsilon":   "0.01",
	"pricing.financing_policy":    "strict",
	"pricing.rate_cache_ttl":      5 * time.Minute,
	"pricing.cache_backend":       CacheBackendRedis,
}

// Load reads ./config.toml or /app/config.toml when present.
// PHS_* environment variables win over the file, which wins over defaults.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return decode(v)
}

// LoadFile is Load with an explicit file, which must exist.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		decimalHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalHook parses money tunables from strings or numbers without a float detour for strings.
func decimalHook(from, to reflect.Type, data any) (any, error) {
	if to != decimalType {
		return data, nil
	}
	switch raw := data.(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid decimal %q: %w", raw, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(raw), nil
	case int64:
		return decimal.NewFromInt(raw), nil
	case int:
		return decimal.NewFromInt(int64(raw)), nil
	}
	return data, nil
}

func (c *Config) validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	db := c.Database
	check(db.MaxOpenConns > 0, "database.max_open_conns must be positive")
	check(db.MaxIdleConns >= 0, "database.max_idle_conns cannot be negative")
	check(db.MaxIdleConns <= db.MaxOpenConns,
		"database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)", db.MaxIdleConns, db.MaxOpenConns)

	if c.App.Env == "production" {
		check(db.Password != "", "database.password is required in production")
		check(db.SSLMode != "disable", "database.sslmode cannot be 'disable' in production")
		for _, origin := range c.HTTP.CORSAllowOrigins {
			check(origin != "*", "http.cors_allow_origins cannot be '*' in production")
		}
		check(!c.Telemetry.DBLogFullSQL, "telemetry.db_log_full_sql must be false in production")
	}

	check(c.Telemetry.SamplingRatio >= 0 && c.Telemetry.SamplingRatio <= 1,
		"telemetry.sampling_ratio must be between 0.0 and 1.0, got %g", c.Telemetry.SamplingRatio)

	p := c.Pricing
	check(p.BaseCurrency != p.SettlementCurrency,
		"pricing.base_currency and pricing.settlement_currency must differ, both are %s", p.BaseCurrency)
	check(p.ReconcileEpsilon.IsPositive(), "pricing.reconcile_epsilon must be positive, got %s", p.ReconcileEpsilon)
	check(p.FinancingPolicy == "strict" || p.FinancingPolicy == "weighted",
		"pricing.financing_policy must be strict or weighted, got %q", p.FinancingPolicy)
	check(p.CacheBackend == CacheBackendRedis || p.CacheBackend == CacheBackendMemory,
		"pricing.cache_backend must be redis or memory, got %q", p.CacheBackend)
	check(p.RateCacheTTL >= 0, "pricing.rate_cache_ttl cannot be negative")

	return errors.Join(errs...)
}

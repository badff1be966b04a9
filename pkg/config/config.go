package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App         AppConfig
	HTTP        HTTPConfig
	HAL         HALConfig
	Redis       RedisConfig
	Idempotency IdempotencyConfig
	Metrics     MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.HTTP.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HALCART_APP_ENV" required:"true"`
	Port         string `envconfig:"HALCART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"HALCART_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"HALCART_LOG_FORMAT"`
	LogWarnStack bool   `envconfig:"HALCART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

// ResolvedLogFormat falls back to console output in dev when no format is set.
func (a AppConfig) ResolvedLogFormat() string {
	if a.LogFormat != "" {
		return a.LogFormat
	}
	if a.IsDev() {
		return "console"
	}
	return "json"
}

type HTTPConfig struct {
	CacheMaxAge     time.Duration `envconfig:"HALCART_HTTP_CACHE_MAX_AGE" default:"10s"`
	ReadTimeout     time.Duration `envconfig:"HALCART_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"HALCART_HTTP_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"HALCART_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	MaxBodyBytes    int64         `envconfig:"HALCART_HTTP_MAX_BODY_BYTES" default:"1048576"`
}

// CacheControl renders the directive attached to every successful representation.
func (h HTTPConfig) CacheControl() string {
	return fmt.Sprintf("max-age=%d, must-revalidate, public", int(h.CacheMaxAge/time.Second))
}

func (h HTTPConfig) validate() error {
	if h.CacheMaxAge < 0 {
		return fmt.Errorf("%s must not be negative", EnvCacheMaxAge)
	}
	if h.MaxBodyBytes <= 0 {
		return fmt.Errorf("%s must be positive", EnvMaxBodyBytes)
	}
	return nil
}

type HALConfig struct {
	RelsHref string `envconfig:"HALCART_HAL_RELS_HREF" default:"/public/rels/{rel}"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HALCART_REDIS_URL"`
	Address      string        `envconfig:"HALCART_REDIS_ADDR"`
	Password     string        `envconfig:"HALCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"HALCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HALCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HALCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HALCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HALCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HALCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured at all.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"HALCART_IDEMPOTENCY_TTL" default:"24h"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"HALCART_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"HALCART_METRICS_PATH" default:"/metrics"`
}

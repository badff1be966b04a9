package config

const EnvPrefix = "HALCART"

const AppEnvDev = "dev"

const (
	EnvAppEnv         = "HALCART_APP_ENV"
	EnvLogLevel       = "HALCART_LOG_LEVEL"
	EnvLogFormat      = "HALCART_LOG_FORMAT"
	EnvCacheMaxAge    = "HALCART_HTTP_CACHE_MAX_AGE"
	EnvMaxBodyBytes   = "HALCART_HTTP_MAX_BODY_BYTES"
	EnvHALRelsHref    = "HALCART_HAL_RELS_HREF"
	EnvRedisURL       = "HALCART_REDIS_URL"
	EnvIdempotencyTTL = "HALCART_IDEMPOTENCY_TTL"
	EnvMetricsEnabled = "HALCART_METRICS_ENABLED"
)

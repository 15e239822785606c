package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env string

	DatabaseURL      string
	DatabaseLogLevel string

	UserCacheBackend   string
	UserCacheNamespace string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisDialTimeout   time.Duration
	RedisReadTimeout   time.Duration
	RedisWriteTimeout  time.Duration

	IdentityIDScheme           string
	IdentityPasswordHasher     string
	IdentitySaltLength         int
	IdentityDefaultImageURL    string
	IdentityFederatedProviders []string

	HealthCheckTimeout time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")
	otelDefault := !isLocalLikeEnv(env)

	cfg := &Config{
		Env:                        env,
		DatabaseURL:                os.Getenv("DATABASE_URL"),
		DatabaseLogLevel:           strings.ToLower(getEnv("DATABASE_LOG_LEVEL", "warn")),
		UserCacheBackend:           strings.ToLower(getEnv("USER_CACHE_BACKEND", "redis")),
		UserCacheNamespace:         getEnv("USER_CACHE_NAMESPACE", "_users"),
		RedisAddr:                  getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:              os.Getenv("REDIS_PASSWORD"),
		RedisDB:                    getEnvInt("REDIS_DB", 0),
		IdentityIDScheme:           strings.ToLower(getEnv("IDENTITY_ID_SCHEME", "ulid")),
		IdentityPasswordHasher:     strings.ToLower(getEnv("IDENTITY_PASSWORD_HASHER", "hmac-sha256")),
		IdentitySaltLength:         getEnvInt("IDENTITY_SALT_LENGTH", 64),
		IdentityDefaultImageURL:    getEnv("IDENTITY_DEFAULT_IMAGE_URL", "https://www.gravatar.com/avatar/?d=mp"),
		IdentityFederatedProviders: splitCSV(strings.ToLower(getEnv("IDENTITY_FEDERATED_PROVIDERS", "github,google,weibo,qq"))),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "identity-core"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", otelDefault),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", otelDefault),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", otelDefault),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	durations := []struct {
		key  string
		def  string
		dest *time.Duration
	}{
		{"REDIS_DIAL_TIMEOUT", "5s", &cfg.RedisDialTimeout},
		{"REDIS_READ_TIMEOUT", "3s", &cfg.RedisReadTimeout},
		{"REDIS_WRITE_TIMEOUT", "3s", &cfg.RedisWriteTimeout},
		{"HEALTH_CHECK_TIMEOUT", "1s", &cfg.HealthCheckTimeout},
		{"OTEL_METRICS_EXPORT_INTERVAL", "10s", &cfg.OTELMetricsExportInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dest = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if !isValidLogLevel(c.DatabaseLogLevel) && c.DatabaseLogLevel != "silent" {
		errs = append(errs, "DATABASE_LOG_LEVEL must be one of silent, debug, info, warn, error")
	}
	switch c.UserCacheBackend {
	case "redis":
		if c.RedisAddr == "" {
			errs = append(errs, "REDIS_ADDR is required when USER_CACHE_BACKEND=redis")
		}
	case "memory", "none":
	default:
		errs = append(errs, "USER_CACHE_BACKEND must be one of redis, memory, none")
	}
	if strings.TrimSpace(c.UserCacheNamespace) == "" {
		errs = append(errs, "USER_CACHE_NAMESPACE must not be empty")
	}
	if c.RedisDB < 0 {
		errs = append(errs, "REDIS_DB must be >= 0")
	}
	switch c.IdentityIDScheme {
	case "ulid", "uuidv7":
	default:
		errs = append(errs, "IDENTITY_ID_SCHEME must be one of ulid, uuidv7")
	}
	switch c.IdentityPasswordHasher {
	case "hmac-sha256", "argon2id":
	default:
		errs = append(errs, "IDENTITY_PASSWORD_HASHER must be one of hmac-sha256, argon2id")
	}
	if c.IdentitySaltLength < 16 || c.IdentitySaltLength > 64 {
		errs = append(errs, "IDENTITY_SALT_LENGTH must be between 16 and 64")
	}
	if u, err := url.Parse(c.IdentityDefaultImageURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, "IDENTITY_DEFAULT_IMAGE_URL must be an absolute http(s) URL")
	}
	for _, p := range c.IdentityFederatedProviders {
		if !isFederatedProviderName(p) {
			errs = append(errs, fmt.Sprintf("IDENTITY_FEDERATED_PROVIDERS contains unsupported provider %q", p))
		}
	}
	if c.HealthCheckTimeout <= 0 {
		errs = append(errs, "HEALTH_CHECK_TIMEOUT must be > 0")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if !isLocalLikeEnv(c.Env) && c.UserCacheBackend == "memory" {
		errs = append(errs, "USER_CACHE_BACKEND=memory is only allowed in local environments")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func isFederatedProviderName(v string) bool {
	switch v {
	case "github", "google", "weibo", "qq":
		return true
	default:
		return false
	}
}

func isLocalLikeEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "dev", "local", "test":
		return true
	default:
		return false
	}
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}

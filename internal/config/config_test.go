package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Env:                        "development",
		DatabaseURL:                "postgres://x",
		DatabaseLogLevel:           "warn",
		UserCacheBackend:           "redis",
		UserCacheNamespace:         "_users",
		RedisAddr:                  "localhost:6379",
		IdentityIDScheme:           "ulid",
		IdentityPasswordHasher:     "hmac-sha256",
		IdentitySaltLength:         64,
		IdentityDefaultImageURL:    "https://cdn.example.com/avatar.png",
		IdentityFederatedProviders: []string{"github", "google"},
		HealthCheckTimeout:         time.Second,
		OTELExporterOTLPEndpoint:   "localhost:4317",
		OTELTraceSamplingRatio:     1.0,
		OTELMetricsExportInterval:  10 * time.Second,
		OTELLogLevel:               "info",
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config: %v", err)
	}
}

func TestValidateRejectsBadIdentitySettings(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing database", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL is required"},
		{"unknown cache backend", func(c *Config) { c.UserCacheBackend = "memcached" }, "USER_CACHE_BACKEND"},
		{"redis without addr", func(c *Config) { c.RedisAddr = "" }, "REDIS_ADDR"},
		{"empty namespace", func(c *Config) { c.UserCacheNamespace = " " }, "USER_CACHE_NAMESPACE"},
		{"unknown id scheme", func(c *Config) { c.IdentityIDScheme = "snowflake" }, "IDENTITY_ID_SCHEME"},
		{"unknown hasher", func(c *Config) { c.IdentityPasswordHasher = "md5" }, "IDENTITY_PASSWORD_HASHER"},
		{"salt too short", func(c *Config) { c.IdentitySaltLength = 4 }, "IDENTITY_SALT_LENGTH"},
		{"relative default image", func(c *Config) { c.IdentityDefaultImageURL = "/static/a.png" }, "IDENTITY_DEFAULT_IMAGE_URL"},
		{"local is not federated", func(c *Config) { c.IdentityFederatedProviders = []string{"local"} }, "unsupported provider"},
		{"memory cache in production", func(c *Config) { c.Env = "production"; c.UserCacheBackend = "memory" }, "only allowed in local"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL", "sqlite:file::memory:")
	t.Setenv("USER_CACHE_BACKEND", "memory")
	t.Setenv("IDENTITY_ID_SCHEME", "uuidv7")
	t.Setenv("IDENTITY_FEDERATED_PROVIDERS", "GitHub, qq")
	t.Setenv("REDIS_READ_TIMEOUT", "250ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.IdentityIDScheme != "uuidv7" {
		t.Fatalf("unexpected id scheme %q", cfg.IdentityIDScheme)
	}
	if len(cfg.IdentityFederatedProviders) != 2 || cfg.IdentityFederatedProviders[0] != "github" || cfg.IdentityFederatedProviders[1] != "qq" {
		t.Fatalf("unexpected providers %v", cfg.IdentityFederatedProviders)
	}
	if cfg.RedisReadTimeout != 250*time.Millisecond {
		t.Fatalf("unexpected redis read timeout %v", cfg.RedisReadTimeout)
	}
	if cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled || cfg.OTELLogsEnabled {
		t.Fatal("expected otel exporters disabled by default in test env")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("HEALTH_CHECK_TIMEOUT", "soon")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "HEALTH_CHECK_TIMEOUT") {
		t.Fatalf("expected duration parse error, got %v", err)
	}
}

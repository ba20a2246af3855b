package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/noah-isme/cartsync/internal/cart"
	"github.com/noah-isme/cartsync/internal/common"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv              string
	Port                string
	StoreDriver         string
	DatabaseURL         string
	RedisURL            string
	StorageKey          string
	CartTTL             time.Duration
	ListingPath         string
	CORSAllowedOrigins  []string
	SessionCookieName   string
	SessionCookieTTL    time.Duration
	SessionCookieSecure bool
	RateLimitWindow     time.Duration
	RateLimitMax        int
	BodyLimitBytes      int64
	LockTTL             time.Duration
	LogFormat           string
	LogLevel            string
	MetricsNamespace    string
	MetricsEnabled      bool
	TracingEnabled      bool
	TracingEndpoint     string
	TracingSampling     float64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:              valueOrDefault(k.String("APP_ENV"), "development"),
		Port:                valueOrDefault(k.String("PORT"), "8080"),
		StoreDriver:         strings.ToLower(valueOrDefault(k.String("STORE_DRIVER"), StoreMemory)),
		DatabaseURL:         k.String("DATABASE_URL"),
		RedisURL:            k.String("REDIS_URL"),
		StorageKey:          valueOrDefault(k.String("CART_STORAGE_KEY"), cart.DefaultStorageKey),
		CartTTL:             parseDuration(k.String("CART_TTL"), "720h"),
		ListingPath:         strings.TrimSpace(k.String("LISTING_PATH")),
		CORSAllowedOrigins:  splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		SessionCookieName:   valueOrDefault(k.String("SESSION_COOKIE_NAME"), "cart_session"),
		SessionCookieTTL:    parseDuration(k.String("SESSION_COOKIE_TTL"), "720h"),
		SessionCookieSecure: parseBool(k.String("SESSION_COOKIE_SECURE")),
		RateLimitWindow:     parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
		RateLimitMax:        common.IntOr(k.String("RATE_LIMIT_MAX"), 120),
		BodyLimitBytes:      common.IntOr(k.String("BODY_LIMIT_BYTES"), int64(16<<10)),
		LockTTL:             parseDuration(k.String("LOCK_TTL"), "5s"),
		LogFormat:           valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
		LogLevel:            valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		MetricsNamespace:    valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "cartsync"),
		MetricsEnabled:      parseBoolDefault(k.String("OBS_ENABLE_PROMETHEUS"), true),
		TracingEnabled:      parseBoolDefault(k.String("OBS_ENABLE_TRACING"), false),
		TracingEndpoint:     strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
		TracingSampling:     k.Float64("OBS_TRACING_SAMPLING_RATIO"),
	}

	switch cfg.StoreDriver {
	case StoreMemory:
	case StoreRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("REDIS_URL is required when STORE_DRIVER=redis")
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	return parseBoolDefault(value, false)
}

func parseBoolDefault(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}

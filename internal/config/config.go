package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Catalog drivers.
const (
	CatalogPostgres = "postgres"
	CatalogFixture  = "fixture"
)

// Analytics sinks.
const (
	SinkNone  = "none"
	SinkLog   = "log"
	SinkRedis = "redis"
	SinkKafka = "kafka"
)

// Config holds the marketsearch API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Search    SearchConfig    `yaml:"search"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Redis     RedisConfig     `yaml:"redis"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Sentry    SentryConfig    `yaml:"sentry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. No keys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int             `yaml:"port"`
	ReadTimeoutSec  int             `yaml:"read_timeout_sec"`
	WriteTimeoutSec int             `yaml:"write_timeout_sec"`
	ShutdownSec     int             `yaml:"shutdown_timeout_sec"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig holds per-client token bucket settings. RPS 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// SearchConfig holds query defaults and the per-request deadline.
type SearchConfig struct {
	TimeoutMs          int     `yaml:"timeout_ms"`
	DefaultPageSize    int     `yaml:"default_page_size"`
	DefaultRadiusMiles float64 `yaml:"default_radius_miles"`
}

// Timeout returns the per-request deadline.
func (s SearchConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

// CatalogConfig selects the product catalog backend.
type CatalogConfig struct {
	Driver      string         `yaml:"driver"` // postgres, fixture (default: postgres)
	Postgres    PostgresConfig `yaml:"postgres"`
	FixturePath string         `yaml:"fixture_path"`
}

// PostgresConfig holds catalog database connection settings.
type PostgresConfig struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	User             string `yaml:"user"`
	Password         string `yaml:"password"`
	Database         string `yaml:"database"`
	SSLMode          string `yaml:"ssl_mode"`
	MaxConns         int32  `yaml:"max_conns"`
	MinConns         int32  `yaml:"min_conns"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// RedisConfig holds geo index, favorites and stream connection settings.
// Empty addrs means Redis is not configured.
type RedisConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a Redis server was configured.
func (r RedisConfig) Enabled() bool { return len(r.Addrs) > 0 }

// AnalyticsConfig holds search event delivery settings.
type AnalyticsConfig struct {
	Sink          string      `yaml:"sink"` // none, log, redis, kafka (default: log)
	PoolSize      int         `yaml:"pool_size"`
	SinkTimeoutMs int         `yaml:"sink_timeout_ms"`
	Stream        string      `yaml:"stream"`
	StreamMaxLen  int64       `yaml:"stream_max_len"`
	Kafka         KafkaConfig `yaml:"kafka"`
}

// SinkTimeout returns the deadline for a single sink write.
func (a AnalyticsConfig) SinkTimeout() time.Duration {
	return time.Duration(a.SinkTimeoutMs) * time.Millisecond
}

// KafkaConfig holds Kafka producer settings for the kafka sink.
type KafkaConfig struct {
	Brokers  []string `yaml:"brokers"`
	Topic    string   `yaml:"topic"`
	ClientID string   `yaml:"client_id"`
	Version  string   `yaml:"version"`
}

// SentryConfig holds error reporting settings. Empty DSN disables Sentry.
type SentryConfig struct {
	DSN              string  `yaml:"dsn"`
	Environment      string  `yaml:"environment"`
	TracesSampleRate float64 `yaml:"traces_sample_rate"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config data, expanding ${VAR} references first.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.RateLimit.RPS > 0 && c.HTTP.RateLimit.Burst <= 0 {
		c.HTTP.RateLimit.Burst = int(c.HTTP.RateLimit.RPS) * 2
		if c.HTTP.RateLimit.Burst < 1 {
			c.HTTP.RateLimit.Burst = 1
		}
	}
	if c.Search.TimeoutMs <= 0 {
		c.Search.TimeoutMs = 2000
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 24
	}
	if c.Search.DefaultRadiusMiles <= 0 {
		c.Search.DefaultRadiusMiles = 25
	}
	if c.Catalog.Driver == "" {
		c.Catalog.Driver = CatalogPostgres
	}
	if c.Catalog.Postgres.Port <= 0 {
		c.Catalog.Postgres.Port = 5432
	}
	if c.Catalog.Postgres.ReadinessTimeout <= 0 {
		c.Catalog.Postgres.ReadinessTimeout = 10
	}
	if c.Redis.Driver == "" {
		c.Redis.Driver = "redis"
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "marketsearch:"
	}
	if c.Redis.ReadinessTimeout <= 0 {
		c.Redis.ReadinessTimeout = 10
	}
	if c.Analytics.Sink == "" {
		c.Analytics.Sink = SinkLog
	}
	if c.Analytics.PoolSize <= 0 {
		c.Analytics.PoolSize = 64
	}
	if c.Analytics.SinkTimeoutMs <= 0 {
		c.Analytics.SinkTimeoutMs = 1000
	}
	if c.Analytics.Stream == "" {
		c.Analytics.Stream = "search:events"
	}
	if c.Analytics.StreamMaxLen <= 0 {
		c.Analytics.StreamMaxLen = 100000
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.RateLimit.RPS < 0 {
		return fmt.Errorf("http.rate_limit.rps must not be negative")
	}

	switch c.Catalog.Driver {
	case CatalogPostgres:
		if c.Catalog.Postgres.Host == "" || c.Catalog.Postgres.Database == "" {
			return fmt.Errorf("catalog.postgres.host and catalog.postgres.database are required")
		}
		// Postgres serves products only; vendor locations and favorites live in Redis.
		if !c.Redis.Enabled() {
			return fmt.Errorf("redis.addrs is required with the postgres catalog")
		}
	case CatalogFixture:
		if c.Catalog.FixturePath == "" {
			return fmt.Errorf("catalog.fixture_path is required with the fixture catalog")
		}
	default:
		return fmt.Errorf("catalog.driver must be \"postgres\" or \"fixture\", got %q", c.Catalog.Driver)
	}

	switch c.Redis.Driver {
	case "redis", "valkey":
		// ok
	default:
		return fmt.Errorf("redis.driver must be \"redis\" or \"valkey\", got %q", c.Redis.Driver)
	}

	switch c.Analytics.Sink {
	case SinkNone, SinkLog:
		// ok
	case SinkRedis:
		if !c.Redis.Enabled() {
			return fmt.Errorf("redis.addrs is required with the redis analytics sink")
		}
	case SinkKafka:
		if len(c.Analytics.Kafka.Brokers) == 0 || c.Analytics.Kafka.Topic == "" {
			return fmt.Errorf("analytics.kafka.brokers and analytics.kafka.topic are required")
		}
	default:
		return fmt.Errorf(
			"analytics.sink must be one of none, log, redis, kafka, got %q", c.Analytics.Sink,
		)
	}

	if c.Sentry.TracesSampleRate < 0 || c.Sentry.TracesSampleRate > 1 {
		return fmt.Errorf("sentry.traces_sample_rate must be within [0,1]")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

package config

import (
	"strings"
	"testing"
	"time"
)

func validFixtureConfig() Config {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 8080},
		Catalog: CatalogConfig{Driver: CatalogFixture, FixturePath: "config/fixtures/marketplace.yaml"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validFixtureConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_Fixture(t *testing.T) {
	cfg := validFixtureConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Catalog.FixturePath = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing fixture path")
	}
}

func TestValidate_PostgresRequiresRedis(t *testing.T) {
	cfg := validFixtureConfig()
	cfg.Catalog.Driver = CatalogPostgres
	cfg.Catalog.Postgres.Host = "localhost"
	cfg.Catalog.Postgres.Database = "market"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "redis.addrs") {
		t.Fatalf("expected redis.addrs error, got %v", err)
	}

	cfg.Redis.Addrs = []string{"localhost:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownCatalogDriver(t *testing.T) {
	cfg := validFixtureConfig()
	cfg.Catalog.Driver = "mongo"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	expected := `catalog.driver must be "postgres" or "fixture", got "mongo"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_AnalyticsSinks(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"none", func(c *Config) { c.Analytics.Sink = SinkNone }, false},
		{"log", func(c *Config) { c.Analytics.Sink = SinkLog }, false},
		{"redis without addrs", func(c *Config) { c.Analytics.Sink = SinkRedis }, true},
		{"redis", func(c *Config) {
			c.Analytics.Sink = SinkRedis
			c.Redis.Addrs = []string{"localhost:6379"}
		}, false},
		{"kafka without brokers", func(c *Config) { c.Analytics.Sink = SinkKafka }, true},
		{"kafka", func(c *Config) {
			c.Analytics.Sink = SinkKafka
			c.Analytics.Kafka = KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "search-events"}
		}, false},
		{"unknown", func(c *Config) { c.Analytics.Sink = "s3" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validFixtureConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_RedisDriverAndSentry(t *testing.T) {
	cfg := validFixtureConfig()
	cfg.Redis.Driver = "memcached"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown redis driver")
	}

	cfg = validFixtureConfig()
	cfg.Sentry.TracesSampleRate = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for sample rate > 1")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Search.Timeout() != 2*time.Second {
		t.Errorf("expected search timeout 2s, got %s", cfg.Search.Timeout())
	}
	if cfg.Search.DefaultPageSize != 24 {
		t.Errorf("expected DefaultPageSize=24, got %d", cfg.Search.DefaultPageSize)
	}
	if cfg.Search.DefaultRadiusMiles != 25 {
		t.Errorf("expected DefaultRadiusMiles=25, got %v", cfg.Search.DefaultRadiusMiles)
	}
	if cfg.Catalog.Driver != CatalogPostgres {
		t.Errorf("expected postgres driver, got %q", cfg.Catalog.Driver)
	}
	if cfg.Redis.KeyPrefix != "marketsearch:" {
		t.Errorf("expected KeyPrefix='marketsearch:', got %q", cfg.Redis.KeyPrefix)
	}
	if cfg.Analytics.Sink != SinkLog || cfg.Analytics.PoolSize != 64 {
		t.Errorf("unexpected analytics defaults: %+v", cfg.Analytics)
	}
	if cfg.Analytics.SinkTimeout() != time.Second {
		t.Errorf("expected sink timeout 1s, got %s", cfg.Analytics.SinkTimeout())
	}
	if cfg.HTTP.RateLimit.Burst != 0 {
		t.Errorf("burst should stay 0 when limiting is off, got %d", cfg.HTTP.RateLimit.Burst)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, RateLimit: RateLimitConfig{RPS: 5}},
		Search:    SearchConfig{TimeoutMs: 500, DefaultPageSize: 10},
		Redis:     RedisConfig{KeyPrefix: "custom:"},
		Analytics: AnalyticsConfig{Sink: SinkNone, PoolSize: 8},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.RateLimit.Burst != 10 {
		t.Errorf("expected derived burst 10, got %d", cfg.HTTP.RateLimit.Burst)
	}
	if cfg.Search.Timeout() != 500*time.Millisecond || cfg.Search.DefaultPageSize != 10 {
		t.Errorf("search overridden: %+v", cfg.Search)
	}
	if cfg.Redis.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Redis.KeyPrefix)
	}
	if cfg.Analytics.Sink != SinkNone || cfg.Analytics.PoolSize != 8 {
		t.Errorf("analytics overridden: %+v", cfg.Analytics)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("MS_PORT", "9090")
	data := []byte(`
http:
  port: ${MS_PORT}
catalog:
  driver: fixture
  fixture_path: ${MS_FIXTURE:-config/fixtures/marketplace.yaml}
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Catalog.FixturePath != "config/fixtures/marketplace.yaml" {
		t.Errorf("default not applied: %q", cfg.Catalog.FixturePath)
	}
}

func TestLoad_Local(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load(local): %v", err)
	}
	if cfg.Catalog.Driver != CatalogFixture {
		t.Errorf("local config should default to the fixture catalog, got %q", cfg.Catalog.Driver)
	}
}

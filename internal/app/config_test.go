package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "5000" || cfg.DBDriver != "postgres" || cfg.PhotoStorage != "local" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.JWTExpire != 720*time.Hour || cfg.MaxFileUpload != 1000000 {
		t.Fatalf("unexpected auth/upload defaults: expire=%v max=%d", cfg.JWTExpire, cfg.MaxFileUpload)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins: %v", cfg.CORSAllowedOrigins)
	}
	if got := cfg.Database().DSN(); got != "postgres://postgres:@localhost:5432/devcamper?sslmode=disable" {
		t.Fatalf("dsn: %s", got)
	}
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "mysql")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestConfigOtelHeaders(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-api-key=abc")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := cfg.Otel().Headers["x-api-key"]; got != "abc" {
		t.Fatalf("headers: %v", cfg.Otel().Headers)
	}
}

func TestLoadBaseConfigWithoutSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_HASH_SALT", "pepper")

	base, err := LoadBaseConfig()
	if err != nil {
		t.Fatalf("LoadBaseConfig: %v", err)
	}
	if got := base.Database(); got.Driver != "sqlite" || got.SQLitePath != "devcamper.db" {
		t.Fatalf("database: %+v", got)
	}
	opts := base.Logging()
	if opts.Mode != "development" || opts.Level != "warn" || !opts.Redact || opts.HashSalt != "pepper" {
		t.Fatalf("logging: %+v", opts)
	}
}

func TestMetricsScrapeIntervalDefault(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MetricsEnabled || cfg.MetricsScrapeInterval != 15*time.Second {
		t.Fatalf("metrics: enabled=%v interval=%v", cfg.MetricsEnabled, cfg.MetricsScrapeInterval)
	}
}

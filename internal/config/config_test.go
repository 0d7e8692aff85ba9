package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("http addr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.Redis.TTL != 24*time.Hour {
		t.Errorf("redis ttl = %v, want 24h", cfg.Redis.TTL)
	}
	if cfg.Generation.MinMarginPercent != 20 {
		t.Errorf("min margin = %v, want 20", cfg.Generation.MinMarginPercent)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FREIGHT_DATABASE_DRIVER", "pgx")
	t.Setenv("FREIGHT_DATABASE_DSN", "postgres://localhost/freight")
	t.Setenv("FREIGHT_HTTP_ADDR", ":9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Driver != "pgx" {
		t.Errorf("driver = %q, want pgx", cfg.Database.Driver)
	}
	if cfg.Database.DSN != "postgres://localhost/freight" {
		t.Errorf("dsn = %q", cfg.Database.DSN)
	}
	if cfg.HTTPAddr != ":9000" {
		t.Errorf("http addr = %q, want :9000", cfg.HTTPAddr)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("FREIGHT_DATABASE_DRIVER", "oracle")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

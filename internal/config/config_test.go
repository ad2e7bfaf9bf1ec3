package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.Driver != "sqlite" || !cfg.Board.RollbackOnFailure || !cfg.ConfirmDelete {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Server.SessionTTL != 30*24*time.Hour {
		t.Fatalf("session ttl = %v", cfg.Server.SessionTTL)
	}
	if len(cfg.Billing.Plans) == 0 {
		t.Fatal("default plans missing")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
log_level: DEBUG
database:
  driver: postgres
  dsn: postgres://localhost/ironmeet
board:
  rollback_on_failure: false
storage:
  url_ttl: 15m
billing:
  plans:
    - key: free
      name: Free
    - key: gold
      name: Gold
      monthly_price: 20
      price_id: price_gold
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "DEBUG" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "postgres://localhost/ironmeet" {
		t.Fatalf("database = %+v", cfg.Database)
	}
	if cfg.Board.RollbackOnFailure {
		t.Fatal("rollback should be disabled")
	}
	if cfg.Storage.URLTTL != 15*time.Minute {
		t.Fatalf("url ttl = %v", cfg.Storage.URLTTL)
	}
	if len(cfg.Billing.Plans) != 2 || cfg.Billing.Plans[1].PriceID != "price_gold" {
		t.Fatalf("plans = %+v", cfg.Billing.Plans)
	}
	// Unset keys keep their defaults
	if cfg.Server.Port != "8080" {
		t.Fatalf("port = %q", cfg.Server.Port)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/ironmeet")
	t.Setenv("PORT", "9090")
	t.Setenv("IRONMEET_BOARD_ROLLBACK", "false")
	t.Setenv("IRONMEET_WEBHOOK_SECRET", "whsec")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "postgres://db/ironmeet" {
		t.Fatalf("database = %+v", cfg.Database)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("port = %q", cfg.Server.Port)
	}
	if cfg.Board.RollbackOnFailure {
		t.Fatal("env should disable rollback")
	}
	if cfg.Billing.WebhookSecret != "whsec" {
		t.Fatalf("webhook secret = %q", cfg.Billing.WebhookSecret)
	}
}

func TestSaveFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.LogLevel = "WARN"
	cfg.Editor = "nano"
	if err := cfg.SaveFile(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.LogLevel != "WARN" || loaded.Editor != "nano" {
		t.Fatalf("loaded = %+v", loaded)
	}
}

func TestBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCheckServerRejectsDefaultSecret(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.CheckServer(); !errors.Is(err, ErrInsecureSecret) {
		t.Fatalf("default secret: err = %v, want ErrInsecureSecret", err)
	}

	cfg.Storage.Secret = ""
	if err := cfg.CheckServer(); !errors.Is(err, ErrInsecureSecret) {
		t.Fatalf("empty secret: err = %v, want ErrInsecureSecret", err)
	}

	t.Setenv("IRONMEET_STORAGE_SECRET", "s3cr3t-from-env")
	loaded, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := loaded.CheckServer(); err != nil {
		t.Fatalf("secret from env rejected: %v", err)
	}
}

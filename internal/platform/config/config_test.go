package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Address != ":8080" {
		t.Errorf("expected default address :8080, got %s", cfg.Server.Address)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("unexpected shutdown timeout: %s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Catalog.CardVariant != "podcast-preview" {
		t.Errorf("expected podcast-preview variant, got %s", cfg.Catalog.CardVariant)
	}
	if cfg.Catalog.DatasetFile != "" {
		t.Errorf("expected embedded dataset by default, got %s", cfg.Catalog.DatasetFile)
	}
	if cfg.Dates.Locale != "en-US" || cfg.Dates.TimeZone != "UTC" || cfg.Dates.Prefix != "" {
		t.Errorf("unexpected date defaults: %+v", cfg.Dates)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected info log level, got %s", cfg.Log.Level)
	}
	if cfg.Dev {
		t.Errorf("dev mode should be off by default")
	}
}

func TestLoadHonoursPortFallback(t *testing.T) {
	cfg, err := Load(context.Background(), WithEnvMap(map[string]string{"PORT": "9090"}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Address != ":9090" {
		t.Errorf("expected :9090, got %s", cfg.Server.Address)
	}

	cfg, err = Load(context.Background(), WithEnvMap(map[string]string{
		"PORT":              "9090",
		"CATALOG_HTTP_ADDR": "127.0.0.1:7000",
	}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Address != "127.0.0.1:7000" {
		t.Errorf("explicit address should win, got %s", cfg.Server.Address)
	}
}

func TestLoadReadsDotEnvBelowEnvMap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local overrides\nexport CATALOG_CARD_VARIANT=podcast-card\nCATALOG_DATE_PREFIX=\"Updated: \"\nCATALOG_DEV=on\nCATALOG_READ_TIMEOUT=3s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(context.Background(),
		WithEnvFile(path),
		WithoutSystemEnv(),
		WithEnvMap(map[string]string{"CATALOG_READ_TIMEOUT": "5s"}),
	)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Catalog.CardVariant != "podcast-card" {
		t.Errorf("expected podcast-card from .env, got %s", cfg.Catalog.CardVariant)
	}
	if cfg.Dates.Prefix != "Updated: " {
		t.Errorf("expected quoted prefix to be unwrapped, got %q", cfg.Dates.Prefix)
	}
	if !cfg.Dev {
		t.Errorf("expected dev mode from .env")
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("env map should override .env, got %s", cfg.Server.ReadTimeout)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	_, err := Load(context.Background(), WithEnvMap(map[string]string{
		"CATALOG_CARD_VARIANT":  "podcast-tile",
		"CATALOG_DATE_TIMEZONE": "Mars/Olympus",
	}), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error")
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	fields := validationErr.Fields()
	if len(fields) != 2 || fields[0] != "Catalog.CardVariant" || fields[1] != "Dates.TimeZone" {
		t.Errorf("unexpected invalid fields: %v", fields)
	}
}

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENOVA_URL", "https://api.example.no/")
	t.Setenv("ENOVA_API_KEY", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.GetEnovaURL() != "https://api.example.no" {
		t.Fatalf("expected trailing slash to be trimmed, got %q", cfg.GetEnovaURL())
	}
	if !cfg.IsEnergyDataEnabled() {
		t.Fatal("expected energy data to be enabled")
	}
	if cfg.GetSafeHTTPClientTimeout() != 120*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.GetSafeHTTPClientTimeout())
	}
	if cfg.GetWarmupCron() != "30 3 * * *" {
		t.Fatalf("unexpected cron %q", cfg.GetWarmupCron())
	}
	if !cfg.GetWarmupOnStartup() {
		t.Fatal("expected warm-up on startup by default")
	}
	if cfg.GetCircuitBreakerFailuresBeforeTripping() != 3 {
		t.Fatalf("unexpected breaker threshold %d", cfg.GetCircuitBreakerFailuresBeforeTripping())
	}
	if !cfg.GetCORSAllowAll() {
		t.Fatal("expected wildcard CORS origin to allow all")
	}
}

func TestLoadRequiresAPIKeyWithURL(t *testing.T) {
	t.Setenv("ENOVA_URL", "https://api.example.no")
	t.Setenv("ENOVA_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when API key is missing")
	}
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("SAFE_HTTP_CLIENT_TIMEOUT", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero timeout")
	}
}

func TestEnergyDataDisabledWithoutURL(t *testing.T) {
	t.Setenv("ENOVA_URL", "")
	t.Setenv("ENOVA_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.IsEnergyDataEnabled() {
		t.Fatal("expected energy data to be disabled")
	}
}

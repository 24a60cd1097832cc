package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:5000" {
		t.Fatalf("unexpected API base URL: %q", cfg.API.BaseURL)
	}

	if got := cfg.API.Timeout; got != 30*time.Second {
		t.Fatalf("expected default timeout 30s, got %v", got)
	}

	if cfg.Razorpay.MerchantName != "SkillHub Learning" {
		t.Fatalf("unexpected merchant name %q", cfg.Razorpay.MerchantName)
	}

	if cfg.Session.Backend != SessionBackendFile {
		t.Fatalf("expected file session backend by default, got %q", cfg.Session.Backend)
	}
	if cfg.Session.UsesRedis() || cfg.Session.UsesMemory() {
		t.Fatalf("default backend %q must be neither redis nor memory", cfg.Session.Backend)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAPIBaseURL); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAPIBaseURL, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsUnknownSessionBackend(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvSessionKind, "localstorage")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown session backend to return an error")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "dev")
	t.Setenv(EnvAPIBaseURL, "http://localhost:5000")
	t.Setenv(EnvRazorpayKey, "rzp_test_BQZeGK1Esi5rzS")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.RateLimitMax != 2 {
		t.Errorf("expected default rate limit 2, got %d", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindow != 10*time.Minute {
		t.Errorf("expected default window 10m, got %s", cfg.RateLimitWindow)
	}
	if cfg.EmailProvider != "sendgrid" {
		t.Errorf("expected default email provider sendgrid, got %s", cfg.EmailProvider)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "3")
	t.Setenv("RATE_LIMIT_WINDOW", "15m")
	t.Setenv("SITE_ORIGIN", "https://example.com/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.com, https://b.com,")

	cfg := Load()

	if cfg.RateLimitMax != 3 {
		t.Errorf("expected rate limit 3, got %d", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindow != 15*time.Minute {
		t.Errorf("expected window 15m, got %s", cfg.RateLimitWindow)
	}
	if cfg.SiteOrigin != "https://example.com" {
		t.Errorf("expected trailing slash stripped, got %s", cfg.SiteOrigin)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestPersistenceConfigured(t *testing.T) {
	cfg := &Config{}
	if cfg.PersistenceConfigured() {
		t.Error("empty config should not report persistence configured")
	}

	cfg = &Config{DataAPIURL: "https://db.example.com", DataAPIServiceKey: "key"}
	if !cfg.PersistenceConfigured() {
		t.Error("data API config should count as persistence")
	}

	cfg = &Config{DatabaseURL: "postgres://localhost/site"}
	if !cfg.PersistenceConfigured() {
		t.Error("database URL should count as persistence")
	}

	cfg = &Config{DataAPIURL: "https://db.example.com"}
	if cfg.PersistenceConfigured() {
		t.Error("data API URL without service key is not usable")
	}
}

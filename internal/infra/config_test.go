package infra

import (
	"testing"
	"time"
)

func TestLoadConfigRequiresOwnerIdentity(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("OWNER_IDENTITY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when OWNER_IDENTITY is missing")
	}
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("OWNER_IDENTITY", "owner-1")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("OWNER_IDENTITY", "owner-1")
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("DatabaseURL = %q, want empty (archive disabled)", cfg.DatabaseURL)
	}
	if cfg.HTTPReadTimeout != 15*time.Second {
		t.Fatalf("HTTPReadTimeout = %v", cfg.HTTPReadTimeout)
	}
	if cfg.EventBuffer != 256 {
		t.Fatalf("EventBuffer = %d", cfg.EventBuffer)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("OWNER_IDENTITY", "owner-1")
	t.Setenv("PORT", "1919")
	t.Setenv("HTTP_READ_TIMEOUT_SECONDS", "5")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "1919" {
		t.Fatalf("Port = %q, want 1919", cfg.Port)
	}
	if cfg.HTTPReadTimeout != 5*time.Second {
		t.Fatalf("HTTPReadTimeout = %v", cfg.HTTPReadTimeout)
	}
	if cfg.RateLimitPerMin != 60 {
		t.Fatalf("malformed int must fall back to default, got %d", cfg.RateLimitPerMin)
	}
}

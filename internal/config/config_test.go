package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("DATABASE_URL", "postgres://localhost:5432/medease_test")
	t.Cleanup(func() { os.Unsetenv("DATABASE_URL") })
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "3001" {
		t.Errorf("expected default port 3001, got %s", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Error("expected default env to be development")
	}
	if cfg.DBMaxConns != 20 {
		t.Errorf("expected default max conns 20, got %d", cfg.DBMaxConns)
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}
}

func TestLoad_RequiresJWTSecretInProduction(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("ENV", "production")
	t.Cleanup(func() { os.Unsetenv("ENV") })

	if _, err := Load(); err == nil {
		t.Error("expected error when JWT_SECRET is missing in production")
	}
}

func TestTokenDuration(t *testing.T) {
	cfg := &Config{TokenTTL: "24h"}
	if got := cfg.TokenDuration(); got != 24*time.Hour {
		t.Errorf("expected 24h, got %s", got)
	}

	cfg = &Config{TokenTTL: "garbage"}
	if got := cfg.TokenDuration(); got != 168*time.Hour {
		t.Errorf("expected 168h fallback, got %s", got)
	}
}

// ABOUTME: Tests for configuration loading, env expansion, and validation
// ABOUTME: Exercises defaults, YAML overrides, and every validation rule

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shopd.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.Server.HTTPAddr)
	}
	if cfg.Store.Backend != BackendFile {
		t.Errorf("Backend = %q, want %q", cfg.Store.Backend, BackendFile)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("TokenTTL = %s, want 1h", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Errorf("BcryptCost = %d, want 10", cfg.Auth.BcryptCost)
	}
}

func TestLoad_OverridesAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: ":9090"
store:
  backend: sqlite
  path: data/shop.db
auth:
  jwt_secret: test-secret
  token_ttl: 12h
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want :9090", cfg.Server.HTTPAddr)
	}
	if cfg.Store.Backend != BackendSQLite {
		t.Errorf("Backend = %q, want sqlite", cfg.Store.Backend)
	}
	if cfg.Auth.TokenTTL != 12*time.Hour {
		t.Errorf("TokenTTL = %s, want 12h", cfg.Auth.TokenTTL)
	}
	// Unset fields keep their defaults
	if cfg.Auth.BcryptCost != 10 {
		t.Errorf("BcryptCost = %d, want default 10", cfg.Auth.BcryptCost)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %q, want default info", cfg.Logging.Level)
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("SHOP_TEST_SECRET", "from-environment")

	path := writeConfig(t, `
auth:
  jwt_secret: ${SHOP_TEST_SECRET}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.JWTSecret != "from-environment" {
		t.Errorf("JWTSecret = %q, want from-environment", cfg.Auth.JWTSecret)
	}
}

func TestLoad_UnsetEnvVarFailsValidation(t *testing.T) {
	// ${SHOP_TEST_UNSET} expands to empty, so the required-secret rule trips.
	path := writeConfig(t, `
auth:
  jwt_secret: ${SHOP_TEST_UNSET}
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for empty expanded secret")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_BadTTL(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: test-secret
  token_ttl: not-a-duration
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unparsable token_ttl")
	}
	if !strings.Contains(err.Error(), "token_ttl") {
		t.Errorf("error %q should mention token_ttl", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Auth.JWTSecret = "test-secret"
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.HTTPAddr = "" }},
		{"unknown backend", func(c *Config) { c.Store.Backend = "postgres" }},
		{"empty store path", func(c *Config) { c.Store.Path = "" }},
		{"empty secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"ttl too short", func(c *Config) { c.Auth.TokenTTL = 30 * time.Minute }},
		{"ttl too long", func(c *Config) { c.Auth.TokenTTL = 48 * time.Hour }},
		{"bcrypt cost too low", func(c *Config) { c.Auth.BcryptCost = 3 }},
		{"bcrypt cost too high", func(c *Config) { c.Auth.BcryptCost = 32 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

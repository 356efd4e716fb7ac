package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("RECIPE_API_KEY", "test-key")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.EnvVars.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.EnvVars.Port)
	}
	if cfg.EnvVars.NetworkWorkers != 3 {
		t.Errorf("NetworkWorkers = %d, want 3", cfg.EnvVars.NetworkWorkers)
	}
	if cfg.NetworkTimeout() != 3*time.Second {
		t.Errorf("NetworkTimeout() = %v, want 3s", cfg.NetworkTimeout())
	}
	if cfg.EnvVars.DropStaleResults {
		t.Error("DropStaleResults should default to false")
	}
	if err := cfg.CheckConfigEnvFields(); err != nil {
		t.Errorf("CheckConfigEnvFields() error: %v", err)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("RECIPE_API_KEY", "test-key")
	t.Setenv("NETWORK_TIMEOUT_MS", "250")
	t.Setenv("DROP_STALE_RESULTS", "true")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000,https://saltybytes.ai")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.NetworkTimeout() != 250*time.Millisecond {
		t.Errorf("NetworkTimeout() = %v, want 250ms", cfg.NetworkTimeout())
	}
	if !cfg.EnvVars.DropStaleResults {
		t.Error("DropStaleResults should be true")
	}
	if len(cfg.EnvVars.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v, want 2 entries", cfg.EnvVars.AllowedOrigins)
	}
}

func TestCheckConfigEnvFields_MissingAPIKey(t *testing.T) {
	cfg := &Config{EnvVars: EnvVars{
		Port:             "8080",
		RecipeAPIBaseURL: "http://localhost",
		NetworkTimeoutMs: 3000,
		NetworkWorkers:   3,
	}}
	if err := cfg.CheckConfigEnvFields(); err == nil {
		t.Error("CheckConfigEnvFields() should fail without RecipeAPIKey")
	}
}

func TestCheckConfigEnvFields_NonPositiveTimeout(t *testing.T) {
	cfg := &Config{EnvVars: EnvVars{
		Port:             "8080",
		RecipeAPIBaseURL: "http://localhost",
		RecipeAPIKey:     "key",
		NetworkTimeoutMs: -5,
		NetworkWorkers:   3,
	}}
	if err := cfg.CheckConfigEnvFields(); err == nil {
		t.Error("CheckConfigEnvFields() should reject a negative timeout")
	}
}

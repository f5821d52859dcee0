package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.OTLPPort != 4318 {
		t.Errorf("Expected default OTLP port 4318, got %d", cfg.OTLPPort)
	}
	if cfg.MaxRequestSize != 10*1024*1024 {
		t.Errorf("Expected default max request size 10MiB, got %d", cfg.MaxRequestSize)
	}
	if cfg.SessionTimeout != time.Hour {
		t.Errorf("Expected default session timeout 1h, got %s", cfg.SessionTimeout)
	}
	if cfg.LangfuseHost != "https://cloud.langfuse.com" {
		t.Errorf("Unexpected default Langfuse host: %s", cfg.LangfuseHost)
	}
	if cfg.APIKey != "" {
		t.Errorf("Expected API key to default to empty, got %q", cfg.APIKey)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("OTLP_RECEIVER_PORT", "14318")
	t.Setenv("SESSION_TIMEOUT", "60000")
	t.Setenv("MAX_REQUEST_SIZE", "1048576")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LANGFUSE_PUBLIC_KEY", "pk-test")
	t.Setenv("LANGFUSE_SECRET_KEY", "sk-test")
	t.Setenv("API_KEY", "bearer-token")

	cfg := Load()

	if cfg.OTLPPort != 14318 {
		t.Errorf("Expected port 14318, got %d", cfg.OTLPPort)
	}
	if cfg.SessionTimeout != time.Minute {
		t.Errorf("Expected session timeout 1m, got %s", cfg.SessionTimeout)
	}
	if cfg.MaxRequestSize != 1048576 {
		t.Errorf("Expected max request size 1MiB, got %d", cfg.MaxRequestSize)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.LogLevel)
	}
	if cfg.LangfusePublicKey != "pk-test" || cfg.LangfuseSecretKey != "sk-test" {
		t.Error("Langfuse credentials not loaded from environment")
	}
	if cfg.APIKey != "bearer-token" {
		t.Errorf("Expected API key from environment, got %q", cfg.APIKey)
	}
}

func TestInvalidNumericEnvFallsBack(t *testing.T) {
	t.Setenv("OTLP_RECEIVER_PORT", "not-a-port")
	t.Setenv("SESSION_TIMEOUT", "soon")

	cfg := Load()

	if cfg.OTLPPort != 4318 {
		t.Errorf("Expected fallback port 4318, got %d", cfg.OTLPPort)
	}
	if cfg.SessionTimeout != time.Hour {
		t.Errorf("Expected fallback timeout 1h, got %s", cfg.SessionTimeout)
	}
}

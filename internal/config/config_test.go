package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"API_PORT", "LOG_LEVEL",
		"VLM_API_KEY", "VLM_BASE_URL", "VLM_MODEL", "VLM_TEMPERATURE", "VLM_TIMEOUT",
		"MAX_BATCH_SIZE", "MAX_FILE_SIZE_BYTES", "ALLOWED_EXTENSIONS",
		"MAX_RETRIES", "RETRY_DELAY", "BREAKER_ENABLED",
		"API_RATE_LIMIT_RPS", "API_RATE_LIMIT_BURST", "API_MAX_CONCURRENT",
		"SEPARATE_SHEETS",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.APIPort != "8080" {
		t.Fatalf("APIPort: got %q", cfg.APIPort)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel: got %q", cfg.LogLevel)
	}
	if cfg.VLMModel != "gpt-4o-mini" {
		t.Fatalf("VLMModel: got %q", cfg.VLMModel)
	}
	if cfg.VLMTimeout != 60*time.Second {
		t.Fatalf("VLMTimeout: got %v", cfg.VLMTimeout)
	}
	if cfg.MaxBatchSize != 100 {
		t.Fatalf("MaxBatchSize: got %d", cfg.MaxBatchSize)
	}
	if cfg.MaxFileSizeBytes != 20*1024*1024 {
		t.Fatalf("MaxFileSizeBytes: got %d", cfg.MaxFileSizeBytes)
	}
	want := []string{"jpg", "jpeg", "png", "webp"}
	if len(cfg.AllowedExtensions) != len(want) {
		t.Fatalf("AllowedExtensions: got %v", cfg.AllowedExtensions)
	}
	for i, ext := range want {
		if cfg.AllowedExtensions[i] != ext {
			t.Fatalf("AllowedExtensions[%d]: got %q want %q", i, cfg.AllowedExtensions[i], ext)
		}
	}
	if cfg.MaxRetries != 3 || cfg.RetryDelay != time.Second {
		t.Fatalf("retry defaults: %d %v", cfg.MaxRetries, cfg.RetryDelay)
	}
	if cfg.BreakerEnabled || cfg.SeparateSheets {
		t.Fatal("boolean toggles must default to false")
	}
	if cfg.APIRateLimitRPS != 10 || cfg.APIRateLimitBurst != 20 || cfg.APIMaxConcurrent != 4 {
		t.Fatalf("traffic defaults: %v %d %d", cfg.APIRateLimitRPS, cfg.APIRateLimitBurst, cfg.APIMaxConcurrent)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("VLM_MODEL", "qwen2.5-vl")
	t.Setenv("VLM_TIMEOUT", "90s")
	t.Setenv("MAX_BATCH_SIZE", "25")
	t.Setenv("ALLOWED_EXTENSIONS", " PNG, jpg ,,webp ")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("RETRY_DELAY", "500ms")
	t.Setenv("BREAKER_ENABLED", "true")
	t.Setenv("SEPARATE_SHEETS", "1")

	cfg := Load()
	if cfg.APIPort != "9090" {
		t.Fatalf("APIPort: got %q", cfg.APIPort)
	}
	if cfg.VLMModel != "qwen2.5-vl" {
		t.Fatalf("VLMModel: got %q", cfg.VLMModel)
	}
	if cfg.VLMTimeout != 90*time.Second {
		t.Fatalf("VLMTimeout: got %v", cfg.VLMTimeout)
	}
	if cfg.MaxBatchSize != 25 {
		t.Fatalf("MaxBatchSize: got %d", cfg.MaxBatchSize)
	}
	want := []string{"png", "jpg", "webp"}
	if len(cfg.AllowedExtensions) != len(want) {
		t.Fatalf("AllowedExtensions: got %v", cfg.AllowedExtensions)
	}
	for i, ext := range want {
		if cfg.AllowedExtensions[i] != ext {
			t.Fatalf("AllowedExtensions[%d]: got %q want %q", i, cfg.AllowedExtensions[i], ext)
		}
	}
	if cfg.MaxRetries != 5 || cfg.RetryDelay != 500*time.Millisecond {
		t.Fatalf("retry overrides: %d %v", cfg.MaxRetries, cfg.RetryDelay)
	}
	if !cfg.BreakerEnabled || !cfg.SeparateSheets {
		t.Fatal("boolean overrides not applied")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_BATCH_SIZE", "lots")
	t.Setenv("VLM_TIMEOUT", "soon")
	t.Setenv("BREAKER_ENABLED", "maybe")

	cfg := Load()
	if cfg.MaxBatchSize != 100 {
		t.Fatalf("malformed int must fall back, got %d", cfg.MaxBatchSize)
	}
	if cfg.VLMTimeout != 60*time.Second {
		t.Fatalf("malformed duration must fall back, got %v", cfg.VLMTimeout)
	}
	if cfg.BreakerEnabled {
		t.Fatal("malformed bool must fall back")
	}
}

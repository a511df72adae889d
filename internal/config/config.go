package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	APIPort  string
	LogLevel string

	VLMAPIKey      string
	VLMBaseURL     string
	VLMModel       string
	VLMTemperature float64
	VLMTimeout     time.Duration

	MaxBatchSize      int
	MaxFileSizeBytes  int64
	AllowedExtensions []string

	MaxRetries     int
	RetryDelay     time.Duration
	BreakerEnabled bool

	APIRateLimitRPS   float64
	APIRateLimitBurst int
	APIMaxConcurrent  int

	SeparateSheets bool
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		VLMAPIKey:      mustEnv("VLM_API_KEY", ""),
		VLMBaseURL:     mustEnv("VLM_BASE_URL", ""),
		VLMModel:       mustEnv("VLM_MODEL", "gpt-4o-mini"),
		VLMTemperature: mustEnvFloat("VLM_TEMPERATURE", 0.0),
		VLMTimeout:     mustEnvDuration("VLM_TIMEOUT", 60*time.Second),

		MaxBatchSize:      mustEnvInt("MAX_BATCH_SIZE", 100),
		MaxFileSizeBytes:  mustEnvInt64("MAX_FILE_SIZE_BYTES", 20*1024*1024),
		AllowedExtensions: mustEnvList("ALLOWED_EXTENSIONS", "jpg,jpeg,png,webp"),

		MaxRetries:     mustEnvInt("MAX_RETRIES", 3),
		RetryDelay:     mustEnvDuration("RETRY_DELAY", time.Second),
		BreakerEnabled: mustEnvBool("BREAKER_ENABLED", false),

		APIRateLimitRPS:   mustEnvFloat("API_RATE_LIMIT_RPS", 10),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 20),
		APIMaxConcurrent:  mustEnvInt("API_MAX_CONCURRENT", 4),

		SeparateSheets: mustEnvBool("SEPARATE_SHEETS", false),
	}
}

func mustEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func mustEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvList(key, fallback string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		value = fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

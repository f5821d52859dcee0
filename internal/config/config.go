package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// OTLP receiver
	OTLPPort       int
	MaxRequestSize int64

	// Logging
	LogLevel string

	// Session lifecycle
	SessionTimeout time.Duration

	// Langfuse backend credentials
	LangfuseHost      string
	LangfusePublicKey string
	LangfuseSecretKey string

	// Optional ingress bearer token; empty disables auth
	APIKey string
}

func Load() *Config {
	return &Config{
		OTLPPort:          getEnvInt("OTLP_RECEIVER_PORT", 4318),
		MaxRequestSize:    getEnvInt64("MAX_REQUEST_SIZE", 10*1024*1024),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		SessionTimeout:    getEnvMillis("SESSION_TIMEOUT", 3600000),
		LangfuseHost:      getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfusePublicKey: getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey: getEnv("LANGFUSE_SECRET_KEY", ""),
		APIKey:            getEnv("API_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvMillis reads a millisecond value and returns it as a duration
func getEnvMillis(key string, defaultMillis int64) time.Duration {
	return time.Duration(getEnvInt64(key, defaultMillis)) * time.Millisecond
}

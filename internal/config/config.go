package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// LLM providers. Gemini is the primary completion provider; Bedrock is
	// an optional fallback used when Gemini errors.
	GeminiAPIKey    string
	GeminiModelID   string
	BedrockModelID  string
	BedrockFallback bool
	AWSRegion       string
	AWSAccessKeyID  string
	AWSSecretKey    string
	LLMMaxTokens    int
	LLMTemperature  float64
	RecentExchanges int

	// Booking policy
	BookingHorizonDays int
	OpeningHour        int
	ClosingHour        int

	// Persistence
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration

	// HTTP surface
	CORSAllowedOrigins []string
	ChatRatePerSecond  float64
	ChatBurst          int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:   getEnv("GEMINI_MODEL_ID", "gemini-2.0-flash"),
		BedrockModelID:  getEnv("BEDROCK_MODEL_ID", ""),
		BedrockFallback: getEnvAsBool("BEDROCK_FALLBACK", false),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:  getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
		LLMMaxTokens:    getEnvAsInt("LLM_MAX_TOKENS", 1024),
		LLMTemperature:  getEnvAsFloat("LLM_TEMPERATURE", 0.4),
		RecentExchanges: getEnvAsInt("RECENT_EXCHANGES", 10),

		BookingHorizonDays: getEnvAsInt("BOOKING_HORIZON_DAYS", 90),
		OpeningHour:        getEnvAsInt("OPENING_HOUR", 9),
		ClosingHour:        getEnvAsInt("CLOSING_HOUR", 17),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 24*time.Hour),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
		ChatRatePerSecond:  getEnvAsFloat("CHAT_RATE_PER_SECOND", 5),
		ChatBurst:          getEnvAsInt("CHAT_BURST", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

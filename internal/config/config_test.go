package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.GeminiModelID != "gemini-2.0-flash" {
		t.Errorf("GeminiModelID = %q", cfg.GeminiModelID)
	}
	if cfg.BookingHorizonDays != 90 {
		t.Errorf("BookingHorizonDays = %d, want 90", cfg.BookingHorizonDays)
	}
	if cfg.OpeningHour != 9 || cfg.ClosingHour != 17 {
		t.Errorf("business hours = [%d, %d), want [9, 17)", cfg.OpeningHour, cfg.ClosingHour)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOOKING_HORIZON_DAYS", "30")
	t.Setenv("LLM_TEMPERATURE", "0.9")
	t.Setenv("BEDROCK_FALLBACK", "true")
	t.Setenv("SESSION_TTL", "1h")

	cfg := Load()

	if cfg.BookingHorizonDays != 30 {
		t.Errorf("BookingHorizonDays = %d, want 30", cfg.BookingHorizonDays)
	}
	if cfg.LLMTemperature != 0.9 {
		t.Errorf("LLMTemperature = %v, want 0.9", cfg.LLMTemperature)
	}
	if !cfg.BedrockFallback {
		t.Error("BedrockFallback = false, want true")
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %v, want 1h", cfg.SessionTTL)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("BOOKING_HORIZON_DAYS", "not-a-number")
	t.Setenv("SESSION_TTL", "soon")

	cfg := Load()

	if cfg.BookingHorizonDays != 90 {
		t.Errorf("BookingHorizonDays = %d, want default 90", cfg.BookingHorizonDays)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want default 24h", cfg.SessionTTL)
	}
}

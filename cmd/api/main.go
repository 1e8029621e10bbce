package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/glowdesk/receptionist/cmd/mainconfig"
	"github.com/glowdesk/receptionist/internal/api/router"
	"github.com/glowdesk/receptionist/internal/appointments"
	"github.com/glowdesk/receptionist/internal/assistant"
	appconfig "github.com/glowdesk/receptionist/internal/config"
	"github.com/glowdesk/receptionist/internal/http/handlers"
	"github.com/glowdesk/receptionist/internal/llm"
	"github.com/glowdesk/receptionist/internal/observability/metrics"
	"github.com/glowdesk/receptionist/pkg/logging"
)

func main() {
	// .env is optional; environment variables win.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	if cfg.Env == "development" {
		logger = logging.NewText(cfg.LogLevel)
	}
	logger.Info("starting receptionist API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	registry := prometheus.NewRegistry()
	engineMetrics := metrics.NewEngineMetrics(registry)

	gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
	if err != nil {
		logger.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	defer func() { _ = gemini.Close() }()

	var model llm.Client = gemini
	if cfg.BedrockFallback && cfg.BedrockModelID != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		bedrock := llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID)
		model = llm.NewFallbackClient(gemini, bedrock, logger.Logger, engineMetrics.ObserveLLMFallback)
		logger.Info("bedrock fallback enabled", "model_id", cfg.BedrockModelID)
	}

	var sessions *assistant.SessionStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer func() { _ = redisClient.Close() }()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		sessions = assistant.NewSessionStore(redisClient, cfg.SessionTTL)
		logger.Info("session store enabled", "addr", cfg.RedisAddr)
	}

	var store appointments.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create postgres pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("postgres unreachable", "error", err)
			os.Exit(1)
		}
		store = appointments.NewPostgresStore(pool)
		logger.Info("appointments store enabled")
	}

	engine := assistant.NewEngine(model, sessions, engineMetrics, logger, assistant.EngineOptions{
		RecentExchanges:    cfg.RecentExchanges,
		BookingHorizonDays: cfg.BookingHorizonDays,
		OpeningHour:        cfg.OpeningHour,
		ClosingHour:        cfg.ClosingHour,
		MaxTokens:          int32(cfg.LLMMaxTokens),
		Temperature:        float32(cfg.LLMTemperature),
	})

	r := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        handlers.NewChatHandler(engine, store, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ChatRatePerSecond:  cfg.ChatRatePerSecond,
		ChatBurst:          cfg.ChatBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/nadine-ai/resubmission-copilot/internal/api/router"
	appconfig "github.com/nadine-ai/resubmission-copilot/internal/config"
	"github.com/nadine-ai/resubmission-copilot/internal/conversation"
	"github.com/nadine-ai/resubmission-copilot/internal/observability/metrics"
	"github.com/nadine-ai/resubmission-copilot/internal/policy"
	"github.com/nadine-ai/resubmission-copilot/internal/sfda"
	"github.com/nadine-ai/resubmission-copilot/internal/visits"
	"github.com/nadine-ai/resubmission-copilot/pkg/logging"
)

func main() {
	// Load .env if present; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting resubmission-copilot API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Policy document store (PostgreSQL).
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	policyDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open policy database", "error", err)
		os.Exit(1)
	}
	defer policyDB.Close()
	policyStore := policy.NewPostgresStore(policyDB)
	if err := policyStore.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure policy schema", "error", err)
		os.Exit(1)
	}

	// Claims replica (SQL Server).
	if cfg.VisitsDSN == "" {
		logger.Error("VISITS_DSN is required")
		os.Exit(1)
	}
	visitsDB, err := visits.Open(cfg.VisitsDSN)
	if err != nil {
		logger.Error("failed to open claims replica", "error", err)
		os.Exit(1)
	}
	defer visitsDB.Close()
	source := visits.NewSQLSource(visitsDB, logger, cfg.VisitRetryDelay)

	// Thread store (Redis).
	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable at startup, threads will fail until it recovers", "error", err)
	}
	threadStore := conversation.NewRedisThreadStore(redisClient, cfg.ThreadTTL, nil)

	// SFDA drug list. Optional: without it, drug-code rejections always
	// report the code as missing.
	var registry *sfda.Registry
	if cfg.SFDACSVPath != "" {
		registry, err = sfda.LoadFile(cfg.SFDACSVPath)
		if err != nil {
			logger.Error("failed to load SFDA drug list", "path", cfg.SFDACSVPath, "error", err)
			os.Exit(1)
		}
		logger.Info("SFDA drug list loaded", "entries", registry.Len())
	} else {
		logger.Warn("SFDA_CSV_PATH not set, drug code lookups disabled")
	}

	llm, modelID, err := buildLLMClient(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to configure LLM provider", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	copilotMetrics := metrics.NewCopilotMetrics(reg)

	manager := conversation.NewManager(threadStore, llm, logger, conversation.ManagerConfig{
		Model:       modelID,
		MaxTokens:   int32(cfg.LLMMaxTokens),
		Temperature: float32(cfg.LLMTemperature),
		Window:      cfg.MessageWindow,
	})
	resolver := policy.NewResolver(policyStore, logger)
	copilot := conversation.NewCopilot(source, resolver, manager, registry, copilotMetrics, logger)
	handler := conversation.NewHandler(copilot, source, policyStore, logger)

	r := router.New(&router.Config{
		Logger:         logger,
		CopilotHandler: handler,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // generation turns are slow
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

// buildLLMClient assembles the text-generation client from configuration.
// "auto" prefers Bedrock with Gemini as fallback when both are configured.
func buildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (conversation.LLMClient, string, error) {
	var bedrock *conversation.BedrockLLMClient
	if cfg.BedrockModelID != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, "", err
		}
		bedrock = conversation.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
	}

	var gemini *conversation.GeminiLLMClient
	if cfg.GeminiAPIKey != "" {
		g, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, "", err
		}
		gemini = g
	}

	switch cfg.LLMProvider {
	case "bedrock":
		if bedrock == nil {
			return nil, "", errMissingProvider("bedrock", "BEDROCK_MODEL_ID")
		}
		return bedrock, cfg.BedrockModelID, nil
	case "gemini":
		if gemini == nil {
			return nil, "", errMissingProvider("gemini", "GEMINI_API_KEY")
		}
		return gemini, cfg.GeminiModelID, nil
	default: // auto
		switch {
		case bedrock != nil && gemini != nil:
			logger.Info("using bedrock with gemini fallback")
			return conversation.NewFallbackLLMClient(bedrock, gemini, logger), cfg.BedrockModelID, nil
		case bedrock != nil:
			return bedrock, cfg.BedrockModelID, nil
		case gemini != nil:
			return gemini, cfg.GeminiModelID, nil
		default:
			return nil, "", errMissingProvider("any", "BEDROCK_MODEL_ID or GEMINI_API_KEY")
		}
	}
}

func errMissingProvider(provider, envVar string) error {
	return fmt.Errorf("provider %s selected but %s is not set", provider, envVar)
}

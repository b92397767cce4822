package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/corvohq/helpdesk-ai/internal/api/router"
	"github.com/corvohq/helpdesk-ai/internal/chat"
	appconfig "github.com/corvohq/helpdesk-ai/internal/config"
	"github.com/corvohq/helpdesk-ai/internal/customer"
	"github.com/corvohq/helpdesk-ai/internal/identity"
	"github.com/corvohq/helpdesk-ai/internal/notify"
	"github.com/corvohq/helpdesk-ai/internal/observability/metrics"
	"github.com/corvohq/helpdesk-ai/internal/tenant"
	"github.com/corvohq/helpdesk-ai/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting helpdesk-ai API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Initialize repositories
	var (
		domains    tenant.Repository
		customers  customer.Repository
		transcript chat.TranscriptStore
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		domains = tenant.NewPostgresRepository(pool)
		customers = customer.NewPostgresRepository(pool)
		transcript = chat.NewPostgresTranscriptStore(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
		domains = tenant.NewInMemoryRepository()
		customers = customer.NewInMemoryRepository()
		transcript = chat.NewInMemoryTranscriptStore()
	}

	// Optional redis mirror for the widget history endpoint
	if cfg.RedisAddr != "" {
		redisOpts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(redisOpts)
		transcript = chat.NewCachedTranscriptStore(transcript, redisClient,
			cfg.TranscriptCacheTTL, cfg.TranscriptCacheMax, logger)
	}

	// Generative model client
	llm, err := chat.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
	if err != nil {
		logger.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	defer func() { _ = llm.Close() }()

	// Owner contact lookup + handoff notifications
	var contacts chat.ContactResolver
	if cfg.IdentityBaseURL != "" {
		contacts = identity.NewClient(cfg.IdentityBaseURL, cfg.IdentityAPIKey,
			identity.WithLogger(logger))
	}

	var emailSender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		emailSender = sg
	} else {
		emailSender = notify.NewStubEmailSender(logger)
	}
	notifier := notify.NewService(emailSender, logger)

	chatMetrics := metrics.NewChatMetrics(nil)

	svc := chat.NewService(chat.ServiceConfig{
		Domains:    domains,
		Customers:  customers,
		Transcript: transcript,
		LLM:        llm,
		Prompts:    chat.NewPromptBuilder(cfg.PortalBaseURL),
		Contacts:   contacts,
		Notifier:   notifier,
		Metrics:    chatMetrics,
		Logger:     logger,
	})

	// Setup router
	r := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        chat.NewHandler(svc, logger),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/whatsapp-booking-assistant/internal/api/router"
	"github.com/wolfman30/whatsapp-booking-assistant/internal/app/bootstrap"
	"github.com/wolfman30/whatsapp-booking-assistant/internal/bookings"
	appconfig "github.com/wolfman30/whatsapp-booking-assistant/internal/config"
	"github.com/wolfman30/whatsapp-booking-assistant/internal/http/handlers"
	"github.com/wolfman30/whatsapp-booking-assistant/internal/messaging"
	observemetrics "github.com/wolfman30/whatsapp-booking-assistant/internal/observability/metrics"
	"github.com/wolfman30/whatsapp-booking-assistant/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting whatsapp booking assistant",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
	)

	ctx := context.Background()

	dbPool := bootstrap.ConnectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if dbPool == nil {
		logger.Error("postgres is required for appointments and conversation logs")
		os.Exit(1)
	}
	defer dbPool.Close()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	} else {
		logger.Warn("webhook deduplication disabled (REDIS_ADDR unset or unreachable)")
	}

	metricsHandler, messagingMetrics, interpreterMetrics := setupMetrics()

	llmClient, closeLLM, err := bootstrap.BuildLLMClient(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to configure llm client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeLLM(); err != nil {
			logger.Warn("failed to close llm client", "error", err)
		}
	}()

	interpreter, err := bootstrap.BuildInterpreter(cfg, llmClient, interpreterMetrics, logger)
	if err != nil {
		logger.Error("failed to build interpreter", "error", err)
		os.Exit(1)
	}

	messenger, reason := bootstrap.BuildReplyMessenger(cfg, logger)
	if messenger == nil {
		logger.Error("twilio whatsapp sender not configured", "reason", reason)
		os.Exit(1)
	}
	if cfg.TwilioWebhookSecret == "" {
		logger.Warn("TWILIO_WEBHOOK_SECRET not set; webhook signatures will not be verified")
	}

	conversationStore := messaging.NewStore(dbPool)
	appointmentRepo := bookings.NewRepository(dbPool)

	handlerCfg := messaging.HandlerConfig{
		WebhookSecret: cfg.TwilioWebhookSecret,
		Interpreter:   interpreter,
		Messenger:     messenger,
		Conversations: conversationStore,
		Appointments:  appointmentRepo,
		Metrics:       messagingMetrics,
		Logger:        logger,
	}
	if processed := bootstrap.BuildProcessedStore(redisClient, cfg); processed != nil {
		handlerCfg.Processed = processed
	}
	messagingHandler := messaging.NewHandler(handlerCfg)

	// Setup router
	routerCfg := &router.Config{
		Logger:           logger,
		MessagingHandler: messagingHandler,
		Health:           handlers.NewHealthHandler(dbPool, logger),
		AdminRecords:     handlers.NewAdminRecordsHandler(appointmentRepo, conversationStore, cfg.AdminListMaxLimit, logger),
		AdminAuthSecret:  cfg.AdminJWTSecret,
		MetricsHandler:   metricsHandler,
	}
	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET not set; admin routes disabled")
	}

	srv := newServer(cfg, router.New(routerCfg))

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupMetrics registers the service collectors on a dedicated registry and
// returns the scrape handler for /metrics.
func setupMetrics() (http.Handler, *observemetrics.MessagingMetrics, *observemetrics.InterpreterMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	messagingMetrics := observemetrics.NewMessagingMetrics(reg)
	interpreterMetrics := observemetrics.NewInterpreterMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), messagingMetrics, interpreterMetrics
}

// newServer wraps the router with the server timeouts. The write timeout
// leaves room for a full LLM round trip plus the outbound send.
func newServer(cfg *appconfig.Config, handler http.Handler) *http.Server {
	writeTimeout := 15 * time.Second
	if cfg.LLMTimeout > 0 {
		writeTimeout = cfg.LLMTimeout + 15*time.Second
	}
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}
}

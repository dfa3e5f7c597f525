package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/whatsapp-booking-assistant/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/whatsapp-booking-assistant/internal/http/middleware"
	"github.com/wolfman30/whatsapp-booking-assistant/internal/messaging"
	"github.com/wolfman30/whatsapp-booking-assistant/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger           *logging.Logger
	MessagingHandler *messaging.Handler
	Health           *handlers.HealthHandler
	AdminRecords     *handlers.AdminRecordsHandler
	AdminAuthSecret  string
	MetricsHandler   http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	health := cfg.Health
	if health == nil {
		health = handlers.NewHealthHandler(nil, cfg.Logger)
	}

	// Public endpoints (webhooks, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/", health.Root)
		public.Get("/health", health.Health)
		public.Get("/health/db", health.Database)
		if cfg.MessagingHandler != nil {
			public.Post("/webhook/whatsapp", cfg.MessagingHandler.WhatsAppWebhook)
			public.Post("/messaging/twilio/webhook", cfg.MessagingHandler.WhatsAppWebhook)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Admin routes (protected by JWT)
	if cfg.AdminAuthSecret != "" && cfg.AdminRecords != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.Compress(5))
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/appointments", cfg.AdminRecords.ListAppointments)
			admin.Get("/conversations", cfg.AdminRecords.ListConversations)
		})
	}

	return r
}

package messaging

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/whatsapp-booking-assistant/internal/conversation"
	observemetrics "github.com/wolfman30/whatsapp-booking-assistant/internal/observability/metrics"
	"github.com/wolfman30/whatsapp-booking-assistant/pkg/logging"
)

var twilioTracer = otel.Tracer("booking.internal.messaging.twilio")

// EmptyTwiML acknowledges a webhook without asking Twilio to send anything.
const EmptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response/>`

const processedProvider = "twilio"

type messageProcessor interface {
	Process(ctx context.Context, msg conversation.InboundMessage) (*conversation.ProcessResult, error)
}

type conversationLog interface {
	AppendConversationLog(ctx context.Context, entry conversation.ConversationLogEntry) error
}

type appointmentWriter interface {
	InsertAppointment(ctx context.Context, rec conversation.AppointmentRecord) (string, error)
}

type processedTracker interface {
	AlreadyProcessed(ctx context.Context, provider, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, provider, eventID string) (bool, error)
}

// HandlerConfig wires the collaborators of the WhatsApp webhook.
// Processed and Metrics are optional.
type HandlerConfig struct {
	WebhookSecret string
	Interpreter   messageProcessor
	Messenger     ReplyMessenger
	Conversations conversationLog
	Appointments  appointmentWriter
	Processed     processedTracker
	Metrics       *observemetrics.MessagingMetrics
	Logger        *logging.Logger
	Clock         func() time.Time
}

// Handler applies interpreter results for inbound WhatsApp messages.
type Handler struct {
	webhookSecret string
	interpreter   messageProcessor
	messenger     ReplyMessenger
	conversations conversationLog
	appointments  appointmentWriter
	processed     processedTracker
	metrics       *observemetrics.MessagingMetrics
	logger        *logging.Logger
	now           func() time.Time
}

// NewHandler creates a new messaging handler.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Interpreter == nil {
		panic("messaging: interpreter cannot be nil")
	}
	if cfg.Messenger == nil {
		panic("messaging: messenger cannot be nil")
	}
	if cfg.Conversations == nil {
		panic("messaging: conversation log cannot be nil")
	}
	if cfg.Appointments == nil {
		panic("messaging: appointment writer cannot be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Handler{
		webhookSecret: cfg.WebhookSecret,
		interpreter:   cfg.Interpreter,
		messenger:     cfg.Messenger,
		conversations: cfg.Conversations,
		appointments:  cfg.Appointments,
		processed:     cfg.Processed,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
		now:           cfg.Clock,
	}
}

// WhatsAppWebhook handles POST /webhook/whatsapp requests.
func (h *Handler) WhatsAppWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := twilioTracer.Start(r.Context(), "messaging.whatsapp.webhook", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	start := time.Now()

	if h.webhookSecret != "" {
		if !ValidateTwilioSignature(r, h.webhookSecret, buildAbsoluteURL(r)) {
			h.logger.Warn("invalid twilio signature")
			span.RecordError(errors.New("invalid twilio signature"))
			h.observe("unauthorized", start)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	webhook, err := ParseTwilioWebhook(r)
	if err != nil {
		h.logger.Error("failed to parse twilio webhook", "error", err)
		span.RecordError(err)
		h.observe("bad_request", start)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if webhook.From == "" || webhook.Body == "" {
		err := errors.New("missing required twilio fields")
		h.logger.Warn("invalid twilio payload", "error", err, "message_sid", webhook.MessageSid)
		span.RecordError(err)
		h.observe("bad_request", start)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	span.SetAttributes(
		attribute.String("booking.twilio.message_sid", webhook.MessageSid),
		attribute.String("booking.twilio.from", NormalizeE164(webhook.From)),
	)

	if h.processed != nil && webhook.MessageSid != "" {
		seen, err := h.processed.AlreadyProcessed(ctx, processedProvider, webhook.MessageSid)
		if err != nil {
			h.logger.Error("processed lookup failed", "error", err, "message_sid", webhook.MessageSid)
			span.RecordError(err)
			h.observe("error", start)
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		if seen {
			h.logger.Info("duplicate twilio webhook ignored", "message_sid", webhook.MessageSid)
			h.observe("duplicate", start)
			writeTwiML(w)
			return
		}
	}

	result, err := h.interpreter.Process(ctx, conversation.InboundMessage{
		SenderAddress: webhook.From,
		BodyText:      webhook.Body,
		ReceivedAt:    h.now().UTC(),
	})
	if err != nil {
		status := "error"
		if errors.Is(err, conversation.ErrDelegationFailed) {
			status = "delegation_failed"
		}
		h.logger.Error("message processing failed", "error", err, "from", webhook.From, "message_sid", webhook.MessageSid)
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		h.observe(status, start)
		http.Error(w, "processing error", http.StatusInternalServerError)
		return
	}

	if err := h.apply(ctx, result); err != nil {
		h.logger.Error("failed to apply message result", "error", err, "from", webhook.From, "message_sid", webhook.MessageSid)
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply failed")
		h.observe("error", start)
		http.Error(w, "processing error", http.StatusInternalServerError)
		return
	}

	if h.processed != nil && webhook.MessageSid != "" {
		if _, err := h.processed.MarkProcessed(ctx, processedProvider, webhook.MessageSid); err != nil {
			h.logger.Error("failed to mark twilio message processed", "error", err, "message_sid", webhook.MessageSid)
		}
	}

	h.logger.Info("whatsapp message handled",
		"from", webhook.From,
		"message_sid", webhook.MessageSid,
		"path", result.Decision.Path(),
		"sanitized", result.Sanitized,
	)
	h.observe(string(result.Decision.Path()), start)
	writeTwiML(w)
}

// apply delivers the reply, then records the exchange and any appointment.
func (h *Handler) apply(ctx context.Context, result *conversation.ProcessResult) error {
	if err := h.messenger.SendReply(ctx, result.Reply); err != nil {
		h.observeOutbound("failed")
		return fmt.Errorf("messaging: deliver reply: %w", err)
	}
	h.observeOutbound("sent")

	if err := h.conversations.AppendConversationLog(ctx, result.Log); err != nil {
		return fmt.Errorf("messaging: record conversation: %w", err)
	}

	if result.Appointment != nil {
		id, err := h.appointments.InsertAppointment(ctx, *result.Appointment)
		if err != nil {
			return fmt.Errorf("messaging: record appointment: %w", err)
		}
		h.logger.Info("appointment booked",
			"appointment_id", id,
			"appointment_time", result.Appointment.AppointmentTime.Format(time.RFC3339),
			"source_channel", result.Appointment.SourceChannel,
		)
	}
	return nil
}

func (h *Handler) observe(status string, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.ObserveInbound("whatsapp", status)
	h.metrics.ObserveWebhookLatency("whatsapp", time.Since(start).Seconds())
}

func (h *Handler) observeOutbound(status string) {
	if h.metrics == nil {
		return
	}
	h.metrics.ObserveOutbound(status)
}

func writeTwiML(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(EmptyTwiML))
}

func buildAbsoluteURL(r *http.Request) string {
	if r.URL == nil {
		return ""
	}
	if r.URL.Scheme != "" {
		return r.URL.String()
	}
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "https"
		if r.TLS == nil {
			scheme = "http"
		}
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return fmt.Sprintf("%s://%s%s", scheme, strings.TrimSpace(host), r.URL.RequestURI())
}

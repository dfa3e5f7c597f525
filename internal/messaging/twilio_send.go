package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/whatsapp-booking-assistant/internal/conversation"
	"github.com/wolfman30/whatsapp-booking-assistant/pkg/logging"
)

var twilioSendTracer = otel.Tracer("booking.internal.messaging.twilio_send")

const (
	twilioAPIBase       = "https://api.twilio.com"
	twilioSendAttempts  = 3
	twilioResponseLimit = 4096
)

// ReplyMessenger delivers an outbound reply to the sender.
type ReplyMessenger interface {
	SendReply(ctx context.Context, reply conversation.OutboundReply) error
}

// TwilioSender posts WhatsApp messages using Twilio's REST API.
type TwilioSender struct {
	accountSID string
	authToken  string
	from       string
	apiBase    string
	httpClient *http.Client
	backoff    func(attempt int) time.Duration
	logger     *logging.Logger
}

// NewTwilioSender builds a sender with sane defaults. from is the business
// WhatsApp number, with or without the "whatsapp:" prefix.
func NewTwilioSender(accountSID, authToken, from string, logger *logging.Logger) *TwilioSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		apiBase:    twilioAPIBase,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		backoff: func(int) time.Duration {
			return time.Duration(200+rand.Intn(300)) * time.Millisecond
		},
		logger: logger,
	}
}

var _ ReplyMessenger = (*TwilioSender)(nil)

// SendReply dispatches a single WhatsApp message, retrying transient failures.
func (s *TwilioSender) SendReply(ctx context.Context, reply conversation.OutboundReply) error {
	if s.accountSID == "" || s.authToken == "" {
		return errors.New("messaging: twilio credentials missing")
	}
	to := WhatsAppAddress(reply.DestinationAddress)
	if to == "" {
		return errors.New("messaging: destination required")
	}
	from := WhatsAppAddress(s.from)
	if from == "" {
		return errors.New("messaging: from required")
	}
	if strings.TrimSpace(reply.Body) == "" {
		return errors.New("messaging: body required")
	}

	ctx, span := twilioSendTracer.Start(ctx, "messaging.twilio.send", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("booking.to", to))

	payload := url.Values{}
	payload.Set("To", to)
	payload.Set("From", from)
	payload.Set("Body", reply.Body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", strings.TrimRight(s.apiBase, "/"), s.accountSID)

	var lastErr error
	for attempt := 1; attempt <= twilioSendAttempts; attempt++ {
		sid, retry, err := s.post(ctx, endpoint, payload)
		if err == nil {
			s.logger.Info("twilio whatsapp sent", "to", to, "sid", sid, "attempt", attempt)
			return nil
		}
		lastErr = err
		if !retry || attempt == twilioSendAttempts {
			break
		}
		select {
		case <-time.After(s.backoff(attempt)):
		case <-ctx.Done():
			err := fmt.Errorf("messaging: twilio send aborted: %w", ctx.Err())
			span.RecordError(err)
			return err
		}
	}

	span.RecordError(lastErr)
	s.logger.Warn("twilio whatsapp send failed", "to", to, "error", lastErr)
	return lastErr
}

// post performs one send attempt and reports whether a failure is worth retrying.
func (s *TwilioSender) post(ctx context.Context, endpoint string, payload url.Values) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
	if err != nil {
		return "", false, fmt.Errorf("messaging: build twilio request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", ctx.Err() == nil, fmt.Errorf("messaging: twilio request: %w", err)
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, twilioResponseLimit))
	resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var parsed struct {
			SID string `json:"sid"`
		}
		_ = json.Unmarshal(body, &parsed)
		return parsed.SID, false, nil
	}
	retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
	return "", retry, fmt.Errorf("messaging: twilio send failed: %s", formatTwilioError(resp.StatusCode, body))
}

type twilioAPIError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

func formatTwilioError(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fmt.Sprintf("status %d", status)
	}
	var parsed twilioAPIError
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil && parsed.Message != "" {
		if parsed.Code != 0 {
			return fmt.Sprintf("status %d code %d: %s", status, parsed.Code, parsed.Message)
		}
		return fmt.Sprintf("status %d: %s", status, parsed.Message)
	}
	return fmt.Sprintf("status %d: %s", status, trimmed)
}

package conversation

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/whatsapp-booking-assistant/pkg/logging"
)

var interpreterTracer = otel.Tracer("booking.internal.conversation.interpreter")

// InterpreterMetrics receives decision outcomes. metrics.InterpreterMetrics implements it.
type InterpreterMetrics interface {
	ObserveDecision(path string)
	ObserveSanitized()
	ObserveDelegationFailure(reason string)
	ObserveLLMLatency(seconds float64)
}

// Interpreter turns one inbound message into a reply plus the records to persist.
// It holds no per-message state and is safe for concurrent use.
type Interpreter struct {
	llm      LLMClient
	parser   DateTimeParser
	now      func() time.Time
	location *time.Location
	channel  string
	model    string
	timeout  time.Duration
	logger   *logging.Logger
	metrics  InterpreterMetrics
}

// InterpreterOption customizes an Interpreter.
type InterpreterOption func(*Interpreter)

// WithClock sets the clock used when a message carries no receive time.
func WithClock(now func() time.Time) InterpreterOption {
	return func(i *Interpreter) {
		if now != nil {
			i.now = now
		}
	}
}

// WithLocation sets the reference timezone for date parsing and the display
// timezone for confirmations.
func WithLocation(loc *time.Location) InterpreterOption {
	return func(i *Interpreter) {
		if loc != nil {
			i.location = loc
		}
	}
}

// WithSourceChannel sets the channel stamped on appointment records.
func WithSourceChannel(channel string) InterpreterOption {
	return func(i *Interpreter) {
		if strings.TrimSpace(channel) != "" {
			i.channel = strings.TrimSpace(channel)
		}
	}
}

// WithModel sets the model id passed to the LLM client.
func WithModel(model string) InterpreterOption {
	return func(i *Interpreter) { i.model = model }
}

// WithLLMTimeout bounds each completion call. Zero disables the bound.
func WithLLMTimeout(d time.Duration) InterpreterOption {
	return func(i *Interpreter) { i.timeout = d }
}

func WithLogger(logger *logging.Logger) InterpreterOption {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

func WithMetrics(m InterpreterMetrics) InterpreterOption {
	return func(i *Interpreter) { i.metrics = m }
}

// NewInterpreter wires the two capabilities the pipeline depends on.
func NewInterpreter(llm LLMClient, parser DateTimeParser, opts ...InterpreterOption) *Interpreter {
	if llm == nil {
		panic("conversation: llm client cannot be nil")
	}
	if parser == nil {
		panic("conversation: date parser cannot be nil")
	}
	i := &Interpreter{
		llm:      llm,
		parser:   parser,
		now:      time.Now,
		location: time.UTC,
		channel:  ChannelWhatsApp,
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Process extracts entities, picks the booking or assistant path, and returns
// the reply and records. It never performs persistence or delivery itself.
// On the assistant path a provider failure returns a *DelegationError and no result.
func (i *Interpreter) Process(ctx context.Context, msg InboundMessage) (*ProcessResult, error) {
	ctx, span := interpreterTracer.Start(ctx, "conversation.process")
	defer span.End()

	receivedAt := msg.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = i.now()
	}

	entities := ExtractEntities(msg.BodyText, receivedAt.In(i.location), i.parser)
	decision := Decide(entities, i.channel)
	span.SetAttributes(
		attribute.String("booking.sender", msg.SenderAddress),
		attribute.String("booking.path", string(decision.Path())),
	)

	result := &ProcessResult{Decision: decision}
	switch d := decision.(type) {
	case BookingDecision:
		appt := d.Appointment
		result.Appointment = &appt
		result.Reply.Body = FormatBookingConfirmation(appt.PersonName, appt.AppointmentTime, i.location)
	case AssistantDecision:
		raw, err := i.delegate(ctx, msg.BodyText)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "delegation failed")
			i.logger.Warn("assistant delegation failed",
				"from", msg.SenderAddress,
				"missing", strings.Join(d.Missing, ","),
				"error", err,
			)
			return nil, err
		}
		result.Reply.Body, result.Sanitized = SanitizeReply(raw)
		if result.Sanitized {
			span.SetAttributes(attribute.Bool("booking.sanitized", true))
			i.logger.Info("assistant reply replaced with fallback", "from", msg.SenderAddress)
			if i.metrics != nil {
				i.metrics.ObserveSanitized()
			}
		}
	}

	result.Reply.DestinationAddress = msg.SenderAddress
	result.Log = ConversationLogEntry{
		SenderAddress: msg.SenderAddress,
		IncomingText:  msg.BodyText,
		ReplyText:     result.Reply.Body,
		CreatedAt:     receivedAt.UTC(),
	}
	if i.metrics != nil {
		i.metrics.ObserveDecision(string(decision.Path()))
	}
	i.logger.Debug("message interpreted",
		"from", msg.SenderAddress,
		"path", decision.Path(),
		"body_length", len(msg.BodyText),
	)
	return result, nil
}

func (i *Interpreter) delegate(ctx context.Context, body string) (string, error) {
	ctx, span := interpreterTracer.Start(ctx, "conversation.delegate", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	req := LLMRequest{
		Model:       i.model,
		System:      []string{AssistantSystemPrompt},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: body}},
		Temperature: -1,
	}

	start := time.Now()
	resp, err := i.llm.Complete(ctx, req)
	if i.metrics != nil {
		i.metrics.ObserveLLMLatency(time.Since(start).Seconds())
	}
	if err == nil && ctx.Err() != nil {
		// A provider that ignores cancellation still counts as timed out.
		err = ctx.Err()
	}
	if err == nil && strings.TrimSpace(resp.Text) == "" {
		err = errEmptyCompletion
	}
	if err != nil {
		derr := &DelegationError{Cause: err}
		if i.metrics != nil {
			i.metrics.ObserveDelegationFailure(derr.Reason())
		}
		span.RecordError(err)
		return "", derr
	}
	return resp.Text, nil
}

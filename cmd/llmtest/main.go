package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/whatsapp-booking-assistant/internal/app/bootstrap"
	appconfig "github.com/wolfman30/whatsapp-booking-assistant/internal/config"
	"github.com/wolfman30/whatsapp-booking-assistant/internal/conversation"
	"github.com/wolfman30/whatsapp-booking-assistant/pkg/logging"
)

// llmtest runs a single message through the interpreter against the configured
// live providers. Nothing is sent or persisted.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	from := flag.String("from", "whatsapp:+15550001111", "sender address")
	flag.Parse()
	body := strings.Join(flag.Args(), " ")
	if body == "" {
		body = "Hi, what are your opening hours?"
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.LLMTimeout+10*time.Second)
	defer cancel()

	llm, closeLLM, err := bootstrap.BuildLLMClient(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("llm client: %v", err)
	}
	defer func() { _ = closeLLM() }()

	interpreter, err := bootstrap.BuildInterpreter(cfg, llm, nil, logger)
	if err != nil {
		log.Fatalf("interpreter: %v", err)
	}

	fmt.Printf("provider: %s (fallback: %q)\n", cfg.LLMProvider, cfg.LLMFallbackProvider)
	fmt.Printf("message:  %s\n\n", body)

	start := time.Now()
	result, err := interpreter.Process(ctx, conversation.InboundMessage{
		SenderAddress: *from,
		BodyText:      body,
		ReceivedAt:    time.Now().UTC(),
	})
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		var delegation *conversation.DelegationError
		if errors.As(err, &delegation) {
			log.Fatalf("delegation failed after %v (timeout=%t): %v", elapsed, delegation.Timeout(), err)
		}
		log.Fatalf("process: %v", err)
	}

	fmt.Printf("path:      %s\n", result.Decision.Path())
	fmt.Printf("sanitized: %t\n", result.Sanitized)
	fmt.Printf("elapsed:   %v\n", elapsed)
	if result.Appointment != nil {
		fmt.Printf("booked:    %s / %s at %s\n", result.Appointment.PersonName, result.Appointment.PhoneNumber, result.Appointment.AppointmentTime.Format(time.RFC3339))
	}
	fmt.Printf("\nreply to %s:\n%s\n", result.Reply.DestinationAddress, result.Reply.Body)
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appconfig "github.com/wolfman30/whatsapp-booking-assistant/internal/config"
	"github.com/wolfman30/whatsapp-booking-assistant/internal/conversation"
	"github.com/wolfman30/whatsapp-booking-assistant/pkg/logging"
)

const (
	ProviderOpenAI  = "openai"
	ProviderGemini  = "gemini"
	ProviderBedrock = "bedrock"
)

// BuildLLMClient wires the configured completion provider and, when
// LLM_FALLBACK_PROVIDER names a different one, a fallback chain.
// The returned close function releases provider resources.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (conversation.LLMClient, func() error, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	primaryName := normalizeProvider(cfg.LLMProvider)
	if primaryName == "" {
		primaryName = ProviderOpenAI
	}
	primary, closePrimary, err := buildProvider(ctx, primaryName, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("llm provider configured", "provider", primaryName)

	fallbackName := normalizeProvider(cfg.LLMFallbackProvider)
	if fallbackName == "" || fallbackName == primaryName {
		return primary, closePrimary, nil
	}
	fallback, closeFallback, err := buildProvider(ctx, fallbackName, cfg)
	if err != nil {
		logger.Warn("fallback llm provider unavailable; continuing without fallback", "provider", fallbackName, "error", err)
		return primary, closePrimary, nil
	}
	logger.Info("llm fallback provider configured", "provider", fallbackName)

	closeAll := func() error {
		return errors.Join(closePrimary(), closeFallback())
	}
	return conversation.NewFallbackLLMClient(primary, fallback, logger), closeAll, nil
}

func buildProvider(ctx context.Context, name string, cfg *appconfig.Config) (conversation.LLMClient, func() error, error) {
	noop := func() error { return nil }
	switch normalizeProvider(name) {
	case ProviderOpenAI:
		client, err := conversation.NewOpenAILLMClientFromKey(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: openai: %w", err)
		}
		return client, noop, nil
	case ProviderGemini:
		client, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: gemini: %w", err)
		}
		return client, client.Close, nil
	case ProviderBedrock:
		if strings.TrimSpace(cfg.BedrockModelID) == "" {
			return nil, nil, errors.New("bootstrap: bedrock: BEDROCK_MODEL_ID is required")
		}
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		return conversation.NewBedrockLLMClient(NewBedrockRuntimeClient(awsCfg, cfg), cfg.BedrockModelID), noop, nil
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown llm provider %q", name)
	}
}

func normalizeProvider(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// BuildInterpreter assembles the message interpreter from config.
func BuildInterpreter(cfg *appconfig.Config, llm conversation.LLMClient, metrics conversation.InterpreterMetrics, logger *logging.Logger) (*conversation.Interpreter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if llm == nil {
		return nil, fmt.Errorf("bootstrap: llm client is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	loc := conversation.DisplayLocation(cfg.DisplayTimezone)
	if loc.String() != strings.TrimSpace(cfg.DisplayTimezone) && strings.TrimSpace(cfg.DisplayTimezone) != "" {
		logger.Warn("unknown DISPLAY_TIMEZONE; using UTC", "timezone", cfg.DisplayTimezone)
	}

	opts := []conversation.InterpreterOption{
		conversation.WithLocation(loc),
		conversation.WithSourceChannel(cfg.SourceChannel),
		conversation.WithLLMTimeout(cfg.LLMTimeout),
		conversation.WithLogger(logger),
	}
	if metrics != nil {
		opts = append(opts, conversation.WithMetrics(metrics))
	}
	return conversation.NewInterpreter(llm, conversation.NewWhenParser(), opts...), nil
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "LLM_PROVIDER", "LLM_TIMEOUT", "OPENAI_MODEL", "SOURCE_CHANNEL", "DISPLAY_TIMEZONE", "PROCESSED_TTL", "TWILIO_ACCOUNT_SID", "TWILIO_SID", "ADMIN_LIST_MAX_LIMIT"} {
		t.Setenv(key, "")
	}
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAIModel)
	assert.Equal(t, "whatsapp", cfg.SourceChannel)
	assert.Equal(t, "UTC", cfg.DisplayTimezone)
	assert.Equal(t, 24*time.Hour, cfg.ProcessedTTL)
	assert.Equal(t, 100, cfg.AdminListMaxLimit)
	assert.Empty(t, cfg.TwilioAccountSID)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("LLM_PROVIDER", " Gemini ")
	t.Setenv("LLM_FALLBACK_PROVIDER", "OPENAI")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("DISPLAY_TIMEZONE", "Asia/Kolkata")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("ADMIN_LIST_MAX_LIMIT", "25")
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_SID", "AC-legacy")
	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, "openai", cfg.LLMFallbackProvider)
	assert.Equal(t, 5*time.Second, cfg.LLMTimeout)
	assert.Equal(t, "Asia/Kolkata", cfg.DisplayTimezone)
	assert.True(t, cfg.RedisTLS)
	assert.Equal(t, 25, cfg.AdminListMaxLimit)
	assert.Equal(t, "AC-legacy", cfg.TwilioAccountSID)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("LLM_TIMEOUT", "soon")
	t.Setenv("REDIS_TLS", "maybe")
	t.Setenv("ADMIN_LIST_MAX_LIMIT", "lots")
	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.False(t, cfg.RedisTLS)
	assert.Equal(t, 100, cfg.AdminListMaxLimit)
}

package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultProcessedTTL bounds how long a delivered webhook id is remembered.
const DefaultProcessedTTL = 24 * time.Hour

const processedKeyPrefix = "processed"

// ProcessedStore records webhook events that were already handled.
type ProcessedStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewProcessedStore(client redis.Cmdable, ttl time.Duration) *ProcessedStore {
	if client == nil {
		panic("events: redis client required")
	}
	if ttl <= 0 {
		ttl = DefaultProcessedTTL
	}
	return &ProcessedStore{client: client, ttl: ttl}
}

// AlreadyProcessed checks if we've seen this provider event id.
func (s *ProcessedStore) AlreadyProcessed(ctx context.Context, provider, eventID string) (bool, error) {
	key, err := processedKey(provider, eventID)
	if err != nil {
		return false, err
	}
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("events: check processed: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed records an event id for the provider, returning false if it already exists.
func (s *ProcessedStore) MarkProcessed(ctx context.Context, provider, eventID string) (bool, error) {
	key, err := processedKey(provider, eventID)
	if err != nil {
		return false, err
	}
	ok, err := s.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("events: mark processed: %w", err)
	}
	return ok, nil
}

func processedKey(provider, eventID string) (string, error) {
	provider = strings.TrimSpace(provider)
	eventID = strings.TrimSpace(eventID)
	if provider == "" || eventID == "" {
		return "", errors.New("events: provider and event id are required")
	}
	return fmt.Sprintf("%s:%s:%s", processedKeyPrefix, provider, eventID), nil
}

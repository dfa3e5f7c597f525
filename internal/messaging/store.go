package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wolfman30/whatsapp-booking-assistant/internal/conversation"
)

// Querier is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists the conversation log in Postgres.
type Store struct {
	pool Querier
}

func NewStore(pool Querier) *Store {
	if pool == nil {
		return nil
	}
	return &Store{pool: pool}
}

// ConversationRecord is a persisted exchange.
type ConversationRecord struct {
	ID              uuid.UUID `json:"id"`
	FromNumber      string    `json:"from_number"`
	IncomingMessage string    `json:"incoming_message"`
	Reply           string    `json:"reply"`
	CreatedAt       time.Time `json:"created_at"`
}

// AppendConversationLog records one inbound message and the reply sent for it.
func (s *Store) AppendConversationLog(ctx context.Context, entry conversation.ConversationLogEntry) error {
	if s == nil || s.pool == nil {
		return errors.New("messaging: store not configured")
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	query := `
		INSERT INTO messages (id, from_number, incoming_message, gpt_reply, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.pool.Exec(ctx, query, uuid.New(), entry.SenderAddress, entry.IncomingText, entry.ReplyText, createdAt); err != nil {
		return fmt.Errorf("messaging: append conversation log: %w", err)
	}
	return nil
}

// ListRecentConversations returns the newest exchanges first.
func (s *Store) ListRecentConversations(ctx context.Context, limit int) ([]ConversationRecord, error) {
	if s == nil || s.pool == nil {
		return nil, errors.New("messaging: store not configured")
	}
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, from_number, incoming_message, gpt_reply, created_at
		FROM messages
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("messaging: list conversations: %w", err)
	}
	defer rows.Close()

	var records []ConversationRecord
	for rows.Next() {
		var rec ConversationRecord
		if err := rows.Scan(&rec.ID, &rec.FromNumber, &rec.IncomingMessage, &rec.Reply, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("messaging: scan conversation: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("messaging: iterate conversations: %w", err)
	}
	return records, nil
}

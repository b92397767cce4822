package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/corvohq/helpdesk-ai/internal/customer"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Message is one persisted conversation turn. Immutable once created.
type Message struct {
	ID         string    `json:"id"`
	ChatRoomID string    `json:"chat_room_id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// TranscriptStore is the append-only conversation log. Append is synchronous,
// ordering is call order, and failures propagate to the caller.
type TranscriptStore interface {
	Append(ctx context.Context, chatRoomID, role, content string) error
	List(ctx context.Context, chatRoomID string, limit int) ([]Message, error)
}

type transcriptQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresTranscriptStore persists conversation turns in chat_messages.
type PostgresTranscriptStore struct {
	pool transcriptQuerier
}

// NewPostgresTranscriptStore initializes a store backed by pgxpool.
func NewPostgresTranscriptStore(pool *pgxpool.Pool) *PostgresTranscriptStore {
	if pool == nil {
		panic("chat: pgx pool required")
	}
	return &PostgresTranscriptStore{pool: pool}
}

func newPostgresTranscriptStoreWithQuerier(q transcriptQuerier) *PostgresTranscriptStore {
	if q == nil {
		panic("chat: querier required")
	}
	return &PostgresTranscriptStore{pool: q}
}

// Append inserts one turn. Fails with ErrChatRoomNotFound when the room id is
// unknown (foreign key violation).
func (s *PostgresTranscriptStore) Append(ctx context.Context, chatRoomID, role, content string) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("chat: invalid transcript role %q", role)
	}
	query := `INSERT INTO chat_messages (id, chat_room_id, role, content) VALUES ($1, $2, $3, $4)`
	if _, err := s.pool.Exec(ctx, query, uuid.New(), chatRoomID, role, content); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return customer.ErrChatRoomNotFound
		}
		return fmt.Errorf("chat: append transcript: %w", err)
	}
	return nil
}

// List returns the most recent turns in chronological order.
func (s *PostgresTranscriptStore) List(ctx context.Context, chatRoomID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, chat_room_id, role, content, created_at
		FROM (
			SELECT id, chat_room_id, role, content, created_at
			FROM chat_messages
			WHERE chat_room_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.pool.Query(ctx, query, chatRoomID, limit)
	if err != nil {
		return nil, fmt.Errorf("chat: list transcript: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ChatRoomID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("chat: scan transcript row: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chat: iterate transcript rows: %w", err)
	}
	return msgs, nil
}

var _ TranscriptStore = (*PostgresTranscriptStore)(nil)

package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/corvohq/helpdesk-ai/pkg/logging"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const transcriptKeyPrefix = "transcript:"

// CachedTranscriptStore mirrors every appended turn into a capped redis list
// so the widget history endpoint reads hot data without hitting Postgres.
// The wrapped store stays the source of truth: append failures there
// propagate, mirror failures are only logged.
type CachedTranscriptStore struct {
	primary     TranscriptStore
	redis       *redis.Client
	tracer      trace.Tracer
	logger      *logging.Logger
	ttl         time.Duration
	maxMessages int64
}

// NewCachedTranscriptStore wraps primary with a redis mirror. A nil redis
// client disables the mirror and the wrapper becomes a pass-through.
func NewCachedTranscriptStore(primary TranscriptStore, redisClient *redis.Client, ttl time.Duration, maxMessages int, logger *logging.Logger) *CachedTranscriptStore {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	if maxMessages <= 0 {
		maxMessages = 250
	}
	return &CachedTranscriptStore{
		primary:     primary,
		redis:       redisClient,
		tracer:      otel.Tracer("helpdesk.internal.chat.transcript_cache"),
		logger:      logger,
		ttl:         ttl,
		maxMessages: int64(maxMessages),
	}
}

func transcriptKey(chatRoomID string) string {
	return transcriptKeyPrefix + chatRoomID
}

// Append writes to the primary store, then mirrors to redis.
func (s *CachedTranscriptStore) Append(ctx context.Context, chatRoomID, role, content string) error {
	if err := s.primary.Append(ctx, chatRoomID, role, content); err != nil {
		return err
	}
	if s.redis == nil {
		return nil
	}

	msg := Message{
		ID:         uuid.NewString(),
		ChatRoomID: chatRoomID,
		Role:       role,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("chat: marshal cached transcript message", "error", err, "chat_room_id", chatRoomID)
		return nil
	}

	ctx, span := s.tracer.Start(ctx, "chat.transcript_cache.append")
	defer span.End()

	key := transcriptKey(chatRoomID)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.ttl)
	pipe.LTrim(ctx, key, -s.maxMessages, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		s.logger.Error("chat: mirror transcript to redis", "error", err, "chat_room_id", chatRoomID)
	}
	return nil
}

// List reads from redis when the room is cached, falling back to the primary
// store otherwise.
func (s *CachedTranscriptStore) List(ctx context.Context, chatRoomID string, limit int) ([]Message, error) {
	if s.redis == nil {
		return s.primary.List(ctx, chatRoomID, limit)
	}
	if limit <= 0 {
		limit = 100
	}

	ctx, span := s.tracer.Start(ctx, "chat.transcript_cache.list")
	defer span.End()

	raw, err := s.redis.LRange(ctx, transcriptKey(chatRoomID), -int64(limit), -1).Result()
	if err != nil {
		span.RecordError(err)
		s.logger.Warn("chat: read transcript cache", "error", err, "chat_room_id", chatRoomID)
		return s.primary.List(ctx, chatRoomID, limit)
	}
	if len(raw) == 0 {
		return s.primary.List(ctx, chatRoomID, limit)
	}

	msgs := make([]Message, 0, len(raw))
	for _, entry := range raw {
		var m Message
		if err := json.Unmarshal([]byte(entry), &m); err != nil {
			return nil, fmt.Errorf("chat: decode cached transcript message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

var _ TranscriptStore = (*CachedTranscriptStore)(nil)

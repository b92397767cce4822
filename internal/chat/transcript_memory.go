package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryTranscriptStore is a stub TranscriptStore for development and tests.
type InMemoryTranscriptStore struct {
	mu       sync.RWMutex
	messages map[string][]Message
}

// NewInMemoryTranscriptStore creates a new in-memory transcript store.
func NewInMemoryTranscriptStore() *InMemoryTranscriptStore {
	return &InMemoryTranscriptStore{messages: make(map[string][]Message)}
}

// Append records one turn in call order.
func (s *InMemoryTranscriptStore) Append(ctx context.Context, chatRoomID, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[chatRoomID] = append(s.messages[chatRoomID], Message{
		ID:         uuid.NewString(),
		ChatRoomID: chatRoomID,
		Role:       role,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	})
	return nil
}

// List returns the most recent turns in chronological order.
func (s *InMemoryTranscriptStore) List(ctx context.Context, chatRoomID string, limit int) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[chatRoomID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

var _ TranscriptStore = (*InMemoryTranscriptStore)(nil)

package customer

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for customer storage
type Repository interface {
	// FindByEmailPrefix returns the customer whose email starts with the given
	// prefix, scoped to the domain, together with its chat room.
	FindByEmailPrefix(ctx context.Context, domainID, emailPrefix string) (*Record, error)

	// CreateWithQuestions atomically creates a customer, a copy of the domain's
	// qualifying questions (all unanswered) and a fresh non-live chat room.
	CreateWithQuestions(ctx context.Context, domainID, email string, questions []string) (*Record, error)

	// FirstUnansweredQuestion returns the oldest unanswered question for the
	// customer, ties broken ascending by question text.
	FirstUnansweredQuestion(ctx context.Context, customerID string) (*QuestionAnswer, error)

	// UnansweredQuestions lists the customer's unanswered questions ascending
	// by question text.
	UnansweredQuestions(ctx context.Context, customerID string) ([]string, error)

	// AnswerQuestion records an answer; the transition happens once and is
	// never reverted.
	AnswerQuestion(ctx context.Context, questionID, answer string) error

	// SetLive flips the room's live flag. Activating a room resets mailed so
	// each activation can notify the owner once.
	SetLive(ctx context.Context, chatRoomID string, live bool) error

	// SetMailed marks the room as notified for the current live activation.
	SetMailed(ctx context.Context, chatRoomID string) error
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu        sync.RWMutex
	customers map[string]*Customer        // customer id -> customer
	rooms     map[string]*ChatRoom        // room id -> room
	roomOwner map[string]string           // customer id -> room id
	questions map[string][]QuestionAnswer // customer id -> questions
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		customers: make(map[string]*Customer),
		rooms:     make(map[string]*ChatRoom),
		roomOwner: make(map[string]string),
		questions: make(map[string][]QuestionAnswer),
	}
}

// FindByEmailPrefix scans for a customer whose email starts with the prefix.
func (r *InMemoryRepository) FindByEmailPrefix(ctx context.Context, domainID, emailPrefix string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.customers {
		if c.DomainID != domainID || !strings.HasPrefix(c.Email, emailPrefix) {
			continue
		}
		room := r.rooms[r.roomOwner[c.ID]]
		return &Record{Customer: *c, ChatRoom: *room}, nil
	}
	return nil, ErrCustomerNotFound
}

// CreateWithQuestions creates the customer, question copies and room together.
func (r *InMemoryRepository) CreateWithQuestions(ctx context.Context, domainID, email string, questions []string) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	c := &Customer{
		ID:        uuid.New().String(),
		DomainID:  domainID,
		Email:     email,
		CreatedAt: now,
	}
	room := &ChatRoom{
		ID:        uuid.New().String(),
		CreatedAt: now,
	}

	qs := make([]QuestionAnswer, 0, len(questions))
	for _, q := range questions {
		qs = append(qs, QuestionAnswer{ID: uuid.New().String(), Question: q})
	}

	r.customers[c.ID] = c
	r.rooms[room.ID] = room
	r.roomOwner[c.ID] = room.ID
	r.questions[c.ID] = qs

	return &Record{Customer: *c, ChatRoom: *room}, nil
}

// FirstUnansweredQuestion picks the unanswered question first in ascending text order.
func (r *InMemoryRepository) FirstUnansweredQuestion(ctx context.Context, customerID string) (*QuestionAnswer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var open []QuestionAnswer
	for _, q := range r.questions[customerID] {
		if q.Answered == nil {
			open = append(open, q)
		}
	}
	if len(open) == 0 {
		return nil, ErrNoUnansweredQuestions
	}
	sort.Slice(open, func(i, j int) bool { return open[i].Question < open[j].Question })
	q := open[0]
	return &q, nil
}

// UnansweredQuestions lists unanswered question texts ascending.
func (r *InMemoryRepository) UnansweredQuestions(ctx context.Context, customerID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var open []string
	for _, q := range r.questions[customerID] {
		if q.Answered == nil {
			open = append(open, q.Question)
		}
	}
	sort.Strings(open)
	return open, nil
}

// AnswerQuestion records the answer for a question id.
func (r *InMemoryRepository) AnswerQuestion(ctx context.Context, questionID, answer string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for customerID, qs := range r.questions {
		for i := range qs {
			if qs[i].ID == questionID {
				if qs[i].Answered == nil {
					qs[i].Answered = &answer
					r.questions[customerID] = qs
				}
				return nil
			}
		}
	}
	return ErrCustomerNotFound
}

// SetLive flips the live flag; activation resets mailed.
func (r *InMemoryRepository) SetLive(ctx context.Context, chatRoomID string, live bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[chatRoomID]
	if !ok {
		return ErrChatRoomNotFound
	}
	room.Live = live
	if live {
		room.Mailed = false
	}
	return nil
}

// SetMailed marks the room notified.
func (r *InMemoryRepository) SetMailed(ctx context.Context, chatRoomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[chatRoomID]
	if !ok {
		return ErrChatRoomNotFound
	}
	room.Mailed = true
	return nil
}

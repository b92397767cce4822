package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/corvohq/helpdesk-ai/internal/customer"
	"github.com/corvohq/helpdesk-ai/pkg/logging"
	"github.com/corvohq/helpdesk-ai/pkg/textutil"
)

const linkWrapper = "Great! You can follow the link to proceed: "

// ResponseInterpreter maps control keywords and embedded links in a model
// reply to side effects, and logs the assistant turn before returning it.
// It runs only on the qualification path.
type ResponseInterpreter struct {
	customers  customer.Repository
	transcript TranscriptStore
	logger     *logging.Logger
}

// NewResponseInterpreter creates an interpreter.
func NewResponseInterpreter(customers customer.Repository, transcript TranscriptStore, logger *logging.Logger) *ResponseInterpreter {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResponseInterpreter{customers: customers, transcript: transcript, logger: logger}
}

// Interpret applies the ordered rules to a model reply: escalation first,
// then completion bookkeeping against the caller-supplied last user turn,
// then link extraction, then verbatim passthrough. lastUserTurn is the final
// entry of the history the widget sent, not the new message; message is the
// new inbound text recorded as a question's answer when the completion marker
// fired.
func (i *ResponseInterpreter) Interpret(ctx context.Context, reply string, rec *customer.Record, lastUserTurn, message string) (*Result, error) {
	if strings.Contains(reply, markerRealtime) {
		return i.escalate(ctx, reply, rec)
	}

	// Completion bookkeeping runs before reply-content branching, whatever
	// rule produces the response.
	if strings.Contains(lastUserTurn, markerComplete) {
		if err := i.recordAnswer(ctx, rec.Customer.ID, message); err != nil {
			return nil, err
		}
	}

	if urls := textutil.ExtractURLs(reply); len(urls) > 0 {
		return i.linked(ctx, urls[0], rec)
	}

	if err := i.transcript.Append(ctx, rec.ChatRoom.ID, RoleAssistant, reply); err != nil {
		return nil, fmt.Errorf("chat: log assistant turn: %w", err)
	}
	return &Result{
		Kind:       ResultReply,
		Response:   &Response{Role: RoleAssistant, Content: reply},
		ChatRoomID: rec.ChatRoom.ID,
	}, nil
}

// escalate flips the room live and returns the reply with the marker removed.
// Subsequent turns for this room route through the handoff gate.
func (i *ResponseInterpreter) escalate(ctx context.Context, reply string, rec *customer.Record) (*Result, error) {
	if err := i.customers.SetLive(ctx, rec.ChatRoom.ID, true); err != nil {
		return nil, fmt.Errorf("chat: flip room live: %w", err)
	}
	rec.ChatRoom.Live = true

	content := strings.TrimSpace(strings.Replace(reply, markerRealtime, "", 1))
	if err := i.transcript.Append(ctx, rec.ChatRoom.ID, RoleAssistant, content); err != nil {
		return nil, fmt.Errorf("chat: log escalation turn: %w", err)
	}

	i.logger.Info("chat: conversation escalated to live agent", "chat_room_id", rec.ChatRoom.ID)
	return &Result{
		Kind:       ResultEscalated,
		Response:   &Response{Role: RoleAssistant, Content: content},
		ChatRoomID: rec.ChatRoom.ID,
	}, nil
}

// recordAnswer stores the inbound message as the answer to the customer's
// oldest unanswered question. A customer with no open questions is a no-op,
// keeping the answered set a terminal state.
func (i *ResponseInterpreter) recordAnswer(ctx context.Context, customerID, message string) error {
	qa, err := i.customers.FirstUnansweredQuestion(ctx, customerID)
	if err != nil {
		if errors.Is(err, customer.ErrNoUnansweredQuestions) {
			return nil
		}
		return fmt.Errorf("chat: find unanswered question: %w", err)
	}
	if err := i.customers.AnswerQuestion(ctx, qa.ID, message); err != nil {
		return fmt.Errorf("chat: record answer: %w", err)
	}
	i.logger.Debug("chat: question answered", "customer_id", customerID, "question", qa.Question)
	return nil
}

func (i *ResponseInterpreter) linked(ctx context.Context, link string, rec *customer.Record) (*Result, error) {
	content := linkWrapper + link
	if err := i.transcript.Append(ctx, rec.ChatRoom.ID, RoleAssistant, content); err != nil {
		return nil, fmt.Errorf("chat: log link turn: %w", err)
	}
	return &Result{
		Kind:       ResultLink,
		Response:   &Response{Role: RoleAssistant, Content: content, Link: link},
		ChatRoomID: rec.ChatRoom.ID,
	}, nil
}

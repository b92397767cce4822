package notify

import (
	"context"
	"fmt"

	"github.com/corvohq/helpdesk-ai/pkg/logging"
)

// Service sends operational alerts to domain owners.
type Service struct {
	email  EmailSender
	logger *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, logger: logger}
}

// NotifyLiveHandoff alerts the domain owner that a visitor is waiting in a
// live chat room. Delivery is fire-and-forget from the conversation's point
// of view; the caller decides what a failure means.
func (s *Service) NotifyLiveHandoff(ctx context.Context, to, domainName, chatRoomID string) error {
	if s.email == nil {
		s.logger.Debug("notify: email sender not configured, skipping handoff alert")
		return nil
	}

	subject := fmt.Sprintf("A visitor wants to talk to a human - %s", domainName)
	body := fmt.Sprintf(`A visitor on your %s helpdesk asked for a live agent.

Open the conversation in your dashboard to take over the chat.

Chat room: %s

— %s Helpdesk`, domainName, chatRoomID, domainName)

	msg := EmailMessage{
		To:      to,
		Subject: subject,
		Body:    body,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: handoff alert: %w", err)
	}

	s.logger.Info("notify: handoff alert sent", "to", to, "chat_room_id", chatRoomID)
	return nil
}

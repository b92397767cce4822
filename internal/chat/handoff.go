package chat

import (
	"context"
	"fmt"

	"github.com/corvohq/helpdesk-ai/internal/customer"
	"github.com/corvohq/helpdesk-ai/internal/tenant"
	"github.com/corvohq/helpdesk-ai/pkg/logging"
)

// ContactResolver resolves a domain owner's id to a contact email address.
type ContactResolver interface {
	OwnerContact(ctx context.Context, ownerID string) (string, error)
}

// HandoffNotifier alerts a human agent that a visitor is waiting in a live room.
type HandoffNotifier interface {
	NotifyLiveHandoff(ctx context.Context, to, domainName, chatRoomID string) error
}

// HandoffGate short-circuits automated processing when a human agent already
// owns the room. The room's mailed flag guarantees at most one notification
// per live activation.
type HandoffGate struct {
	customers  customer.Repository
	transcript TranscriptStore
	contacts   ContactResolver
	notifier   HandoffNotifier
	logger     *logging.Logger
}

// NewHandoffGate creates a handoff gate.
func NewHandoffGate(customers customer.Repository, transcript TranscriptStore, contacts ContactResolver, notifier HandoffNotifier, logger *logging.Logger) *HandoffGate {
	if logger == nil {
		logger = logging.Default()
	}
	return &HandoffGate{
		customers:  customers,
		transcript: transcript,
		contacts:   contacts,
		notifier:   notifier,
		logger:     logger,
	}
}

// Check returns a live Result when the room is human-staffed, nil when
// automated processing should proceed. On the live path the inbound message
// is logged and, once per activation, the domain owner is notified. The turn
// still succeeds when lookup or delivery of the notification fails; mailed
// only flips after a successful send so the next turn retries.
func (g *HandoffGate) Check(ctx context.Context, domain *tenant.Domain, rec *customer.Record, message string) (*Result, error) {
	if !rec.ChatRoom.Live {
		return nil, nil
	}

	if err := g.transcript.Append(ctx, rec.ChatRoom.ID, RoleUser, message); err != nil {
		return nil, fmt.Errorf("chat: log live inbound turn: %w", err)
	}

	if !rec.ChatRoom.Mailed {
		g.notifyOwner(ctx, domain, rec)
	}

	return &Result{
		Kind:       ResultLive,
		Live:       true,
		ChatRoomID: rec.ChatRoom.ID,
	}, nil
}

func (g *HandoffGate) notifyOwner(ctx context.Context, domain *tenant.Domain, rec *customer.Record) {
	if g.contacts == nil || g.notifier == nil {
		return
	}

	contact, err := g.contacts.OwnerContact(ctx, domain.OwnerID)
	if err != nil {
		g.logger.Error("chat: resolve owner contact", "error", err, "domain_id", domain.ID)
		return
	}

	if err := g.notifier.NotifyLiveHandoff(ctx, contact, domain.Name, rec.ChatRoom.ID); err != nil {
		g.logger.Error("chat: send handoff notification", "error", err, "domain_id", domain.ID)
		return
	}

	if err := g.customers.SetMailed(ctx, rec.ChatRoom.ID); err != nil {
		g.logger.Error("chat: mark room mailed", "error", err, "chat_room_id", rec.ChatRoom.ID)
		return
	}
	rec.ChatRoom.Mailed = true

	g.logger.Info("chat: live handoff notification sent",
		"domain_id", domain.ID,
		"chat_room_id", rec.ChatRoom.ID,
	)
}

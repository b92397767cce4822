package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/corvohq/helpdesk-ai/internal/customer"
	"github.com/corvohq/helpdesk-ai/internal/tenant"
	"github.com/corvohq/helpdesk-ai/pkg/logging"
	"github.com/corvohq/helpdesk-ai/pkg/textutil"
)

// Resolution is the outcome of matching an inbound message to a customer.
type Resolution struct {
	Record *customer.Record
	Email  string
	IsNew  bool
}

// CustomerResolver finds or lazily creates the customer a message belongs to,
// keyed by the first email address found in the message text.
type CustomerResolver struct {
	customers customer.Repository
	logger    *logging.Logger
}

// NewCustomerResolver creates a resolver.
func NewCustomerResolver(customers customer.Repository, logger *logging.Logger) *CustomerResolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &CustomerResolver{customers: customers, logger: logger}
}

// Resolve scans the message for an email and looks up or creates the matching
// customer. Returns ErrNoEmailFound when the message carries no email, which
// routes the caller to the email-collection path. A created customer gets a
// copy of the domain's predefined questions and a fresh non-live chat room,
// persisted as one unit.
func (r *CustomerResolver) Resolve(ctx context.Context, domain *tenant.Domain, message string) (*Resolution, error) {
	emails := textutil.ExtractEmails(message)
	if len(emails) == 0 {
		return nil, ErrNoEmailFound
	}
	email := emails[0]

	rec, err := r.customers.FindByEmailPrefix(ctx, domain.ID, email)
	if err == nil {
		return &Resolution{Record: rec, Email: email}, nil
	}
	if !errors.Is(err, customer.ErrCustomerNotFound) {
		return nil, fmt.Errorf("chat: lookup customer: %w", err)
	}

	rec, err = r.customers.CreateWithQuestions(ctx, domain.ID, email, domain.Questions)
	if err != nil {
		return nil, fmt.Errorf("chat: create customer: %w", err)
	}
	r.logger.Info("chat: new customer created",
		"domain_id", domain.ID,
		"customer_id", rec.Customer.ID,
		"chat_room_id", rec.ChatRoom.ID,
	)
	return &Resolution{Record: rec, Email: email, IsNew: true}, nil
}

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/corvohq/helpdesk-ai/internal/customer"
	"github.com/corvohq/helpdesk-ai/internal/observability/metrics"
	"github.com/corvohq/helpdesk-ai/internal/tenant"
	"github.com/corvohq/helpdesk-ai/pkg/logging"
)

// Service routes inbound widget messages through the conversation state
// machine: customer resolution, live handoff, qualification Q&A with the
// generative model, and the append-only conversation log.
type Service struct {
	domains    tenant.Repository
	customers  customer.Repository
	transcript TranscriptStore
	llm        LLMClient
	prompts    *PromptBuilder
	resolver   *CustomerResolver
	gate       *HandoffGate
	interp     *ResponseInterpreter
	metrics    *metrics.ChatMetrics
	logger     *logging.Logger
}

// ServiceConfig bundles the collaborators the router depends on.
type ServiceConfig struct {
	Domains    tenant.Repository
	Customers  customer.Repository
	Transcript TranscriptStore
	LLM        LLMClient
	Prompts    *PromptBuilder
	Contacts   ContactResolver
	Notifier   HandoffNotifier
	Metrics    *metrics.ChatMetrics
	Logger     *logging.Logger
}

// NewService wires the conversation router.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		domains:    cfg.Domains,
		customers:  cfg.Customers,
		transcript: cfg.Transcript,
		llm:        cfg.LLM,
		prompts:    cfg.Prompts,
		resolver:   NewCustomerResolver(cfg.Customers, logger),
		gate:       NewHandoffGate(cfg.Customers, cfg.Transcript, cfg.Contacts, cfg.Notifier, logger),
		interp:     NewResponseInterpreter(cfg.Customers, cfg.Transcript, logger),
		metrics:    cfg.Metrics,
		logger:     logger,
	}
}

// GetChatbotConfig returns the widget projection for a domain.
func (s *Service) GetChatbotConfig(ctx context.Context, domainID string) (*tenant.ChatbotConfig, error) {
	return s.domains.ChatbotConfig(ctx, domainID)
}

// StoreConversationTurn appends one turn to a room's conversation log.
func (s *Service) StoreConversationTurn(ctx context.Context, chatRoomID, content, role string) error {
	return s.transcript.Append(ctx, chatRoomID, role, content)
}

// History returns the recent transcript of a room in chronological order.
func (s *Service) History(ctx context.Context, chatRoomID string, limit int) ([]Message, error) {
	return s.transcript.List(ctx, chatRoomID, limit)
}

// ProcessMessage handles one inbound visitor message and returns exactly one
// Result variant. history is the running conversation the widget supplies;
// author is the inbound role (always "user" today).
func (s *Service) ProcessMessage(ctx context.Context, domainID string, history []Turn, author, message string) (*Result, error) {
	if author == "" {
		author = RoleUser
	}

	result, err := s.process(ctx, domainID, history, author, message)
	if err != nil {
		s.metrics.ObserveTurn("error", "error")
		return nil, err
	}
	s.metrics.ObserveTurn(string(result.Kind), "ok")
	return result, nil
}

func (s *Service) process(ctx context.Context, domainID string, history []Turn, author, message string) (*Result, error) {
	domain, err := s.domains.GetByID(ctx, domainID)
	if err != nil {
		return nil, err
	}

	res, err := s.resolver.Resolve(ctx, domain, message)
	if errors.Is(err, ErrNoEmailFound) {
		return s.collectEmail(ctx, domain, history, message)
	}
	if err != nil {
		return nil, err
	}

	if res.IsNew {
		return s.welcome(res), nil
	}

	rec := res.Record
	if result, err := s.gate.Check(ctx, domain, rec, message); err != nil {
		return nil, err
	} else if result != nil {
		return result, nil
	}

	if err := s.transcript.Append(ctx, rec.ChatRoom.ID, author, message); err != nil {
		return nil, fmt.Errorf("chat: log inbound turn: %w", err)
	}

	unanswered, err := s.customers.UnansweredQuestions(ctx, rec.Customer.ID)
	if err != nil {
		return nil, fmt.Errorf("chat: list unanswered questions: %w", err)
	}

	prompt := s.prompts.Qualification(domain.Name, domain.ID, rec.Customer.ID, unanswered, history)
	reply, err := s.complete(ctx, "qualification", prompt, history, message)
	if err != nil {
		return nil, err
	}

	lastUserTurn := ""
	if len(history) > 0 {
		lastUserTurn = history[len(history)-1].Content
	}

	return s.interp.Interpret(ctx, reply, rec, lastUserTurn, message)
}

// welcome is the canned first reply for a freshly created customer; the model
// is not consulted on this turn.
func (s *Service) welcome(res *Resolution) *Result {
	localPart := res.Email
	if at := strings.Index(res.Email, "@"); at >= 0 {
		localPart = res.Email[:at]
	}
	content := fmt.Sprintf("Welcome aboard %s! I'm glad to connect with you. How can I assist you today?", localPart)
	return &Result{
		Kind:       ResultWelcome,
		Response:   &Response{Role: RoleAssistant, Content: content},
		ChatRoomID: res.Record.ChatRoom.ID,
	}
}

// collectEmail runs the pre-identification path: no customer record exists
// yet, so nothing is persisted and the model's only goal is to elicit an
// email address.
func (s *Service) collectEmail(ctx context.Context, domain *tenant.Domain, history []Turn, message string) (*Result, error) {
	prompt := s.prompts.EmailCollection(domain.Name, history)
	reply, err := s.complete(ctx, "email_collection", prompt, history, message)
	if err != nil {
		return nil, err
	}
	return &Result{
		Kind:     ResultReply,
		Response: &Response{Role: RoleAssistant, Content: reply},
	}, nil
}

func (s *Service) complete(ctx context.Context, mode, prompt string, history []Turn, message string) (string, error) {
	start := time.Now()
	reply, err := s.llm.Complete(ctx, LLMRequest{
		System:  prompt,
		History: history,
		Message: message,
	})
	s.metrics.ObserveModelLatency(mode, time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("chat: model completion: %w", err)
	}
	return reply, nil
}

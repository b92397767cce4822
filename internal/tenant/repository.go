package tenant

import (
	"context"
	"sort"
	"sync"
)

// Repository defines the interface for domain lookups
type Repository interface {
	GetByID(ctx context.Context, id string) (*Domain, error)
	ChatbotConfig(ctx context.Context, id string) (*ChatbotConfig, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu      sync.RWMutex
	domains map[string]*Domain
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		domains: make(map[string]*Domain),
	}
}

// Put registers a domain, replacing any existing one with the same id.
func (r *InMemoryRepository) Put(domain *Domain) {
	r.mu.Lock()
	r.domains[domain.ID] = domain
	r.mu.Unlock()
}

// GetByID retrieves a domain by id
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Domain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	domain, ok := r.domains[id]
	if !ok {
		return nil, ErrDomainNotFound
	}

	copied := *domain
	copied.Questions = append([]string(nil), domain.Questions...)
	sort.Strings(copied.Questions)
	return &copied, nil
}

// ChatbotConfig retrieves the widget projection for a domain
func (r *InMemoryRepository) ChatbotConfig(ctx context.Context, id string) (*ChatbotConfig, error) {
	domain, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ChatbotConfig{
		HelpdeskEnabled: domain.HelpdeskEnabled,
		DomainName:      domain.Name,
		WidgetTheme:     domain.WidgetTheme,
	}, nil
}

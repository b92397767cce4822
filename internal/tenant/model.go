package tenant

import "time"

// Domain is a tenant's chatbot configuration. Domains are created during
// onboarding and are read-only from the conversation path.
type Domain struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Name            string    `json:"name"`
	HelpdeskEnabled bool      `json:"helpdesk_enabled"`
	WidgetTheme     string    `json:"widget_theme"`
	Questions       []string  `json:"questions"`
	CreatedAt       time.Time `json:"created_at"`
}

// ChatbotConfig is the read-only projection the widget needs to render itself.
type ChatbotConfig struct {
	HelpdeskEnabled bool   `json:"helpdesk_enabled"`
	DomainName      string `json:"domain_name"`
	WidgetTheme     string `json:"widget_theme"`
}

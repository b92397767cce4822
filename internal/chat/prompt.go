package chat

import (
	"fmt"
	"strings"
)

const (
	// markerComplete is appended by the model to every predefined question it
	// asks, signalling that the visitor's next message answers one.
	markerComplete = "(complete)"
	// markerRealtime is appended by the model when a human agent should take
	// over the conversation.
	markerRealtime = "(realtime)"
)

// PromptBuilder renders the system prompts for the two conversation modes.
type PromptBuilder struct {
	portalBaseURL string
}

// NewPromptBuilder creates a prompt builder. Portal links in the
// qualification prompt are rooted at portalBaseURL.
func NewPromptBuilder(portalBaseURL string) *PromptBuilder {
	return &PromptBuilder{portalBaseURL: strings.TrimRight(portalBaseURL, "/")}
}

// Qualification renders the prompt used once the visitor's email is known: it
// walks the model through the domain's unanswered questions and wires up the
// marker protocol and portal redirects.
func (b *PromptBuilder) Qualification(domainName, domainID, customerID string, unanswered []string, history []Turn) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are an AI assistant for %s. Your primary role is to guide the customer through a series of predefined questions to understand their needs and provide relevant assistance. Follow these rules strictly:\n\n", domainName)

	sb.WriteString("1. Predefined questions. Use the following questions to guide the conversation:\n")
	for _, q := range unanswered {
		fmt.Fprintf(&sb, "   - %s\n", q)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "2. Keywords. Append the keyword %q at the end of every question you ask from the predefined list. Append the keyword %q if the customer says something inappropriate or out of context, and inform them that a real agent will take over.\n\n", markerComplete, markerRealtime)

	sb.WriteString("3. Tone. Always maintain a professional and respectful tone.\n\n")

	fmt.Fprintf(&sb, "4. Redirects. If the customer agrees to book an appointment, provide this link: %s/portal/%s/appointment/%s\n", b.portalBaseURL, domainID, customerID)
	fmt.Fprintf(&sb, "   If the customer wants to buy a product, redirect them to the payment page: %s/portal/%s/payment/%s\n\n", b.portalBaseURL, domainID, customerID)

	fmt.Fprintf(&sb, "5. Out-of-scope queries. If the customer asks something beyond your capabilities, politely inform them and add the keyword %q to escalate the conversation to a human agent.\n\n", markerRealtime)

	sb.WriteString("Current conversation context:\n")
	sb.WriteString(renderTranscript(history))

	return sb.String()
}

// EmailCollection renders the prompt used before any email is known: the
// model acts as a warm sales contact whose goal is to elicit the visitor's
// email address. No markers are used in this mode.
func (b *PromptBuilder) EmailCollection(domainName string, history []Turn) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are a knowledgeable and friendly sales representative for %s. Your goal is to welcome the customer warmly and naturally guide the conversation to collect their email address. Be respectful and maintain a professional tone throughout.\n\n", domainName)

	sb.WriteString("Current conversation context:\n")
	sb.WriteString(renderTranscript(history))

	return sb.String()
}

// renderTranscript joins prior turns role-prefixed, one per line.
func renderTranscript(history []Turn) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Role, turn.Content))
	}
	return strings.Join(lines, "\n")
}

package chat

import "context"

// LLMRequest is one completion request: a system prompt, the prior transcript
// in order, and the new visitor message last.
type LLMRequest struct {
	System  string
	History []Turn
	Message string
}

// LLMClient abstracts the generative model so the router can be tested with a
// double and the provider can be swapped.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (string, error)
}

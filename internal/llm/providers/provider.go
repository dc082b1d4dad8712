// File path: internal/llm/providers/provider.go
package providers

import "context"

// Message is one turn of a chat exchange with a provider.
type Message struct {
	Role    string
	Content string
}

// Provider produces raw, untrusted text from a chat exchange. Callers
// must bound every Chat call with a context deadline and validate the
// returned text before trusting its shape.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Name() string
}

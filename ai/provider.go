// Package ai defines the language model boundary and its backends.
//
// Every backend answers the same request: a system instruction, the prior
// conversation and the new question. The reply is returned as raw text and
// parsed by the envelope package, so providers never interpret it.
package ai

import (
	"context"
)

// Chat roles. The conversation history uses "model" for replies; providers
// translate it to whatever their API expects.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// Provider is the interface all AI backends must implement.
type Provider interface {
	// Complete sends the system instruction, prior turns and the new prompt
	// and returns the model's raw reply text.
	Complete(ctx context.Context, system string, history []Message, prompt string) (string, error)

	// Name returns the provider name for display.
	Name() string
}

// conversation appends prompt to history as the final user message.
func conversation(history []Message, prompt string) []Message {
	msgs := make([]Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	return append(msgs, Message{Role: RoleUser, Content: prompt})
}

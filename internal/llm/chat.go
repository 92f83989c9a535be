package llm

import (
	"context"
	"errors"
	"strings"
)

// ErrNotConfigured is returned by Chat when no provider is configured.
var ErrNotConfigured = errors.New("AI chat is not configured: set ai.provider in the gallery config")

// Chat adapts a Provider to the single-prompt AI capability.
type Chat struct {
	provider     Provider
	model        string
	systemPrompt string
}

// NewChat creates a Chat. provider may be nil, in which case every call
// fails with ErrNotConfigured.
func NewChat(provider Provider, model, systemPrompt string) *Chat {
	return &Chat{provider: provider, model: model, systemPrompt: systemPrompt}
}

// Chat sends prompt and returns the reply text.
func (c *Chat) Chat(ctx context.Context, prompt string) (string, error) {
	if c.provider == nil {
		return "", ErrNotConfigured
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt is required")
	}

	var messages []Message
	if c.systemPrompt != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: c.systemPrompt})
	}
	messages = append(messages, Message{Role: RoleUser, Content: prompt})

	resp, err := c.provider.Complete(ctx, CompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

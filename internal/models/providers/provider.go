// Package providers adapts hosted text-generation APIs to one chat
// completion interface.
package providers

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmptyResponse is returned when a provider answers without any text
var ErrEmptyResponse = errors.New("empty response from model")

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider interface for LLM providers
type Provider interface {
	Name() string
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Settings are the sampling parameters shared by every provider
type Settings struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Package llm wraps the chat-completion providers used for card generation,
// answer options and free-text grading behind one structured-output API.
package llm

import (
	"context"
	"encoding/json"
)

// Provider sends a prompt and returns JSON content.
type Provider interface {
	// Generate sends req and returns the reply. When req.Schema is set the
	// content has been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier the provider sends requests to.
	ModelID() string
}

// Request describes one completion.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, switches the provider to its native JSON output mode.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Message is a single conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserMessage is shorthand for a single user turn.
func UserMessage(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}

// Schema is a named JSON Schema definition.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds a provider reply.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

// Usage reports token consumption.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

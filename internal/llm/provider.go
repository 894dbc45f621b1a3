// Package llm is the tutor backend's model access layer. Vendor SDKs sit
// behind Provider, and decorators add retries and request events.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one model reply per call.
type Provider interface {
	// Generate sends req and returns the reply. When req.Schema is set the
	// reply Content is JSON validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier requests are sent to.
	ModelID() string
}

// Request is a single generation request.
type Request struct {
	System   string
	Messages []Message

	// Schema requests structured output through the vendor's native
	// mechanism. Nil means free text.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the vendor default, except for
	// OpenAI-compatible vendors where it is sent as is.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema for structured output.
type Schema struct {
	// Name is kebab-case, e.g. "tutor-answer". It doubles as the cache
	// key for the compiled schema.
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a model reply.
type Response struct {
	// Content is validated JSON when the request had a Schema, otherwise
	// the raw reply text.
	Content json.RawMessage
	Usage   Usage
	// Model is the model that served the request, which may differ from
	// ModelID when the vendor routes it.
	Model string
	// StopReason is StopEnd or StopMaxTokens.
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

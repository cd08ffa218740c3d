// Package llm wraps the chat-completion APIs used to draft answers and
// transcribe images behind a single Provider interface.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates a completion for a request.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name is the short provider name, e.g. "groq".
	Name() string

	// ModelID is the model the provider sends requests to.
	ModelID() string
}

// Request describes a single completion call.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, constrains the response to JSON and the
	// response text is validated against it.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Message is one turn in the conversation.
type Message struct {
	Role    Role
	Content string
	Images  []Image
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Image is an inline image attached to a user message.
type Image struct {
	MediaType string // image/png, image/jpeg, image/gif or image/webp
	Data      []byte
}

// Schema is a JSON Schema the response must satisfy.
type Schema struct {
	Name       string
	Definition map[string]any
}

// Response holds the model output.
type Response struct {
	Text       string
	Provider   string
	Model      string
	Usage      Usage
	StopReason string // "end" or "max_tokens"
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Decode unmarshals a structured response into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal([]byte(stripCodeBlock(r.Text)), v)
}

// UserText builds the common single-message request body.
func UserText(text string) []Message {
	return []Message{{Role: RoleUser, Content: text}}
}

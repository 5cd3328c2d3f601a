// Package llm provides interfaces and types for Large Language Model client
// implementations.
package llm

import (
	"context"
	"fmt"
)

// CompletionRole represents the role of a message in a conversation.
type CompletionRole string

const (
	// RoleSystem indicates a system message that provides instructions or context.
	RoleSystem CompletionRole = "system"
	// RoleUser indicates a message from the human user.
	RoleUser CompletionRole = "user"
	// RoleAssistant indicates a message from the AI assistant.
	RoleAssistant CompletionRole = "assistant"
)

// ImageAttachment is an inline image sent alongside a user message.
// Data is base64-encoded; MIMEType is the reported content type.
type ImageAttachment struct {
	MIMEType string
	Data     string
}

// CompletionMessage represents a message in a completion request.
type CompletionMessage struct {
	Role    CompletionRole
	Content string
	Images  []ImageAttachment // only meaningful on user messages
}

// CompletionRequest represents a request to generate a completion.
type CompletionRequest struct {
	Messages    []CompletionMessage
	MaxTokens   int
	Temperature float32
}

// CompletionResponse represents a response from a completion request.
type CompletionResponse struct {
	Content    string // Main response text
	StopReason string // Why the response stopped: "end_turn", "max_tokens", etc.
}

// Client defines the interface for language model interactions. There is no
// streaming or tool calling; all structure in responses is extracted by
// best-effort text parsing on the caller's side.
type Client interface {
	// Complete generates a completion synchronously.
	Complete(ctx context.Context, in CompletionRequest) (CompletionResponse, error)

	// GetModelName returns the model name for this client.
	GetModelName() string
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) CompletionMessage {
	return CompletionMessage{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) CompletionMessage {
	return CompletionMessage{Role: RoleUser, Content: content}
}

// NewUserMessageWithImages creates a user message carrying inline images.
func NewUserMessageWithImages(content string, images []ImageAttachment) CompletionMessage {
	return CompletionMessage{Role: RoleUser, Content: content, Images: images}
}

// ValidateRequest checks basic request invariants shared by all providers.
func ValidateRequest(in *CompletionRequest) error {
	if len(in.Messages) == 0 {
		return fmt.Errorf("message list cannot be empty")
	}
	if in.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive")
	}
	if in.Temperature < 0.0 || in.Temperature > 2.0 {
		return fmt.Errorf("temperature must be between 0.0 and 2.0")
	}
	return nil
}

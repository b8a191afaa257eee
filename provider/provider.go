package provider

import (
	"context"
	"encoding/json"

	"greensentry/tools"
)

// Provider is the interface for AI backends.
// GreenSentry ships an Anthropic implementation; anything that can route
// tool calls and stream text can sit behind this.
type Provider interface {
	// Chat sends a conversation to the LLM and gets a response.
	// The response may include tool calls that need to be executed.
	Chat(ctx context.Context, systemPrompt string, messages []Message, tools []tools.Tool) (Message, error)

	// ChatStream sends a conversation and returns a channel for streaming responses.
	ChatStream(ctx context.Context, systemPrompt string, messages []Message, tools []tools.Tool) (<-chan StreamDelta, error)

	// Name returns the provider name for logging.
	Name() string

	// ListModels returns available models from the provider.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// SetModel changes the active model.
	SetModel(model string)

	// GetModel returns the current model.
	GetModel() string
}

// ModelInfo describes an available model.
type ModelInfo struct {
	ID   string
	Name string
}

// Message represents a conversation message.
// This is a simplified, provider-agnostic format.
type Message struct {
	Role        string       // "user" or "assistant"
	Content     string       // Text content
	ToolCalls   []ToolCall   // Tools the assistant wants to use
	ToolResults []ToolResult // Results from tool execution
}

// ToolCall represents a request from the LLM to execute a tool.
type ToolCall struct {
	ID    string          // Unique identifier for this call
	Name  string          // Tool name
	Input json.RawMessage // Tool input as JSON
}

// ToolResult contains the output of a tool execution.
type ToolResult struct {
	ID      string // Matches ToolCall.ID
	Content string // Tool output
	IsError bool   // Whether the result is an error
}

// StreamDelta represents a chunk from streaming responses.
type StreamDelta struct {
	Content  string    // Text content chunk
	ToolCall *ToolCall // Completed tool call
	Error    error     // Error if streaming failed
	Done     bool      // True when stream is complete
}

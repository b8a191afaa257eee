package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"greensentry/provider"
	"greensentry/tools"
)

// TestHarness drives the agent's tool loop against a MockProvider so tests
// can script tool routing without a live backend or real collaborators.
type TestHarness struct {
	provider     *MockProvider
	registry     *tools.Registry
	systemPrompt string

	mu           sync.Mutex
	conversation []provider.Message
	toolCalls    []provider.ToolCall
	toolResults  []provider.ToolResult
	errors       []error
}

func NewHarness() *TestHarness {
	return &TestHarness{
		provider: NewMockProvider(),
		registry: tools.NewRegistry(),
	}
}

func (h *TestHarness) WithSystemPrompt(prompt string) *TestHarness {
	h.systemPrompt = prompt
	return h
}

func (h *TestHarness) WithTool(t tools.Tool) *TestHarness {
	h.registry.Register(t)
	return h
}

func (h *TestHarness) QueueTextResponse(content string) *TestHarness {
	h.provider.QueueTextResponse(content)
	return h
}

func (h *TestHarness) QueueToolCall(toolName string, input map[string]interface{}) *TestHarness {
	h.provider.QueueToolCall(toolName, input)
	return h
}

func (h *TestHarness) QueueToolCallWithFollowup(toolName string, input map[string]interface{}, followup string) *TestHarness {
	h.provider.QueueToolCallWithFollowup(toolName, input, followup)
	return h
}

func (h *TestHarness) SendUserMessage(message string) *TestHarness {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conversation = append(h.conversation, provider.Message{
		Role:    "user",
		Content: message,
	})
	return h
}

// Run performs one agent turn: inference, then the tool loop until the
// provider answers with plain text.
func (h *TestHarness) Run(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.conversation) == 0 {
		return fmt.Errorf("no user messages to process")
	}

	response, err := h.provider.Chat(ctx, h.systemPrompt, h.conversation, h.registry.All())
	if err != nil {
		h.errors = append(h.errors, err)
		return err
	}
	h.conversation = append(h.conversation, response)

	for len(response.ToolCalls) > 0 {
		var toolResults []provider.ToolResult

		for _, tc := range response.ToolCalls {
			h.toolCalls = append(h.toolCalls, tc)

			tool, ok := h.registry.Get(tc.Name)
			if !ok {
				result := provider.ToolResult{
					ID:      tc.ID,
					Content: fmt.Sprintf("tool '%s' not found", tc.Name),
					IsError: true,
				}
				toolResults = append(toolResults, result)
				h.toolResults = append(h.toolResults, result)
				continue
			}

			output, toolErr := tool.Function(ctx, tc.Input)
			result := provider.ToolResult{
				ID:      tc.ID,
				Content: output,
				IsError: toolErr != nil,
			}
			if toolErr != nil {
				result.Content = toolErr.Error()
			}
			toolResults = append(toolResults, result)
			h.toolResults = append(h.toolResults, result)
		}

		h.conversation = append(h.conversation, provider.Message{
			Role:        "user",
			ToolResults: toolResults,
		})

		response, err = h.provider.Chat(ctx, h.systemPrompt, h.conversation, h.registry.All())
		if err != nil {
			h.errors = append(h.errors, err)
			return err
		}
		h.conversation = append(h.conversation, response)
	}

	return nil
}

func (h *TestHarness) GetConversation() []provider.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conversation
}

func (h *TestHarness) GetToolCalls() []provider.ToolCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.toolCalls
}

func (h *TestHarness) GetProvider() *MockProvider {
	return h.provider
}

func (h *TestHarness) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.provider.Reset()
	h.conversation = nil
	h.toolCalls = nil
	h.toolResults = nil
	h.errors = nil
}

func (h *TestHarness) ToolWasCalled(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, tc := range h.toolCalls {
		if tc.Name == name {
			return true
		}
	}
	return false
}

func (h *TestHarness) ToolCallCount(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	count := 0
	for _, tc := range h.toolCalls {
		if tc.Name == name {
			count++
		}
	}
	return count
}

func (h *TestHarness) LastAssistantMessage() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.conversation) - 1; i >= 0; i-- {
		if h.conversation[i].Role == "assistant" && h.conversation[i].Content != "" {
			return h.conversation[i].Content
		}
	}
	return ""
}

func (h *TestHarness) GetToolCallInput(name string) (json.RawMessage, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, tc := range h.toolCalls {
		if tc.Name == name {
			return tc.Input, true
		}
	}
	return nil, false
}

func (h *TestHarness) GetToolResult(name string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, tc := range h.toolCalls {
		if tc.Name == name && i < len(h.toolResults) {
			return h.toolResults[i].Content, true
		}
	}
	return "", false
}

func (h *TestHarness) AssertConversationContains(substring string) error {
	for _, msg := range h.conversation {
		if strings.Contains(msg.Content, substring) {
			return nil
		}
	}
	return fmt.Errorf("conversation does not contain '%s'", substring)
}

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"greensentry/tools"
)

// Anthropic implements Provider on the Anthropic Messages API.
type Anthropic struct {
	client anthropic.Client

	mu          sync.Mutex
	model       string
	maxTokens   int64
	temperature float64
}

// Config selects the backend identity explicitly. Nothing here is read from
// the environment at call time - the caller resolves credentials and model
// names once at startup and passes them in.
type Config struct {
	APIKey      string  // empty falls back to the SDK's own env lookup
	Model       string  // empty falls back to DefaultModel
	MaxTokens   int     // 0 falls back to 1024
	Temperature float64 // applied when > 0
}

// DefaultModel is used when no model is configured.
const DefaultModel = string(anthropic.ModelClaude3_7SonnetLatest)

// NewAnthropic creates a provider from explicit configuration.
func NewAnthropic(cfg Config) *Anthropic {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 1024
	}

	return &Anthropic{
		client:      anthropic.NewClient(opts...),
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}
}

func (p *Anthropic) Name() string {
	return fmt.Sprintf("anthropic(%s)", p.GetModel())
}

func (p *Anthropic) GetModel() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.model
}

func (p *Anthropic) SetModel(model string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.model = model
}

func (p *Anthropic) ListModels(ctx context.Context) ([]ModelInfo, error) {
	page, err := p.client.Models.List(ctx, anthropic.ModelListParams{})
	if err != nil {
		return nil, fmt.Errorf("model list failed: %w", err)
	}

	var models []ModelInfo
	for _, m := range page.Data {
		models = append(models, ModelInfo{ID: string(m.ID), Name: m.DisplayName})
	}
	return models, nil
}

// Chat implements the Provider interface with a single blocking request.
func (p *Anthropic) Chat(ctx context.Context, systemPrompt string, messages []Message, toolDefs []tools.Tool) (Message, error) {
	params := p.buildParams(systemPrompt, messages, toolDefs)

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return Message{}, fmt.Errorf("anthropic request failed: %w", err)
	}
	return convertFromAnthropic(message), nil
}

// ChatStream streams text deltas as they arrive. Tool calls are emitted once
// the stream finishes accumulating, followed by a Done marker.
func (p *Anthropic) ChatStream(ctx context.Context, systemPrompt string, messages []Message, toolDefs []tools.Tool) (<-chan StreamDelta, error) {
	params := p.buildParams(systemPrompt, messages, toolDefs)
	stream := p.client.Messages.NewStreaming(ctx, params)

	ch := make(chan StreamDelta)
	go func() {
		defer close(ch)

		var accumulated anthropic.Message
		for stream.Next() {
			event := stream.Current()
			if err := accumulated.Accumulate(event); err != nil {
				ch <- StreamDelta{Error: fmt.Errorf("stream accumulation failed: %w", err), Done: true}
				return
			}

			switch eventVariant := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				switch delta := eventVariant.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					ch <- StreamDelta{Content: delta.Text}
				}
			}
		}
		if err := stream.Err(); err != nil {
			ch <- StreamDelta{Error: fmt.Errorf("anthropic stream failed: %w", err), Done: true}
			return
		}

		final := convertFromAnthropic(&accumulated)
		for i := range final.ToolCalls {
			ch <- StreamDelta{ToolCall: &final.ToolCalls[i]}
		}
		ch <- StreamDelta{Done: true}
	}()

	return ch, nil
}

func (p *Anthropic) buildParams(systemPrompt string, messages []Message, toolDefs []tools.Tool) anthropic.MessageNewParams {
	p.mu.Lock()
	model := p.model
	maxTokens := p.maxTokens
	temperature := p.temperature
	p.mu.Unlock()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  convertToAnthropicMessages(messages),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}
	if temperature > 0 {
		params.Temperature = anthropic.Float(temperature)
	}
	if len(toolDefs) > 0 {
		anthropicTools := make([]anthropic.ToolUnionParam, 0, len(toolDefs))
		for _, t := range toolDefs {
			anthropicTools = append(anthropicTools, t.ToAnthropic())
		}
		params.Tools = anthropicTools
	}
	return params
}

// convertToAnthropicMessages maps the provider-agnostic conversation onto
// Anthropic content blocks. Tool results ride in user messages; assistant
// tool requests are reconstructed as tool_use blocks.
func convertToAnthropicMessages(messages []Message) []anthropic.MessageParam {
	result := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		switch {
		case len(msg.ToolResults) > 0:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.ToolResults))
			for _, tr := range msg.ToolResults {
				blocks = append(blocks, anthropic.NewToolResultBlock(tr.ID, tr.Content, tr.IsError))
			}
			result = append(result, anthropic.NewUserMessage(blocks...))

		case msg.Role == "assistant":
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    tc.ID,
						Name:  tc.Name,
						Input: json.RawMessage(tc.Input),
					},
				})
			}
			result = append(result, anthropic.NewAssistantMessage(blocks...))

		default:
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	return result
}

func convertFromAnthropic(message *anthropic.Message) Message {
	out := Message{Role: "assistant"}

	var text strings.Builder
	for _, block := range message.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:    block.ID,
				Name:  block.Name,
				Input: json.RawMessage(block.Input),
			})
		}
	}
	out.Content = text.String()

	return out
}

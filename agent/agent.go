package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"greensentry/provider"
	"greensentry/tools"
)

// Agent runs THE LOOP.
//
// The loop is the heart of the whole program and it is surprisingly simple:
//
//	1. Get user input
//	2. Send to LLM for inference
//	3. Check if LLM wants to use a tool
//	4. If yes: execute tool, send result back to LLM, goto 3
//	5. If no: stream the response to the user, goto 1
//
// Everything else is tools (what the agent CAN do) and the system prompt
// (HOW it behaves). The conversation slice is the session memory - it grows
// with every turn so follow-up questions work.
type Agent struct {
	provider     provider.Provider
	getUserInput func() (string, bool)
	tools        *tools.Registry
	systemPrompt string
	verbose      bool
}

// Config holds agent configuration.
type Config struct {
	Provider     provider.Provider
	GetUserInput func() (string, bool)
	Tools        *tools.Registry
	SystemPrompt string
	Verbose      bool
}

// New creates a new Agent with the given configuration.
func New(cfg Config) *Agent {
	return &Agent{
		provider:     cfg.Provider,
		getUserInput: cfg.GetUserInput,
		tools:        cfg.Tools,
		systemPrompt: cfg.SystemPrompt,
		verbose:      cfg.Verbose,
	}
}

// Run starts the agent loop.
func (a *Agent) Run(ctx context.Context) error {
	var conversation []provider.Message

	a.printBanner()

	for {
		// Step 1: Get user input
		fmt.Print("\033[94mYou\033[0m: ")
		userInput, ok := a.getUserInput()
		if !ok {
			a.log("User input stream ended")
			fmt.Println("\n\033[90mGoodbye!\033[0m")
			break
		}

		userInput = strings.TrimSpace(userInput)
		if userInput == "" {
			continue
		}
		if userInput == "quit" || userInput == "exit" || userInput == "/exit" {
			fmt.Println("\033[90mGoodbye!\033[0m")
			break
		}
		if userInput == "/help" {
			a.printHelp()
			continue
		}
		if userInput == "/clear" {
			conversation = nil
			fmt.Println("\033[90mConversation cleared.\033[0m")
			continue
		}
		if userInput == "/models" {
			a.printModels(ctx)
			continue
		}

		// /audit <code> bypasses the model's tool routing and calls the
		// auditor directly - no routing uncertainty.
		if code, ok := strings.CutPrefix(userInput, "/audit "); ok {
			a.runDirectAudit(ctx, code)
			continue
		}

		a.log("User: %q", userInput)

		conversation = append(conversation, provider.Message{
			Role:    "user",
			Content: userInput,
		})

		// Step 2: Send to LLM for inference, streaming text as it arrives
		response, err := a.streamResponse(ctx, conversation)
		if err != nil {
			return fmt.Errorf("inference failed: %w", err)
		}
		conversation = append(conversation, response)

		// Step 3-4: Tool loop - keep going while the LLM wants tools
		for len(response.ToolCalls) > 0 {
			a.log("Processing %d tool calls", len(response.ToolCalls))

			toolResults := a.executeToolCalls(ctx, response.ToolCalls)
			conversation = append(conversation, provider.Message{
				Role:        "user",
				ToolResults: toolResults,
			})

			response, err = a.streamResponse(ctx, conversation)
			if err != nil {
				return fmt.Errorf("inference failed: %w", err)
			}
			conversation = append(conversation, response)
		}

		fmt.Println()
	}

	return nil
}

// streamResponse sends the conversation and prints text deltas as they
// arrive, returning the accumulated assistant message.
func (a *Agent) streamResponse(ctx context.Context, conversation []provider.Message) (provider.Message, error) {
	ch, err := a.provider.ChatStream(ctx, a.systemPrompt, conversation, a.tools.All())
	if err != nil {
		return provider.Message{}, err
	}

	response := provider.Message{Role: "assistant"}
	labelPrinted := false

	for delta := range ch {
		if delta.Error != nil {
			if labelPrinted {
				fmt.Println()
			}
			return response, delta.Error
		}
		if delta.Content != "" {
			if !labelPrinted {
				fmt.Print("\033[93mGreenSentry\033[0m: ")
				labelPrinted = true
			}
			fmt.Print(delta.Content)
			response.Content += delta.Content
		}
		if delta.ToolCall != nil {
			response.ToolCalls = append(response.ToolCalls, *delta.ToolCall)
		}
	}
	if labelPrinted {
		fmt.Println()
	}

	return response, nil
}

// executeToolCalls runs each requested tool and collects the results.
// Tool failures become error results for the model, never a crash.
func (a *Agent) executeToolCalls(ctx context.Context, toolCalls []provider.ToolCall) []provider.ToolResult {
	var toolResults []provider.ToolResult

	for _, tc := range toolCalls {
		fmt.Printf("\033[96m[tool]\033[0m %s\n", tc.Name)

		result, toolErr := a.executeTool(ctx, tc)

		displayResult := result
		if len(displayResult) > 500 {
			displayResult = displayResult[:500] + "..."
		}
		if toolErr != nil {
			fmt.Printf("\033[91m[error]\033[0m %s\n", toolErr.Error())
			result = toolErr.Error()
		} else {
			fmt.Printf("\033[92m[result]\033[0m %s\n", displayResult)
		}

		toolResults = append(toolResults, provider.ToolResult{
			ID:      tc.ID,
			Content: result,
			IsError: toolErr != nil,
		})
	}

	return toolResults
}

// executeTool runs a tool and returns its result.
func (a *Agent) executeTool(ctx context.Context, tc provider.ToolCall) (string, error) {
	tool, ok := a.tools.Get(tc.Name)
	if !ok {
		return "", fmt.Errorf("tool '%s' not found", tc.Name)
	}

	a.log("Executing tool: %s", tc.Name)
	result, err := tool.Function(ctx, tc.Input)
	if err != nil {
		a.log("Tool error: %v", err)
	} else {
		a.log("Tool success, result length: %d", len(result))
	}

	return result, err
}

func (a *Agent) runDirectAudit(ctx context.Context, code string) {
	tool, ok := a.tools.Get("audit_code")
	if !ok {
		fmt.Println("\033[91m[error]\033[0m audit_code tool is not registered")
		return
	}

	fmt.Print("\033[93mGreenSentry\033[0m: ")
	input, _ := encodeAuditInput(code)
	result, err := tool.Function(ctx, input)
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	fmt.Println(result + "\n")
}

func (a *Agent) printModels(ctx context.Context) {
	models, err := a.provider.ListModels(ctx)
	if err != nil {
		fmt.Printf("\033[91m[error]\033[0m %s\n", err.Error())
		return
	}
	fmt.Printf("\033[90mModels available on %s (active: %s):\033[0m\n", a.provider.Name(), a.provider.GetModel())
	for _, m := range models {
		fmt.Printf("  %s  %s\n", m.ID, m.Name)
	}
}

func (a *Agent) printHelp() {
	fmt.Println("\033[90mCommands:")
	fmt.Println("  /audit <code>  - directly audit a code snippet for energy efficiency")
	fmt.Println("  /models        - list available models")
	fmt.Println("  /clear         - forget the conversation so far")
	fmt.Println("  /help          - show this help")
	fmt.Println("  quit, exit     - end the session\033[0m")
}

func (a *Agent) log(format string, args ...interface{}) {
	if a.verbose {
		log.Printf(format, args...)
	}
}

func encodeAuditInput(code string) (json.RawMessage, error) {
	b, err := json.Marshal(map[string]string{"code": code})
	return json.RawMessage(b), err
}

func (a *Agent) printBanner() {
	fmt.Println("\033[1;32m🌿 GreenSentry\033[0m \033[1;33m- Sustainability SRE Agent\033[0m")
	fmt.Printf("\033[90mBackend: %s\033[0m\n", a.provider.Name())
	fmt.Println("\033[90mAsk about your carbon footprint, or /help for commands\033[0m")
	fmt.Println()
}

package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"greensentry/agent"
	"greensentry/auditor"
	"greensentry/billing"
	"greensentry/probe"
	"greensentry/provider"
	"greensentry/tools"
)

//go:embed GREENSENTRY.md
var embeddedPrompt string

const Version = "1.0.0"

func main() {
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	version := flag.Bool("version", false, "Print version and exit")
	model := flag.String("model", "", "Chat model (overrides GREENSENTRY_MODEL)")
	auditorModel := flag.String("auditor-model", "", "Fine-tuned auditor model (overrides GREENSENTRY_AUDITOR_MODEL)")
	maxTokens := flag.Int("max-tokens", 1024, "Maximum tokens for responses")
	sampleInterval := flag.Duration("sample-interval", time.Second, "CPU sampling interval for local audits")
	flag.Parse()

	if *version {
		fmt.Printf("GreenSentry v%s\n", Version)
		os.Exit(0)
	}

	setupLogging(*verbose)

	// Credentials and deployment names come from .env or the environment,
	// resolved once here and passed down explicitly.
	if err := godotenv.Load(); err == nil && *verbose {
		log.Println("Loaded .env")
	}

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "Error: ANTHROPIC_API_KEY is not set")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "GreenSentry needs an Anthropic API key to reach its chat model.")
		fmt.Fprintln(os.Stderr, "Set ANTHROPIC_API_KEY in your environment or a .env file, then try again.")
		os.Exit(1)
	}

	chatModel := firstNonEmpty(*model, os.Getenv("GREENSENTRY_MODEL"))
	ftModel := firstNonEmpty(*auditorModel, os.Getenv("GREENSENTRY_AUDITOR_MODEL"))

	chatProvider := provider.NewAnthropic(provider.Config{
		APIKey:    apiKey,
		Model:     chatModel,
		MaxTokens: *maxTokens,
	})
	log.Printf("Backend: %s", chatProvider.Name())

	// The auditor gets its own provider instance: low temperature, short
	// answers, and possibly a different (fine-tuned) model.
	auditorProvider := provider.NewAnthropic(provider.Config{
		APIKey:      apiKey,
		Model:       chatProvider.GetModel(),
		MaxTokens:   400,
		Temperature: 0.2,
	})
	aud := auditor.New(auditorProvider, auditor.Config{
		Model:    ftModel,
		Fallback: chatProvider.GetModel(),
	})
	if *verbose {
		log.Printf("Code auditor: %s", aud.Label())
	}

	// The cloud audit tool stays registered even without a subscription ID
	// so the agent can explain what's missing instead of hiding the tool.
	var spendSource billing.Source = billing.Unconfigured{}
	if subscriptionID := os.Getenv("AZURE_SUBSCRIPTION_ID"); subscriptionID != "" {
		src, err := billing.NewAzureConsumption(subscriptionID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		spendSource = src
	}

	registry := tools.NewRegistry()
	registry.Register(tools.NewGreenMetricsTool(probe.NewHardware(*sampleInterval)))
	registry.Register(tools.NewCloudEstimateTool(spendSource))
	registry.Register(tools.NewAuditCodeTool(aud.Audit))

	if *verbose {
		log.Printf("Registered %d tools: %v", len(registry.All()), registry.Names())
	}

	reader := agent.NewInputReader()
	a := agent.New(agent.Config{
		Provider:     chatProvider,
		GetUserInput: reader.ReadLine,
		Tools:        registry,
		SystemPrompt: loadSystemPrompt(),
		Verbose:      *verbose,
	})

	if err := a.Run(context.Background()); err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		os.Exit(1)
	}
}

func setupLogging(verbose bool) {
	if verbose {
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		log.Println("GreenSentry starting with verbose logging")
	} else {
		log.SetOutput(os.Stdout)
		log.SetFlags(0)
		log.SetPrefix("")
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func loadSystemPrompt() string {
	if content, err := os.ReadFile("GREENSENTRY.md"); err == nil {
		return string(content)
	}
	return embeddedPrompt
}

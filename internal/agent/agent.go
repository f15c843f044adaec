package agent

import (
	"context"
	"fmt"
	"os"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/anthropic"
	"github.com/spf13/cobra"
)

const (
	defaultModel        = "claude-haiku-4-5"
	defaultSystemPrompt = "You are a helpful CRM analytics assistant. You have access to tools that can run SQL against the CRM database, inspect its schema, and process full natural-language questions into insights. Use these tools when appropriate to provide accurate, data-backed answers about customers, leads, orders, products, and sales users."
)

// DB is the database capability the agent's tools need.
type DB interface {
	ExecuteQuery(sqlText string) ([]map[string]interface{}, error)
}

// Processor runs a natural-language question through the full
// generate-execute-analyze pipeline.
type Processor interface {
	ProcessQuery(question string) (insights string, sql string, err error)
}

// AgentConfig holds the configuration for creating an ask agent
type AgentConfig struct {
	apiKey       string
	model        string
	systemPrompt string
	exclusions   []string
	db           DB
	processor    Processor
	schemaText   string
}

// AgentOption is a functional option for configuring the agent
type AgentOption func(*AgentConfig) error

// WithAPIKey sets the Anthropic API key
func WithAPIKey(apiKey string) AgentOption {
	return func(c *AgentConfig) error {
		if apiKey == "" {
			return fmt.Errorf("API key cannot be empty")
		}
		c.apiKey = apiKey
		return nil
	}
}

// WithAPIKeyFromEnv sets the API key from the ANTHROPIC_API_KEY environment variable
func WithAPIKeyFromEnv() AgentOption {
	return func(c *AgentConfig) error {
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
		c.apiKey = apiKey
		return nil
	}
}

// WithModel sets the Claude model to use (default: claude-haiku-4-5)
func WithModel(model string) AgentOption {
	return func(c *AgentConfig) error {
		if model == "" {
			return fmt.Errorf("model cannot be empty")
		}
		c.model = model
		return nil
	}
}

// WithSystemPrompt sets a custom system prompt
func WithSystemPrompt(prompt string) AgentOption {
	return func(c *AgentConfig) error {
		c.systemPrompt = prompt
		return nil
	}
}

// WithToolExclusions sets command names to exclude from tool generation
func WithToolExclusions(exclusions []string) AgentOption {
	return func(c *AgentConfig) error {
		c.exclusions = exclusions
		return nil
	}
}

// WithDB sets the database used by the query and schema tools
func WithDB(db DB) AgentOption {
	return func(c *AgentConfig) error {
		c.db = db
		return nil
	}
}

// WithProcessor sets the pipeline used by the insights tool
func WithProcessor(processor Processor) AgentOption {
	return func(c *AgentConfig) error {
		c.processor = processor
		return nil
	}
}

// WithSchemaDescription sets the schema text the schema tool returns
func WithSchemaDescription(schema string) AgentOption {
	return func(c *AgentConfig) error {
		c.schemaText = schema
		return nil
	}
}

// NewAskAgent creates a new Fantasy agent configured for answering CRM
// analytics questions. It uses the Options pattern for flexible configuration.
func NewAskAgent(rootCmd *cobra.Command, opts ...AgentOption) (fantasy.Agent, error) {
	// Initialize config with defaults
	config := &AgentConfig{
		model:        defaultModel,
		systemPrompt: defaultSystemPrompt,
		exclusions:   []string{"serve", "ask", "seed"},
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	// Validate required fields
	if config.apiKey == "" {
		return nil, fmt.Errorf("API key is required (use WithAPIKey or WithAPIKeyFromEnv)")
	}
	if config.db == nil {
		return nil, fmt.Errorf("database is required (use WithDB)")
	}
	if config.processor == nil {
		return nil, fmt.Errorf("processor is required (use WithProcessor)")
	}

	// Create Fantasy provider for Anthropic
	provider, err := anthropic.New(anthropic.WithAPIKey(config.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Anthropic provider: %w", err)
	}

	ctx := context.Background()

	// Create language model
	model, err := provider.LanguageModel(ctx, config.model)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Claude model: %w", err)
	}

	// Create tools from registered commands
	agentTools := CreateToolsFromCommands(rootCmd, config)

	// Create and return the agent
	agent := fantasy.NewAgent(
		model,
		fantasy.WithSystemPrompt(config.systemPrompt),
		fantasy.WithTools(agentTools...),
	)

	return agent, nil
}

// GenerateResponse is a convenience function that creates an agent and generates a response in one call
func GenerateResponse(ctx context.Context, question string, rootCmd *cobra.Command, opts ...AgentOption) (string, error) {
	agent, err := NewAskAgent(rootCmd, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create agent: %w", err)
	}

	result, err := agent.Generate(ctx, fantasy.AgentCall{Prompt: question})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	return result.Response.Content.Text(), nil
}

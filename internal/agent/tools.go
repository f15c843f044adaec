package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"charm.land/fantasy"
	"github.com/spf13/cobra"
)

// CreateToolsFromCommands creates Fantasy tools from all registered Cobra
// commands except for the configured exclusions (e.g., "serve", "ask")
func CreateToolsFromCommands(rootCmd *cobra.Command, config *AgentConfig) []fantasy.AgentTool {
	var tools []fantasy.AgentTool

	// Iterate through all registered commands
	for _, cobraCmd := range rootCmd.Commands() {
		// Check if command should be excluded
		skip := false
		for _, excl := range config.exclusions {
			if cobraCmd.Use == excl || strings.HasPrefix(cobraCmd.Use, excl) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}

		tool := createToolForCommand(cobraCmd, config)
		if tool != nil {
			tools = append(tools, tool)
		}
	}

	return tools
}

// commandTool adapts a Cobra command's handler and hand-built JSON schema to
// the fantasy.AgentTool interface.
type commandTool struct {
	name            string
	description     string
	schema          map[string]interface{}
	fn              func(ctx context.Context, params map[string]interface{}) (string, error)
	providerOptions fantasy.ProviderOptions
}

// Function returns the underlying tool function.
func (t *commandTool) Function() func(ctx context.Context, params map[string]interface{}) (string, error) {
	return t.fn
}

func (t *commandTool) Info() fantasy.ToolInfo {
	properties, _ := t.schema["properties"].(map[string]interface{})
	if properties == nil {
		properties = map[string]interface{}{}
	}
	required, _ := t.schema["required"].([]string)
	if required == nil {
		required = []string{}
	}
	return fantasy.ToolInfo{
		Name:        t.name,
		Description: t.description,
		Parameters:  properties,
		Required:    required,
	}
}

func (t *commandTool) Run(ctx context.Context, call fantasy.ToolCall) (fantasy.ToolResponse, error) {
	params := map[string]interface{}{}
	if call.Input != "" {
		if err := json.Unmarshal([]byte(call.Input), &params); err != nil {
			return fantasy.NewTextErrorResponse(fmt.Sprintf("invalid parameters: %s", err)), nil
		}
	}
	out, err := t.fn(ctx, params)
	if err != nil {
		return fantasy.NewTextErrorResponse(err.Error()), nil
	}
	return fantasy.NewTextResponse(out), nil
}

func (t *commandTool) ProviderOptions() fantasy.ProviderOptions {
	return t.providerOptions
}

func (t *commandTool) SetProviderOptions(opts fantasy.ProviderOptions) {
	t.providerOptions = opts
}

// createToolForCommand creates a Fantasy tool from a Cobra command
func createToolForCommand(cobraCmd *cobra.Command, config *AgentConfig) *commandTool {
	// Extract the command name (first word in Use)
	cmdName := strings.Split(cobraCmd.Use, " ")[0]

	// Create tool description from command's Short description
	description := cobraCmd.Short
	if description == "" {
		description = fmt.Sprintf("Execute the %s command", cmdName)
	}

	// Create the tool function that calls the underlying functionality directly
	toolFunc := func(ctx context.Context, params map[string]interface{}) (string, error) {
		var result interface{}

		switch cmdName {
		case "query":
			sqlText, ok := params["sql"].(string)
			if !ok || sqlText == "" {
				return "", fmt.Errorf("sql parameter is required")
			}

			rows, err := config.db.ExecuteQuery(sqlText)
			if err != nil {
				return "", fmt.Errorf("failed to execute query: %v", err)
			}

			result = rows

		case "schema":
			if config.schemaText != "" {
				return config.schemaText, nil
			}
			return "", fmt.Errorf("schema description is not configured")

		case "insights":
			question, ok := params["question"].(string)
			if !ok || question == "" {
				return "", fmt.Errorf("question parameter is required")
			}

			insights, sqlText, err := config.processor.ProcessQuery(question)
			if err != nil {
				return "", fmt.Errorf("failed to process question: %v", err)
			}

			result = map[string]string{
				"sql":      sqlText,
				"insights": insights,
			}

		default:
			return "", fmt.Errorf("unsupported command: %s", cmdName)
		}

		// Convert result to JSON
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode result as JSON: %v", err)
		}

		return string(jsonBytes), nil
	}

	// Create parameter schema based on command
	var paramSchema map[string]interface{}

	switch cmdName {
	case "query":
		paramSchema = map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"sql": map[string]interface{}{
					"type":        "string",
					"description": "PostgreSQL query to run against the CRM database",
				},
			},
			"required": []string{"sql"},
		}
	case "schema":
		paramSchema = map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		}
	case "insights":
		paramSchema = map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "Natural language business question to analyze end to end",
				},
			},
			"required": []string{"question"},
		}
	default:
		// Generic schema for other commands
		paramSchema = map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"args": map[string]interface{}{
					"type":        "string",
					"description": "Arguments for the command",
				},
			},
		}
	}

	return &commandTool{
		name:        cmdName,
		description: description,
		schema:      paramSchema,
		fn:          toolFunc,
	}
}

package cmd

import (
	"context"
	"fmt"

	"charm.land/fantasy"
	"github.com/spf13/cobra"

	"crminsights/internal/agent"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question using Claude AI via Fantasy",
	Long: `Ask a natural language question and get an AI-powered answer using Claude.
This command uses the Fantasy library to drive an agent with access to the
CRM database tools: it can inspect the schema, run SQL, and launch the full
insights pipeline on its own.

Requires ANTHROPIC_API_KEY environment variable to be set.

Example:
  crminsights ask "Which lead sources convert best and why?"
  crminsights ask "Compare January and February revenue"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		question := args[0]

		db, cleanup, err := InitDB()
		if err != nil {
			HandleError(err, "Failed to initialize database")
		}
		defer cleanup()

		processor, err := InitProcessor()
		if err != nil {
			HandleError(err, "Failed to initialize processor")
		}

		fantasyAgent, err := agent.NewAskAgent(
			rootCmd,
			agent.WithAPIKeyFromEnv(),
			agent.WithDB(db),
			agent.WithProcessor(&agentProcessorAdapter{processor: processor}),
			agent.WithSchemaDescription(SchemaDescription),
		)
		if err != nil {
			HandleError(err, "Failed to create agent")
		}

		ctx := context.Background()

		result, err := fantasyAgent.Generate(ctx, fantasy.AgentCall{Prompt: question})
		if err != nil {
			HandleError(err, "Failed to generate response")
		}

		fmt.Println(result.Response.Content.Text())
	},
}

// SchemaDescription is set by the main package and returned by the agent's
// schema tool.
var SchemaDescription string

// agentProcessorAdapter adapts ProcessorInterface to agent.Processor
type agentProcessorAdapter struct {
	processor ProcessorInterface
}

func (a *agentProcessorAdapter) ProcessQuery(question string) (string, string, error) {
	result := a.processor.ProcessQuery(question)
	if !result.Succeeded() {
		return "", "", fmt.Errorf("%s", result.Error)
	}
	return result.Insights, result.SQL, nil
}

func init() {
	rootCmd.AddCommand(askCmd)
}

package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crminsights",
	Short: "CRM Insights - Natural language analytics for CRM data",
	Long: `CRM Insights turns natural language business questions into SQL,
runs them against the CRM database, and synthesizes analytical insights
from the results using Claude.

When run without commands, it launches an interactive TUI.
Use subcommands for CLI mode with JSON output.

Configuration comes from environment variables: DB_HOST, DB_NAME, DB_USER,
DB_PASSWORD, DB_PORT, and ANTHROPIC_API_KEY.`,
	Run: func(cmd *cobra.Command, args []string) {
		// No subcommand specified - launch TUI
		LaunchTUI()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

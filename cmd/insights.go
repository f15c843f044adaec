package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var insightsJSON bool

var insightsCmd = &cobra.Command{
	Use:   "insights [question]",
	Short: "Convert a business question to SQL, run it, and analyze the results",
	Long: `Process a natural language business question end to end: generate SQL
with Claude, execute it against the CRM database, and synthesize insights
from the results. Failed attempts are retried with a fresh generation.

Examples:
  crminsights insights "What is our total revenue this month?"
  crminsights insights "Which sales user converted the most leads?"
  crminsights insights --json "Top 5 products by revenue"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		question := args[0]

		processor, err := InitProcessor()
		if err != nil {
			HandleError(err, "Failed to initialize processor")
		}

		result := processor.ProcessQuery(question)

		if insightsJSON {
			output, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				HandleError(err, "Failed to encode JSON")
			}
			fmt.Println(string(output))
			if !result.Succeeded() {
				os.Exit(1)
			}
			return
		}

		if !result.Succeeded() {
			HandleError(fmt.Errorf("%s", result.Error), "Query failed")
		}

		fmt.Printf("SQL:\n%s\n\n", result.SQL)
		fmt.Printf("Rows returned: %d\n\n", len(result.Results))
		fmt.Printf("Insights:\n%s\n", result.Insights)
	},
}

func init() {
	insightsCmd.Flags().BoolVar(&insightsJSON, "json", false, "Emit the full result as JSON")
	rootCmd.AddCommand(insightsCmd)
}

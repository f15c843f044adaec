package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var queryString string

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run raw SQL against the CRM database",
	Long: `Execute the requested QUERY against the CRM PostgreSQL database and
print the rows as JSON. The query can be any valid PostgreSQL statement.

Examples:
  crminsights query --sql "SELECT * FROM lead LIMIT 5"
  crminsights query --sql "SELECT COUNT(*) AS total FROM ordertab WHERE deleted = false"`,
	Run: func(cmd *cobra.Command, args []string) {
		if queryString == "" {
			HandleError(fmt.Errorf("query is required"), "Missing query parameter")
		}

		db, cleanup, err := InitDB()
		if err != nil {
			HandleError(err, "Failed to initialize database")
		}
		defer cleanup()

		rows, err := db.ExecuteQuery(queryString)
		if err != nil {
			HandleError(err, "Failed to execute query")
		}

		output, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			HandleError(err, "Failed to encode JSON")
		}

		fmt.Println(string(output))
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryString, "sql", "q", "", "SQL query to execute (required)")
	_ = queryCmd.MarkFlagRequired("sql")
	rootCmd.AddCommand(queryCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the CRM schema and load sample data",
	Long: `Create the CRM tables and load a deterministic sample dataset
spanning January through March 2024. Existing CRM tables are dropped and
recreated, so this command is destructive.

Examples:
  crminsights seed`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("📊 Seeding CRM database...")

		if err := SeedDatabase(); err != nil {
			HandleError(err, "Failed to seed database")
		}

		fmt.Println("✅ Database seeded successfully!")
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

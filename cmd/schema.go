package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// SchemaOutput represents the schema information for a table
type SchemaOutput struct {
	TableName   string       `json:"table_name"`
	ColumnCount int          `json:"column_count"`
	Columns     []ColumnInfo `json:"columns"`
}

// ColumnInfo represents information about a single column
type ColumnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable string `json:"nullable"`
}

// crmTableNames lists the CRM tables inspected by the schema command.
var crmTableNames = []string{
	"bizuser",
	"customer",
	"lead",
	"leadfollowup",
	"product",
	"ordertab",
	"order_product_mapping",
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Retrieve a summary of the CRM database schema",
	Long: `Retrieve a summary of the CRM database schema.
This command returns information about the CRM tables and their columns.

Examples:
  crminsights schema`,
	Run: func(cmd *cobra.Command, args []string) {
		db, cleanup, err := InitDB()
		if err != nil {
			HandleError(err, "Failed to initialize database")
		}
		defer cleanup()

		schemas := make([]SchemaOutput, 0, len(crmTableNames))
		for _, tableName := range crmTableNames {
			schema, err := getTableSchema(db, tableName)
			if err != nil {
				// Skip tables that don't exist
				continue
			}
			if schema.ColumnCount == 0 {
				continue
			}
			schemas = append(schemas, schema)
		}

		output, err := json.MarshalIndent(schemas, "", "  ")
		if err != nil {
			HandleError(err, "Failed to encode JSON")
		}

		fmt.Println(string(output))
	},
}

// getTableSchema retrieves schema information for a specific table
func getTableSchema(db DBInterface, tableName string) (SchemaOutput, error) {
	query := fmt.Sprintf(
		`SELECT column_name, data_type, is_nullable FROM information_schema.columns WHERE table_name = '%s' ORDER BY ordinal_position`,
		tableName)
	rows, err := db.ExecuteQuery(query)
	if err != nil {
		return SchemaOutput{}, fmt.Errorf("failed to get schema for table %s: %w", tableName, err)
	}

	schema := SchemaOutput{
		TableName: tableName,
		Columns:   []ColumnInfo{},
	}

	for _, row := range rows {
		name, _ := row["column_name"].(string)
		colType, _ := row["data_type"].(string)
		nullable, _ := row["is_nullable"].(string)

		schema.Columns = append(schema.Columns, ColumnInfo{
			Name:     name,
			Type:     colType,
			Nullable: nullable,
		})
	}

	schema.ColumnCount = len(schema.Columns)

	return schema, nil
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// Mock implementations for testing
type mockDB struct {
	queries []string
}

func (m *mockDB) ExecuteQuery(sqlText string) ([]map[string]interface{}, error) {
	m.queries = append(m.queries, sqlText)
	return []map[string]interface{}{
		{"name": "Acme Corp", "total": 1250.5},
	}, nil
}

type mockProcessor struct {
	questions []string
}

func (m *mockProcessor) ProcessQuery(question string) (string, string, error) {
	m.questions = append(m.questions, question)
	return "Revenue is concentrated in one account.", "SELECT 1", nil
}

func testAgentConfig() *AgentConfig {
	return &AgentConfig{
		db:         &mockDB{},
		processor:  &mockProcessor{},
		schemaText: "customer (customer_id, name)",
	}
}

func testRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{Use: "testapp", Short: "Test application"}

	for _, use := range []string{"query", "schema", "insights [question]", "serve", "ask [question]", "seed"} {
		rootCmd.AddCommand(&cobra.Command{
			Use:   use,
			Short: "Test command",
			Run:   func(cmd *cobra.Command, args []string) {},
		})
	}

	return rootCmd
}

func TestCreateToolsFromCommands(t *testing.T) {
	t.Run("CreateAllTools", func(t *testing.T) {
		config := testAgentConfig()
		tools := CreateToolsFromCommands(testRootCmd(), config)

		if len(tools) != 6 {
			t.Errorf("Expected 6 tools without exclusions, got %d", len(tools))
		}
	})

	t.Run("CreateToolsWithExclusions", func(t *testing.T) {
		config := testAgentConfig()
		config.exclusions = []string{"serve", "ask", "seed"}
		tools := CreateToolsFromCommands(testRootCmd(), config)

		if len(tools) != 3 {
			t.Errorf("Expected 3 tools after exclusions, got %d", len(tools))
		}
	})

	t.Run("ExcludeWithPrefixMatch", func(t *testing.T) {
		config := testAgentConfig()
		config.exclusions = []string{"insights"}

		testRoot := &cobra.Command{Use: "test"}
		testRoot.AddCommand(&cobra.Command{
			Use:   "insights [question]",
			Short: "Test command with args",
			Run:   func(cmd *cobra.Command, args []string) {},
		})

		tools := CreateToolsFromCommands(testRoot, config)
		if len(tools) != 0 {
			t.Errorf("Expected 0 tools with prefix exclusion, got %d", len(tools))
		}
	})
}

func TestQueryToolExecution(t *testing.T) {
	db := &mockDB{}
	config := testAgentConfig()
	config.db = db

	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Run a SQL query",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	tool := createToolForCommand(queryCmd, config)
	if tool == nil {
		t.Fatal("Expected tool to be created, got nil")
	}

	ctx := context.Background()

	t.Run("ExecuteWithSQL", func(t *testing.T) {
		result, err := tool.Function()(ctx, map[string]interface{}{
			"sql": "SELECT name, total FROM customer",
		})
		if err != nil {
			t.Fatalf("Tool execution failed: %v", err)
		}
		if !strings.Contains(result, "Acme Corp") {
			t.Errorf("Result missing row data: %s", result)
		}
		if len(db.queries) != 1 || db.queries[0] != "SELECT name, total FROM customer" {
			t.Errorf("DB saw queries %v", db.queries)
		}
	})

	t.Run("MissingSQLParameter", func(t *testing.T) {
		if _, err := tool.Function()(ctx, map[string]interface{}{}); err == nil {
			t.Error("Expected error for missing sql parameter, got nil")
		}
	})
}

func TestSchemaToolExecution(t *testing.T) {
	config := testAgentConfig()

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Show the database schema",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	tool := createToolForCommand(schemaCmd, config)
	result, err := tool.Function()(context.Background(), map[string]interface{}{})
	if err != nil {
		t.Fatalf("Schema tool execution failed: %v", err)
	}
	if result != "customer (customer_id, name)" {
		t.Errorf("Schema tool returned %q", result)
	}
}

func TestInsightsToolExecution(t *testing.T) {
	proc := &mockProcessor{}
	config := testAgentConfig()
	config.processor = proc

	insightsCmd := &cobra.Command{
		Use:   "insights [question]",
		Short: "Answer a business question",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	tool := createToolForCommand(insightsCmd, config)
	ctx := context.Background()

	result, err := tool.Function()(ctx, map[string]interface{}{
		"question": "Which customer drives the most revenue?",
	})
	if err != nil {
		t.Fatalf("Insights tool execution failed: %v", err)
	}
	if !strings.Contains(result, "Revenue is concentrated") || !strings.Contains(result, "SELECT 1") {
		t.Errorf("Result missing insights or SQL: %s", result)
	}
	if len(proc.questions) != 1 {
		t.Errorf("Processor saw questions %v", proc.questions)
	}

	if _, err := tool.Function()(ctx, map[string]interface{}{}); err == nil {
		t.Error("Expected error for missing question parameter, got nil")
	}
}

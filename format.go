package main

import (
	"fmt"
	"strings"
)

const maxDisplayRows = 50

// FormatResultsMarkdown renders a result set as a markdown table, capped at
// maxDisplayRows rows. Column order follows the SQL statement.
func FormatResultsMarkdown(results *ResultSet) string {
	if results == nil || len(results.Rows) == 0 {
		return "_No rows returned._"
	}

	var b strings.Builder

	b.WriteString("| ")
	b.WriteString(strings.Join(results.Columns, " | "))
	b.WriteString(" |\n|")
	for range results.Columns {
		b.WriteString("---|")
	}
	b.WriteString("\n")

	shown := len(results.Rows)
	if shown > maxDisplayRows {
		shown = maxDisplayRows
	}

	for _, row := range results.Rows[:shown] {
		b.WriteString("| ")
		cells := make([]string, len(results.Columns))
		for i, col := range results.Columns {
			cells[i] = formatCellValue(row[col])
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteString(" |\n")
	}

	if len(results.Rows) > shown {
		fmt.Fprintf(&b, "\n_Showing %d of %d rows._\n", shown, len(results.Rows))
	}

	return b.String()
}

// FormatQueryResultMarkdown renders a full query result as a markdown
// document: question, SQL, result table, and insights.
func FormatQueryResultMarkdown(result QueryResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", result.Query)

	if !result.Succeeded() {
		fmt.Fprintf(&b, "**Error:** %s\n", result.ErrorMessage)
		return b.String()
	}

	b.WriteString("## Generated SQL\n\n```sql\n")
	b.WriteString(result.SQL)
	b.WriteString("\n```\n\n## Results\n\n")
	b.WriteString(FormatResultsMarkdown(result.Results))
	b.WriteString("\n## Insights\n\n")
	b.WriteString(result.Insights)
	b.WriteString("\n")

	return b.String()
}

// formatCellValue renders one scanned value for display. Floats keep two
// decimals to match the CAST(numeric(10,2)) convention in generated SQL.
func formatCellValue(v any) string {
	switch value := v.(type) {
	case nil:
		return "NULL"
	case float64:
		return fmt.Sprintf("%.2f", value)
	case float32:
		return fmt.Sprintf("%.2f", value)
	case int64:
		return fmt.Sprintf("%d", value)
	case string:
		return truncateString(strings.ReplaceAll(value, "|", "\\|"), 60)
	default:
		return truncateString(fmt.Sprintf("%v", value), 60)
	}
}

func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

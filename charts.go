package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BarChart renders one horizontal bar scaled against max.
func BarChart(label string, value, max float64, width int, color lipgloss.Color) string {
	if max == 0 {
		max = value
	}

	percentage := value / max
	if percentage > 1 {
		percentage = 1
	}
	if percentage < 0 {
		percentage = 0
	}

	filledWidth := int(float64(width) * percentage)
	if filledWidth > width {
		filledWidth = width
	}

	filled := strings.Repeat("█", filledWidth)
	empty := strings.Repeat("░", width-filledWidth)

	barStyle := lipgloss.NewStyle().Foreground(color)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	return fmt.Sprintf("%s %s%s %.2f",
		label,
		barStyle.Render(filled),
		emptyStyle.Render(empty),
		value,
	)
}

// ResultBarChart charts the first numeric column of a result set, labelled by
// the first text column. Returns "" when the shape does not suit a chart, so
// callers can skip the section entirely.
func ResultBarChart(results *ResultSet, width int) string {
	if results == nil || len(results.Rows) < 2 || len(results.Rows) > 20 {
		return ""
	}

	labelCol, valueCol := chartColumns(results)
	if valueCol == "" {
		return ""
	}

	type bar struct {
		label string
		value float64
	}
	bars := make([]bar, 0, len(results.Rows))
	max := 0.0
	labelWidth := 0

	for _, row := range results.Rows {
		value, ok := numericValue(row[valueCol])
		if !ok {
			return ""
		}
		label := ""
		if labelCol != "" {
			label = truncateString(fmt.Sprintf("%v", row[labelCol]), 20)
		}
		if len(label) > labelWidth {
			labelWidth = len(label)
		}
		if value > max {
			max = value
		}
		bars = append(bars, bar{label: label, value: value})
	}

	var b strings.Builder
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	b.WriteString(titleStyle.Render(valueCol))
	b.WriteString("\n")
	for _, bar := range bars {
		label := fmt.Sprintf("%-*s", labelWidth, bar.label)
		b.WriteString(BarChart(label, bar.value, max, width, lipgloss.Color("33")))
		b.WriteString("\n")
	}

	return b.String()
}

// chartColumns picks the label and value columns for a chart: the first
// non-numeric column labels, the first numeric column measures.
func chartColumns(results *ResultSet) (labelCol, valueCol string) {
	probe := results.Rows[0]
	for _, col := range results.Columns {
		if _, ok := numericValue(probe[col]); ok {
			if valueCol == "" {
				valueCol = col
			}
		} else if labelCol == "" {
			labelCol = col
		}
	}
	return labelCol, valueCol
}

func numericValue(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case float32:
		return float64(value), true
	case int64:
		return float64(value), true
	case int:
		return float64(value), true
	case string:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

package main

import (
	"html/template"
	"log"
	"net/http"
	"strings"
)

// WebHandler handles HTMX HTML requests
type WebHandler struct {
	Processor QueryProcessor
	templates *template.Template
}

// NewWebHandler creates a new WebHandler with parsed templates
func NewWebHandler(processor QueryProcessor) *WebHandler {
	tmpl := template.Must(template.ParseGlob("templates/*.html"))
	template.Must(tmpl.ParseGlob("templates/partials/*.html"))
	return &WebHandler{
		Processor: processor,
		templates: tmpl,
	}
}

// AskPage renders the main query page
func (h *WebHandler) AskPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Title": "CRM Insights",
	}

	if err := h.templates.ExecuteTemplate(w, "ask.html", data); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// AskResults runs the query and returns the insights partial
func (h *WebHandler) AskResults(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	question := strings.TrimSpace(r.FormValue("query"))
	if question == "" {
		http.Error(w, "Query must not be empty", http.StatusBadRequest)
		return
	}

	result := h.Processor.ProcessQuery(r.Context(), question)

	data := map[string]interface{}{
		"Question": question,
		"Result":   result,
	}
	if result.Succeeded() {
		data["ResultsTable"] = template.HTML(markdownTableToHTML(result.Results))
	}

	if err := h.templates.ExecuteTemplate(w, "insights.html", data); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// markdownTableToHTML renders a result set as an HTML table for the HTMX
// partial. Values go through formatCellValue so the web and TUI views agree.
func markdownTableToHTML(results *ResultSet) string {
	if results == nil || len(results.Rows) == 0 {
		return "<p>No rows returned.</p>"
	}

	var b strings.Builder
	b.WriteString("<table><thead><tr>")
	for _, col := range results.Columns {
		b.WriteString("<th>")
		b.WriteString(template.HTMLEscapeString(col))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")

	shown := len(results.Rows)
	if shown > maxDisplayRows {
		shown = maxDisplayRows
	}
	for _, row := range results.Rows[:shown] {
		b.WriteString("<tr>")
		for _, col := range results.Columns {
			b.WriteString("<td>")
			b.WriteString(template.HTMLEscapeString(formatCellValue(row[col])))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")

	return b.String()
}

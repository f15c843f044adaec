package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"crminsights/cmd"
)

var logger *slog.Logger

// setupLogger creates and configures the application logger
func setupLogger(cfg Config) error {
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	// Create JSON handler for structured logging
	handler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level:     cfg.LogLevel,
		AddSource: true, // Include file:line information
	})

	logger = slog.New(handler)
	logger.Info("Application started", "version", "1.0", "log_file", cfg.LogFile)

	return nil
}

// renderMarkdown renders markdown content with glamour for beautiful display
func renderMarkdown(content string, width int) (string, error) {
	// Account for borders, padding, and glamour's internal gutter
	const glamourGutter = 2
	const borderWidth = 4 // 2 for border characters, 2 for padding

	renderWidth := width - borderWidth - glamourGutter
	if renderWidth < 40 {
		renderWidth = 40 // Minimum width for readable content
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(renderWidth),
	)
	if err != nil {
		return "", err
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return "", err
	}

	return rendered, nil
}

type view int

const (
	askView view = iota
	resultView
	savePromptView
)

type model struct {
	processor     *Processor
	currentView   view
	queryInput    textinput.Model
	saveInput     textinput.Model
	viewport      viewport.Model
	result        *QueryResult
	width         int
	height        int
	err           error
	loading       bool
	saveSuccess   string
	viewportReady bool
}

type queryResultMsg struct {
	result QueryResult
}

type saveMsg struct {
	filename string
	err      error
}

func runQuery(processor *Processor, question string) tea.Cmd {
	return func() tea.Msg {
		result := processor.ProcessQuery(context.Background(), question)
		return queryResultMsg{result: result}
	}
}

func saveQueryResult(result *QueryResult, filename string) tea.Cmd {
	return func() tea.Msg {
		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return saveMsg{err: fmt.Errorf("failed to marshal data: %w", err)}
		}

		if err := os.WriteFile(filename, jsonData, 0644); err != nil {
			return saveMsg{err: fmt.Errorf("failed to write file: %w", err)}
		}

		return saveMsg{filename: filename, err: nil}
	}
}

func initialModel(processor *Processor) model {
	ti := textinput.New()
	ti.Placeholder = "Ask a business question, e.g. What is our total revenue this month?"
	ti.Focus()
	ti.CharLimit = 300
	ti.Width = 70

	si := textinput.New()
	si.Placeholder = "Enter filename (e.g., revenue_insights.json)"
	si.CharLimit = 200
	si.Width = 60

	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()

	return model{
		processor:   processor,
		currentView: askView,
		queryInput:  ti,
		saveInput:   si,
		viewport:    vp,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Reserve lines for status messages and help text below the viewport
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 6
		m.viewportReady = true

		if m.currentView == resultView {
			m.updateResultViewport()
		}

		return m, nil

	case tea.KeyMsg:
		if m.currentView == resultView {
			return m.handleResultViewKeys(msg)
		} else if m.currentView == savePromptView {
			return m.handleSavePromptKeys(msg)
		}
		return m.handleAskViewKeys(msg)

	case tea.MouseMsg:
		if m.currentView == resultView {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case queryResultMsg:
		m.loading = false
		m.result = &msg.result
		m.err = nil
		m.currentView = resultView
		m.viewport.GotoTop()
		m.updateResultViewport()
		if logger != nil {
			logger.Info("Query finished", "question", msg.result.Query, "succeeded", msg.result.Succeeded())
		}
		return m, nil

	case saveMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("save failed: %w", msg.err)
			m.currentView = resultView
			if logger != nil {
				logger.Error("Failed to save query result", "error", msg.err, "filename", m.saveInput.Value())
			}
			return m, nil
		}
		m.saveSuccess = fmt.Sprintf("Saved to: %s", msg.filename)
		m.saveInput.SetValue("")
		m.currentView = resultView
		if logger != nil {
			logger.Info("Query result saved", "filename", msg.filename)
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.currentView == askView {
		m.queryInput, cmd = m.queryInput.Update(msg)
	}
	return m, cmd
}

func (m model) handleAskViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyEnter:
		question := strings.TrimSpace(m.queryInput.Value())
		if question == "" {
			return m, nil
		}
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.err = nil
		return m, runQuery(m.processor, question)
	}

	var cmd tea.Cmd
	m.queryInput, cmd = m.queryInput.Update(msg)
	return m, cmd
}

func (m model) handleResultViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.currentView = askView
		m.result = nil
		m.err = nil
		m.saveSuccess = ""
		m.viewport.GotoTop()
		m.queryInput.Focus()
		return m, textinput.Blink

	case tea.KeyCtrlY:
		if m.result != nil && m.result.SQL != "" {
			_ = clipboard.WriteAll(m.result.SQL)
			m.saveSuccess = "SQL copied to clipboard"
		}
		return m, nil

	case tea.KeyCtrlW:
		// Save query result to file
		if m.result != nil {
			m.currentView = savePromptView
			m.saveInput.Focus()
			m.err = nil
			m.saveSuccess = ""
			defaultName := strings.ReplaceAll(strings.ToLower(truncateString(m.result.Query, 40)), " ", "_") + ".json"
			m.saveInput.SetValue(defaultName)
			return m, textinput.Blink
		}
		return m, nil

	// Scrolling keys
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown, tea.KeyHome, tea.KeyEnd:
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) handleSavePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.currentView = resultView
		m.saveInput.SetValue("")
		return m, nil

	case tea.KeyEnter:
		filename := m.saveInput.Value()
		if filename == "" {
			m.err = fmt.Errorf("filename cannot be empty")
			return m, nil
		}
		return m, saveQueryResult(m.result, filename)
	}

	var cmd tea.Cmd
	m.saveInput, cmd = m.saveInput.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.currentView == resultView {
		return m.resultViewRender()
	} else if m.currentView == savePromptView {
		return m.savePromptRender()
	}
	return m.askViewRender()
}

func (m model) askViewRender() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("62")).
		MarginBottom(1)

	b.WriteString(headerStyle.Render("📊 CRM Insights"))
	b.WriteString("\n\n")

	inputStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1)

	b.WriteString(inputStyle.Render(m.queryInput.View()))
	b.WriteString("\n\n")

	if m.loading {
		loadingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
		b.WriteString(loadingStyle.Render("⏳ Generating SQL and analyzing results..."))
		b.WriteString("\n")
	}

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v\n", m.err)))
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)

	help := "\nEnter: Ask | Esc/Ctrl+C: Quit"
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func (m model) resultViewContent() string {
	if m.result == nil {
		return "No result"
	}

	content := FormatQueryResultMarkdown(*m.result)

	rendered, err := renderMarkdown(content, m.width)
	if err != nil {
		rendered = content
	}

	var b strings.Builder
	b.WriteString(rendered)

	// Chart section for result shapes that suit one
	if m.result.Succeeded() {
		if chart := ResultBarChart(m.result.Results, 40); chart != "" {
			b.WriteString("\n")
			b.WriteString(chart)
		}
	}

	return b.String()
}

func (m *model) updateResultViewport() {
	if !m.viewportReady || m.result == nil {
		return
	}
	m.viewport.SetContent(m.resultViewContent())
}

func (m model) resultViewRender() string {
	if !m.viewportReady || m.result == nil {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.viewport.TotalLineCount() > m.viewport.Height {
		scrollPercent := int(m.viewport.ScrollPercent() * 100)
		scrollInfo := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render(fmt.Sprintf("─── %d%% ───", scrollPercent))
		b.WriteString(scrollInfo)
		b.WriteString("\n")
	}

	if m.saveSuccess != "" {
		successStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)
		b.WriteString(successStyle.Render("✓ " + m.saveSuccess))
		b.WriteString("\n")
	}

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
		b.WriteString(errorStyle.Render(fmt.Sprintf("❌ Error: %v", m.err)))
		b.WriteString("\n")
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	help := "↑/↓/PgUp/PgDn: Scroll | Ctrl+W: Save | Ctrl+Y: Copy SQL | Esc: New question | Ctrl+C: Back"
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func (m model) savePromptRender() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("62")).
		MarginBottom(1)

	b.WriteString(titleStyle.Render("💾 Save Query Result"))
	b.WriteString("\n\n")

	if m.result != nil {
		infoStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
		b.WriteString(infoStyle.Render(fmt.Sprintf("Saving result for: %s", m.result.Query)))
		b.WriteString("\n\n")
	}

	inputStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1)

	b.WriteString("Filename: ")
	b.WriteString(inputStyle.Render(m.saveInput.View()))
	b.WriteString("\n\n")

	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	info := "The file will contain:\n"
	info += "  • The question and generated SQL\n"
	info += "  • Query results\n"
	info += "  • AI-generated insights\n"
	info += "\nFormat: JSON"
	b.WriteString(infoStyle.Render(info))
	b.WriteString("\n\n")

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v\n", m.err)))
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)

	help := "Enter: Save | Esc: Cancel | Ctrl+C: Quit"
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

// buildProcessor assembles the processor and its collaborators from the
// environment. A missing API key is tolerated here: the processor reports it
// per query through the failure result.
func buildProcessor() (*Processor, *DB, Config, error) {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		return nil, nil, Config{}, err
	}

	if err := setupLogger(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to setup logger: %v\n", err)
	}

	var gen Generator
	if claude, err := NewClaudeGenerator(cfg.AnthropicAPIKey, cfg.Model); err == nil {
		gen = claude
	} else if logger != nil {
		logger.Warn("Generation client unavailable", "error", err)
	}

	db := NewDB(cfg.Database)
	return NewProcessor(cfg, gen, db), db, cfg, nil
}

// launchTUI starts the interactive TUI application
func launchTUI() {
	processor, _, cfg, err := buildProcessor()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Print configuration info
	fmt.Println("\n📊 CRM Insights Configuration:")
	if cfg.AnthropicAPIKey != "" {
		fmt.Println("   • Claude API: ✓ Available")
	} else {
		fmt.Println("   • Claude API: ✗ Not configured (set ANTHROPIC_API_KEY)")
	}
	if cfg.Database.Host != "" {
		fmt.Printf("   • Database: %s@%s:%s/%s\n", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	} else {
		fmt.Println("   • Database: ✗ Not configured (set DB_HOST, DB_NAME, DB_USER, DB_PASSWORD)")
	}
	fmt.Println()

	p := tea.NewProgram(
		initialModel(processor),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// initDB initializes the database for CLI commands
func initDB() (cmd.DBInterface, func(), error) {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		return nil, nil, err
	}

	if err := setupLogger(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to setup logger: %v\n", err)
	}

	if err := (Config{Database: cfg.Database, AnthropicAPIKey: "-"}).Validate(); err != nil {
		return nil, nil, err
	}

	db := NewDB(cfg.Database)
	cleanup := func() {}

	return &dbAdapter{db: db}, cleanup, nil
}

// initProcessor initializes the full query pipeline for CLI commands
func initProcessor() (cmd.ProcessorInterface, error) {
	processor, _, _, err := buildProcessor()
	if err != nil {
		return nil, err
	}
	return &processorAdapter{processor: processor}, nil
}

// startServer starts the web server for the serve command
func startServer(port int) error {
	processor, db, _, err := buildProcessor()
	if err != nil {
		return err
	}
	return StartServer(ServerConfig{Port: port, Processor: processor, DB: db})
}

// seedDatabase creates the schema and loads sample data
func seedDatabase() error {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		return err
	}

	if err := setupLogger(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to setup logger: %v\n", err)
	}

	if err := (Config{Database: cfg.Database, AnthropicAPIKey: "-"}).Validate(); err != nil {
		return err
	}

	db := NewDB(cfg.Database)
	return SeedDatabase(context.Background(), db)
}

// dbAdapter adapts *DB to cmd.DBInterface
type dbAdapter struct {
	db *DB
}

func (a *dbAdapter) ExecuteQuery(sqlText string) ([]map[string]interface{}, error) {
	results, err := a.db.ExecuteQuery(context.Background(), sqlText)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]interface{}, len(results.Rows))
	for i, row := range results.Rows {
		rows[i] = map[string]interface{}(row)
	}
	return rows, nil
}

func (a *dbAdapter) Close() error {
	return nil
}

// processorAdapter adapts *Processor to cmd.ProcessorInterface
type processorAdapter struct {
	processor *Processor
}

func (a *processorAdapter) ProcessQuery(question string) cmd.QueryResultData {
	result := a.processor.ProcessQuery(context.Background(), question)
	return convertResultToCmd(result)
}

// convertResultToCmd converts QueryResult to cmd.QueryResultData
func convertResultToCmd(r QueryResult) cmd.QueryResultData {
	data := cmd.QueryResultData{
		Query:     r.Query,
		SQL:       r.SQL,
		Insights:  r.Insights,
		Attempt:   r.Attempt,
		Error:     r.ErrorMessage,
		Timestamp: r.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
	}

	if r.Results != nil {
		data.Results = make([]map[string]interface{}, len(r.Results.Rows))
		for i, row := range r.Results.Rows {
			data.Results[i] = map[string]interface{}(row)
		}
	}

	return data
}

func main() {
	// Set up cmd package callbacks
	cmd.LaunchTUI = launchTUI
	cmd.InitDB = initDB
	cmd.InitProcessor = initProcessor
	cmd.StartWebServer = startServer
	cmd.SeedDatabase = seedDatabase
	cmd.SchemaDescription = crmSchema

	// Execute the CLI
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

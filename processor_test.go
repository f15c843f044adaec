package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// fakeGenerator returns scripted responses keyed by call order, recording
// every prompt it sees.
type fakeGenerator struct {
	responses []string
	errs      []error
	calls     int
	systems   []string
	prompts   []string
}

func (g *fakeGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	idx := g.calls
	g.calls++
	g.systems = append(g.systems, systemPrompt)
	g.prompts = append(g.prompts, userPrompt)

	if idx < len(g.errs) && g.errs[idx] != nil {
		return "", g.errs[idx]
	}
	if idx < len(g.responses) {
		return g.responses[idx], nil
	}
	return "", fmt.Errorf("unexpected generator call %d", idx)
}

func (g *fakeGenerator) sqlCalls() int {
	n := 0
	for _, s := range g.systems {
		if s == sqlSystemPrompt {
			n++
		}
	}
	return n
}

func (g *fakeGenerator) insightCalls() int {
	n := 0
	for _, s := range g.systems {
		if s == insightSystemPrompt {
			n++
		}
	}
	return n
}

// fakeExecutor returns scripted result sets or errors per call.
type fakeExecutor struct {
	results []*ResultSet
	errs    []error
	calls   int
	queries []string
}

func (e *fakeExecutor) ExecuteQuery(ctx context.Context, sqlText string) (*ResultSet, error) {
	idx := e.calls
	e.calls++
	e.queries = append(e.queries, sqlText)

	if idx < len(e.errs) && e.errs[idx] != nil {
		return nil, e.errs[idx]
	}
	if idx < len(e.results) {
		return e.results[idx], nil
	}
	return nil, fmt.Errorf("unexpected executor call %d", idx)
}

func testConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Name:     "crm",
			User:     "crm",
			Password: "secret",
			Port:     "5432",
		},
		AnthropicAPIKey: "test-key",
		MaxRetries:      3,
		RetryDelay:      time.Second,
	}
}

func rowsResult(n int) *ResultSet {
	rs := &ResultSet{Columns: []string{"name", "total"}}
	for i := 0; i < n; i++ {
		rs.Rows = append(rs.Rows, Row{"name": fmt.Sprintf("row%d", i), "total": int64(i)})
	}
	return rs
}

func newTestProcessor(gen Generator, exec Executor, sleeps *[]time.Duration) *Processor {
	p := NewProcessor(testConfig(), gen, exec)
	p.sleep = func(d time.Duration) {
		*sleeps = append(*sleeps, d)
	}
	return p
}

func TestProcessQuerySucceedsFirstAttempt(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"```sql\nSELECT name FROM lead\n```", "Leads look healthy."}}
	exec := &fakeExecutor{results: []*ResultSet{rowsResult(2)}}
	var sleeps []time.Duration
	p := newTestProcessor(gen, exec, &sleeps)

	result := p.ProcessQuery(context.Background(), "Which leads do we have?")

	if !result.Succeeded() {
		t.Fatalf("expected success, got error %q", result.ErrorMessage)
	}
	if result.Attempt != 1 {
		t.Errorf("Attempt = %d, want 1", result.Attempt)
	}
	if result.SQL != "SELECT name FROM lead" {
		t.Errorf("SQL = %q, fences not stripped", result.SQL)
	}
	if result.Insights != "Leads look healthy." {
		t.Errorf("Insights = %q", result.Insights)
	}
	if result.Results.RowCount() != 2 {
		t.Errorf("RowCount = %d, want 2", result.Results.RowCount())
	}
	if len(sleeps) != 0 {
		t.Errorf("sleep called %d times on first-attempt success", len(sleeps))
	}
	if exec.queries[0] != "SELECT name FROM lead" {
		t.Errorf("executor received %q, want sanitized SQL", exec.queries[0])
	}
}

func TestProcessQueryRetriesEmptyResults(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"SELECT 1", "SELECT 2", "SELECT 3"}}
	exec := &fakeExecutor{results: []*ResultSet{rowsResult(0), rowsResult(0), rowsResult(0)}}
	var sleeps []time.Duration
	p := newTestProcessor(gen, exec, &sleeps)

	result := p.ProcessQuery(context.Background(), "Anything in an empty table?")

	if result.Succeeded() {
		t.Fatal("expected failure after exhausting retries")
	}
	if gen.sqlCalls() != 3 {
		t.Errorf("SQL generation calls = %d, want 3", gen.sqlCalls())
	}
	if gen.insightCalls() != 0 {
		t.Errorf("insight calls = %d, want 0 for empty results", gen.insightCalls())
	}
	if exec.calls != 3 {
		t.Errorf("executor calls = %d, want 3", exec.calls)
	}
	if len(sleeps) != 2 {
		t.Errorf("sleep called %d times, want 2 (between attempts only)", len(sleeps))
	}
	want := "all 3 attempts failed. Last error: query returned no results"
	if result.ErrorMessage != want {
		t.Errorf("ErrorMessage = %q, want %q", result.ErrorMessage, want)
	}
}

func TestProcessQueryRecoversOnSecondAttempt(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"SELECT broken", "SELECT fixed", "Revenue is concentrated in two accounts."}}
	exec := &fakeExecutor{
		errs:    []error{&DatabaseError{Err: errors.New(`relation "ordertabs" does not exist`)}},
		results: []*ResultSet{nil, rowsResult(5)},
	}
	var sleeps []time.Duration
	p := newTestProcessor(gen, exec, &sleeps)

	result := p.ProcessQuery(context.Background(), "Total revenue by customer")

	if !result.Succeeded() {
		t.Fatalf("expected success, got error %q", result.ErrorMessage)
	}
	if result.Attempt != 2 {
		t.Errorf("Attempt = %d, want 2", result.Attempt)
	}
	if result.SQL != "SELECT fixed" {
		t.Errorf("SQL = %q, want the second generation", result.SQL)
	}
	if gen.insightCalls() != 1 {
		t.Errorf("insight calls = %d, want exactly 1", gen.insightCalls())
	}
	if len(sleeps) != 1 {
		t.Errorf("sleep called %d times, want 1", len(sleeps))
	}
	// The retry prompt carries only the attempt counter, not the prior error
	if strings.Contains(gen.prompts[1], "ordertabs") {
		t.Error("retry prompt leaked the previous attempt's error")
	}
	if !strings.Contains(gen.prompts[1], "This is attempt 2 of 3.") {
		t.Error("retry prompt missing attempt counter")
	}
}

func TestProcessQueryGenerationFailure(t *testing.T) {
	genErr := errors.New("Claude API error: overloaded")
	gen := &fakeGenerator{errs: []error{genErr, genErr, genErr}}
	exec := &fakeExecutor{}
	var sleeps []time.Duration
	p := newTestProcessor(gen, exec, &sleeps)

	result := p.ProcessQuery(context.Background(), "Any question")

	if result.Succeeded() {
		t.Fatal("expected failure")
	}
	if exec.calls != 0 {
		t.Errorf("executor calls = %d, want 0 when generation fails", exec.calls)
	}
	if !strings.Contains(result.ErrorMessage, "generation service error") {
		t.Errorf("ErrorMessage = %q, want generation error context", result.ErrorMessage)
	}
}

func TestProcessQueryRejectsIncompleteConfig(t *testing.T) {
	gen := &fakeGenerator{}
	exec := &fakeExecutor{}

	cfg := testConfig()
	cfg.Database.Password = ""
	p := NewProcessor(cfg, gen, exec)

	result := p.ProcessQuery(context.Background(), "Any question")

	if result.Succeeded() {
		t.Fatal("expected failure for missing DB_PASSWORD")
	}
	if gen.calls != 0 {
		t.Errorf("generator calls = %d, want 0 for config failure", gen.calls)
	}
	if !strings.Contains(result.ErrorMessage, "configuration error") {
		t.Errorf("ErrorMessage = %q, want configuration error", result.ErrorMessage)
	}
	if !strings.Contains(result.ErrorMessage, "DB_PASSWORD") {
		t.Errorf("ErrorMessage = %q, should name the missing variable", result.ErrorMessage)
	}
}

func TestProcessQueryRetryCapRespectsConfig(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"SELECT 1", "SELECT 2", "SELECT 3", "SELECT 4", "SELECT 5"}}
	exec := &fakeExecutor{results: []*ResultSet{rowsResult(0), rowsResult(0), rowsResult(0), rowsResult(0), rowsResult(0)}}

	cfg := testConfig()
	cfg.MaxRetries = 5
	p := NewProcessor(cfg, gen, exec)
	var sleeps []time.Duration
	p.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }

	result := p.ProcessQuery(context.Background(), "Still empty?")

	if result.Succeeded() {
		t.Fatal("expected failure")
	}
	if exec.calls != 5 {
		t.Errorf("executor calls = %d, want 5", exec.calls)
	}
	if !strings.Contains(result.ErrorMessage, "all 5 attempts failed") {
		t.Errorf("ErrorMessage = %q", result.ErrorMessage)
	}
}

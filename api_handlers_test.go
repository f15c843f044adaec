package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type stubProcessor struct {
	result    QueryResult
	questions []string
}

func (s *stubProcessor) ProcessQuery(ctx context.Context, question string) QueryResult {
	s.questions = append(s.questions, question)
	return s.result
}

func postInsights(t *testing.T, h *APIHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/insights", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Insights(rec, req)
	return rec
}

func TestInsightsSuccess(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	proc := &stubProcessor{result: QueryResult{
		Query:     "Total revenue this month",
		SQL:       "SELECT SUM(product_quantity * rate) FROM ordertab",
		Insights:  "Revenue is up.",
		Attempt:   1,
		Timestamp: ts,
	}}
	h := &APIHandler{Processor: proc}

	rec := postInsights(t, h, `{"query": "Total revenue this month"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp InsightResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Insights != "Revenue is up." {
		t.Errorf("insights = %q", resp.Insights)
	}
	if resp.SQL != "SELECT SUM(product_quantity * rate) FROM ordertab" {
		t.Errorf("sql = %q", resp.SQL)
	}
	if resp.Timestamp != "2024-01-15T10:30:00Z" {
		t.Errorf("timestamp = %q", resp.Timestamp)
	}
	if len(proc.questions) != 1 || proc.questions[0] != "Total revenue this month" {
		t.Errorf("processor saw questions %v", proc.questions)
	}
}

func TestInsightsProcessorFailure(t *testing.T) {
	proc := &stubProcessor{result: QueryResult{
		Query:        "Impossible",
		ErrorMessage: "all 3 attempts failed. Last error: query returned no results",
		Timestamp:    time.Now(),
	}}
	h := &APIHandler{Processor: proc}

	rec := postInsights(t, h, `{"query": "Impossible"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"] != "all 3 attempts failed. Last error: query returned no results" {
		t.Errorf("error = %q", resp["error"])
	}
}

func TestInsightsRejectsEmptyQuery(t *testing.T) {
	proc := &stubProcessor{}
	h := &APIHandler{Processor: proc}

	testCases := []struct {
		name string
		body string
	}{
		{"Empty query", `{"query": ""}`},
		{"Whitespace query", `{"query": "   "}`},
		{"Missing field", `{}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postInsights(t, h, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}

	if len(proc.questions) != 0 {
		t.Errorf("processor was called for invalid requests: %v", proc.questions)
	}
}

func TestInsightsRejectsMalformedBody(t *testing.T) {
	h := &APIHandler{Processor: &stubProcessor{}}

	rec := postInsights(t, h, `{"query": `)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealthWithoutDB(t *testing.T) {
	h := &APIHandler{}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %q", resp["status"])
	}
}

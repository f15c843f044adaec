package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"
)

// QueryProcessor is what the HTTP layer needs from the processor.
type QueryProcessor interface {
	ProcessQuery(ctx context.Context, question string) QueryResult
}

// InsightRequest is the JSON body of an insights request.
type InsightRequest struct {
	Query string `json:"query"`
}

// InsightResponse is the JSON success payload.
type InsightResponse struct {
	Insights  string `json:"insights"`
	SQL       string `json:"sql"`
	Timestamp string `json:"timestamp"`
}

// APIHandler handles JSON API requests
type APIHandler struct {
	Processor QueryProcessor
	DB        *DB
}

// Insights runs one natural-language query end to end and returns the
// synthesized analysis. A failed run maps to 500 with the aggregated error
// message; the processor has already burned its retries by then.
func (h *APIHandler) Insights(w http.ResponseWriter, r *http.Request) {
	var req InsightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
		return
	}

	question := strings.TrimSpace(req.Query)
	if question == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Query must not be empty",
		})
		return
	}

	result := h.Processor.ProcessQuery(r.Context(), question)
	if !result.Succeeded() {
		log.Printf("Insights error: %s", result.ErrorMessage)
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error": result.ErrorMessage,
		})
		return
	}

	respondJSON(w, http.StatusOK, InsightResponse{
		Insights:  result.Insights,
		SQL:       result.SQL,
		Timestamp: result.Timestamp.Format(time.RFC3339),
	})
}

// Health reports service and database reachability.
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	code := http.StatusOK

	if h.DB != nil {
		if err := h.DB.Ping(r.Context()); err != nil {
			log.Printf("Health check database error: %v", err)
			status["status"] = "degraded"
			status["database"] = err.Error()
			code = http.StatusServiceUnavailable
		} else {
			status["database"] = "ok"
		}
	}

	respondJSON(w, code, status)
}

// respondJSON is a helper function to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("JSON encoding error: %v", err)
	}
}

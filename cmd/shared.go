package cmd

import (
	"fmt"
	"os"
)

// QueryResultData represents the outcome of one processed query
// (matches main.QueryResult)
type QueryResultData struct {
	Query     string                   `json:"query"`
	SQL       string                   `json:"sql,omitempty"`
	Results   []map[string]interface{} `json:"results,omitempty"`
	Insights  string                   `json:"insights,omitempty"`
	Attempt   int                      `json:"attempt,omitempty"`
	Error     string                   `json:"error,omitempty"`
	Timestamp string                   `json:"timestamp"`
}

// Succeeded reports whether the query produced insights rather than an error.
func (r QueryResultData) Succeeded() bool {
	return r.Error == ""
}

// DBInterface wraps database operations for CLI commands
type DBInterface interface {
	ExecuteQuery(sqlText string) ([]map[string]interface{}, error)
	Close() error
}

// ProcessorInterface wraps the full question-to-insights pipeline
type ProcessorInterface interface {
	ProcessQuery(question string) QueryResultData
}

// These variables will be set by main package
var (
	LaunchTUI      func()
	InitDB         func() (DBInterface, func(), error)
	InitProcessor  func() (ProcessorInterface, error)
	StartWebServer func(port int) error
	SeedDatabase   func() error
)

// HandleError prints error and exits
func HandleError(err error, message string) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, err)
	os.Exit(1)
}

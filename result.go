package main

import (
	"errors"
	"fmt"
	"time"
)

// Row is a single result record keyed by column name.
type Row map[string]any

// ResultSet holds the mapped output of one query execution. Columns preserves
// the column order of the query; Rows are keyed by column name.
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// RowCount returns the number of result rows.
func (rs *ResultSet) RowCount() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// QueryAttempt is the product of one successful generate→execute→validate→
// synthesize cycle. Failed attempts are discarded entirely; the next attempt
// starts fresh.
type QueryAttempt struct {
	Attempt   int
	SQL       string
	Results   *ResultSet
	Insights  string
	CreatedAt time.Time
}

// QueryResult is the terminal artifact returned to the caller: either a
// success carrying the generated SQL, results and insights, or a failure
// carrying an error message. Build one through successResult or failureResult
// so exactly one variant is ever populated.
type QueryResult struct {
	Query        string     `json:"query"`
	SQL          string     `json:"sql,omitempty"`
	Results      *ResultSet `json:"results,omitempty"`
	Insights     string     `json:"insights,omitempty"`
	Attempt      int        `json:"attempt,omitempty"`
	ErrorMessage string     `json:"error,omitempty"`
	Timestamp    time.Time  `json:"timestamp"`
}

// Succeeded reports whether this is the success variant.
func (r QueryResult) Succeeded() bool {
	return r.ErrorMessage == ""
}

func successResult(question string, attempt *QueryAttempt) QueryResult {
	return QueryResult{
		Query:     question,
		SQL:       attempt.SQL,
		Results:   attempt.Results,
		Insights:  attempt.Insights,
		Attempt:   attempt.Attempt,
		Timestamp: time.Now(),
	}
}

func failureResult(question string, err error) QueryResult {
	return QueryResult{
		Query:        question,
		ErrorMessage: err.Error(),
		Timestamp:    time.Now(),
	}
}

// ConfigError is a fatal precondition failure: required credentials are
// missing before any attempt is made. Never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

// GenerationError wraps a failure from the text-generation service. Treated
// as an attempt-level failure by the processor.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation service error: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// DatabaseError wraps any failure from query execution with the underlying
// driver message. Treated as an attempt-level failure by the processor.
type DatabaseError struct {
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error: %v", e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// ErrEmptyResult marks an attempt whose query ran but returned zero rows.
// Zero rows is retried like any other attempt failure rather than reported
// as an answer.
var ErrEmptyResult = errors.New("query returned no results")

// ExhaustedError is the terminal failure after every attempt has failed.
type ExhaustedError struct {
	Attempts int
	LastErr  error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d attempts failed. Last error: %v", e.Attempts, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

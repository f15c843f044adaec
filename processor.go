package main

import (
	"context"
	"time"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = time.Second
)

// Generator is the text-generation capability used twice per attempt: once
// for SQL synthesis and once for insight synthesis.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Executor runs SQL against the CRM database and maps rows to records.
type Executor interface {
	ExecuteQuery(ctx context.Context, sqlText string) (*ResultSet, error)
}

// Processor drives the generate→execute→validate→synthesize loop, retrying
// failed attempts with a fresh generation up to a fixed bound. All external
// calls are blocking; each attempt either produces a complete QueryAttempt or
// an error, never a partial result.
type Processor struct {
	cfg        Config
	gen        Generator
	exec       Executor
	maxRetries int
	retryDelay time.Duration
	sleep      func(time.Duration) // test hook for the fixed backoff
}

// NewProcessor builds a Processor from an explicit configuration and its two
// external collaborators. Configuration is validated per request, not here,
// so a misconfigured processor still reports failures through QueryResult.
func NewProcessor(cfg Config, gen Generator, exec Executor) *Processor {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	return &Processor{
		cfg:        cfg,
		gen:        gen,
		exec:       exec,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		sleep:      time.Sleep,
	}
}

// ProcessQuery turns a natural-language business question into an executed
// SQL query plus an analytical summary. It always returns a QueryResult:
// the success variant on the first attempt that yields rows and insights,
// or the failure variant after a fatal configuration error or after every
// attempt has failed.
func (p *Processor) ProcessQuery(ctx context.Context, question string) QueryResult {
	if logger != nil {
		logger.Info("Processing query", "question", question)
	}

	if err := p.cfg.Validate(); err != nil {
		if logger != nil {
			logger.Error("Query rejected by configuration check", "error", err)
		}
		return failureResult(question, err)
	}

	var lastErr error
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		result, err := p.attemptQuery(ctx, question, attempt)
		if err == nil {
			if logger != nil {
				logger.Info("Query processed successfully", "question", question, "attempt", attempt)
			}
			return successResult(question, result)
		}

		lastErr = err
		if logger != nil {
			logger.Warn("Attempt failed", "attempt", attempt, "max_retries", p.maxRetries, "error", err)
		}

		if attempt < p.maxRetries {
			p.sleep(p.retryDelay)
		}
	}

	exhausted := &ExhaustedError{Attempts: p.maxRetries, LastErr: lastErr}
	if logger != nil {
		logger.Error("All attempts failed", "question", question, "error", exhausted)
	}
	return failureResult(question, exhausted)
}

// attemptQuery runs one full generate→execute→validate→synthesize cycle.
// Any failure discards the attempt entirely; the caller decides whether to
// retry with a fresh one.
func (p *Processor) attemptQuery(ctx context.Context, question string, attempt int) (*QueryAttempt, error) {
	prompt := BuildSQLPrompt(question, attempt, p.maxRetries)

	raw, err := p.gen.Generate(ctx, sqlSystemPrompt, prompt)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	sqlText := SanitizeSQL(raw)
	if logger != nil {
		logger.Info("Generated SQL", "attempt", attempt, "sql", sqlText)
	}

	results, err := p.exec.ExecuteQuery(ctx, sqlText)
	if err != nil {
		return nil, err
	}

	if results.RowCount() == 0 {
		return nil, ErrEmptyResult
	}

	insights, err := SynthesizeInsights(ctx, p.gen, results, question)
	if err != nil {
		return nil, err
	}

	return &QueryAttempt{
		Attempt:   attempt,
		SQL:       sqlText,
		Results:   results,
		Insights:  insights,
		CreatedAt: time.Now(),
	}, nil
}

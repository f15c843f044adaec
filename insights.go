package main

import (
	"context"
	"encoding/json"
	"fmt"
)

const insightSystemPrompt = "You are a business analyst providing concise, actionable insights."

// SynthesizeInsights sends the query results and the original question to the
// generation service and returns its analytical summary. One outbound call,
// no caching; failures wrap into GenerationError and are retried only by the
// processor's outer loop.
func SynthesizeInsights(ctx context.Context, gen Generator, results *ResultSet, question string) (string, error) {
	data, err := json.MarshalIndent(results.Rows, "", "  ")
	if err != nil {
		return "", &GenerationError{Err: fmt.Errorf("marshal results: %w", err)}
	}

	prompt := fmt.Sprintf(`Analyze these query results for the question: %q

Data:
%s

Provide:
1. Key metrics and their significance
2. Notable patterns or trends
3. Business implications
4. Potential action items

Keep insights concise and actionable.`, question, data)

	insights, err := gen.Generate(ctx, insightSystemPrompt, prompt)
	if err != nil {
		return "", &GenerationError{Err: err}
	}

	if logger != nil {
		logger.Info("Generated insights", "question", question, "length", len(insights))
	}

	return insights, nil
}

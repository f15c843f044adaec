package main

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultModel = string(anthropic.ModelClaudeHaiku4_5_20251001)

// ClaudeGenerator implements Generator on top of the Anthropic Messages API.
// It is used for both SQL synthesis and insight synthesis; the caller chooses
// the system prompt.
type ClaudeGenerator struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewClaudeGenerator creates a generation client. The API key is required;
// an empty model falls back to the default.
func NewClaudeGenerator(apiKey, model string) (*ClaudeGenerator, error) {
	if apiKey == "" {
		if logger != nil {
			logger.Error("Generation client initialization failed: missing API key")
		}
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	if model == "" {
		model = defaultModel
	}

	return &ClaudeGenerator{
		client:    &client,
		model:     anthropic.Model(model),
		maxTokens: 4000,
	}, nil
}

// Generate sends one system-plus-user message pair and returns the
// concatenated text blocks of the response.
func (g *ClaudeGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := g.client.Messages.New(ctx, params)
	if err != nil {
		if logger != nil {
			logger.Error("Claude API call failed", "error", err, "model", string(g.model))
		}
		return "", fmt.Errorf("Claude API error: %w", err)
	}

	if len(message.Content) == 0 {
		if logger != nil {
			logger.Error("Empty response from Claude API", "model", string(g.model))
		}
		return "", fmt.Errorf("empty response from Claude")
	}

	responseText := ""
	for _, block := range message.Content {
		if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
			responseText += textBlock.Text
		}
	}

	if responseText == "" {
		if logger != nil {
			logger.Error("No text content in Claude API response", "content_blocks", len(message.Content))
		}
		return "", fmt.Errorf("no text response from Claude")
	}

	return responseText, nil
}

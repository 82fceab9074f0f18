package adapter

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/bluelilygithub/curam-ai-gateway/pkg/artifact"
)

// AnthropicAdapter implements the Adapter interface for Claude models.
type AnthropicAdapter struct {
	client anthropic.Client
}

// NewAnthropicAdapter creates a new Anthropic adapter.
func NewAnthropicAdapter(apiKey string) (*AnthropicAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicAdapter{client: client}, nil
}

// Name returns the adapter identifier.
func (a *AnthropicAdapter) Name() string {
	return "anthropic"
}

// Models returns the list of supported Claude models.
func (a *AnthropicAdapter) Models() []string {
	return []string{
		"claude-3-5-sonnet-latest",
		"claude-3-5-haiku-latest",
	}
}

// Generate sends a prompt to Claude and returns the response as an artifact.
// API failures come back classified so the caller can tell a rate limit
// from a bad key.
func (a *AnthropicAdapter) Generate(ctx context.Context, model string, prompt string) (*artifact.Artifact, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, &VendorError{
				Kind:   ClassifyStatus(apiErr.StatusCode),
				Status: apiErr.StatusCode,
				Vendor: a.Name(),
				Err:    err,
			}
		}
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	art := artifact.New(collectText(resp), a.Name(), model, prompt)
	return art.WithMetadata("output_tokens", strconv.FormatInt(resp.Usage.OutputTokens, 10)), nil
}

func collectText(resp *anthropic.Message) string {
	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}
	return content
}

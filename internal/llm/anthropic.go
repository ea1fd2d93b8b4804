package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicURL     = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
)

// AnthropicClient speaks the Anthropic messages protocol.
type AnthropicClient struct {
	apiKey string
	model  string
	opts   Options
	hc     *http.Client

	// baseURL is overridable for tests.
	baseURL string
}

// NewAnthropicClient creates a client for the Anthropic API.
func NewAnthropicClient(apiKey, model string, opts Options) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	opts = opts.withDefaults()
	return &AnthropicClient{
		apiKey:  apiKey,
		model:   model,
		opts:    opts,
		hc:      opts.httpClient(),
		baseURL: anthropicURL,
	}, nil
}

func (c *AnthropicClient) Provider() string { return "anthropic" }

func (c *AnthropicClient) Model() string { return c.model }

// Generate implements Client.
func (c *AnthropicClient) Generate(ctx context.Context, userPrompt, systemPrompt string) Reply {
	payload := map[string]any{
		"model":       c.model,
		"max_tokens":  c.opts.MaxOutputTokens,
		"temperature": c.opts.Temperature,
		"messages": []map[string]string{
			{"role": "user", "content": userPrompt},
		},
	}
	if systemPrompt != "" {
		payload["system"] = systemPrompt
	}

	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": anthropicVersion,
	}

	start := time.Now()
	data, err := postJSON(ctx, c.hc, c.baseURL, headers, payload)
	if err != nil {
		return failedReply("anthropic", c.model, start, err)
	}

	var parsed struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Usage map[string]any `json:"usage"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return failedReply("anthropic", c.model, start, fmt.Errorf("decode response: %w", err))
	}

	var sb strings.Builder
	for _, part := range parsed.Content {
		if part.Type == "text" {
			sb.WriteString(part.Text)
		}
	}

	return Reply{
		Provider:  "anthropic",
		Model:     c.model,
		Text:      strings.TrimSpace(sb.String()),
		LatencyMS: time.Since(start).Milliseconds(),
		Raw:       json.RawMessage(data),
		Usage:     parsed.Usage,
	}
}

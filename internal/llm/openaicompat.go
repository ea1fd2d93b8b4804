package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OpenAICompatClient speaks the OpenAI chat-completions protocol. It
// serves any provider exposing that surface; in the default council
// that is both openai and xai, distinguished by provider name and base
// URL.
type OpenAICompatClient struct {
	provider string
	apiKey   string
	model    string
	baseURL  string
	opts     Options
	hc       *http.Client
}

// NewOpenAICompatClient creates a client for an OpenAI-compatible API.
func NewOpenAICompatClient(provider, apiKey, model, baseURL string, opts Options) (*OpenAICompatClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: API key is required", provider)
	}
	opts = opts.withDefaults()
	return &OpenAICompatClient{
		provider: provider,
		apiKey:   apiKey,
		model:    model,
		baseURL:  strings.TrimRight(baseURL, "/"),
		opts:     opts,
		hc:       opts.httpClient(),
	}, nil
}

func (c *OpenAICompatClient) Provider() string { return c.provider }

func (c *OpenAICompatClient) Model() string { return c.model }

// Generate implements Client.
func (c *OpenAICompatClient) Generate(ctx context.Context, userPrompt, systemPrompt string) Reply {
	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	var messages []message
	if systemPrompt != "" {
		messages = append(messages, message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, message{Role: "user", Content: userPrompt})

	payload := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"max_tokens":  c.opts.MaxOutputTokens,
		"temperature": c.opts.Temperature,
	}
	// gpt-5 family rejects explicit sampling and token-cap parameters.
	if strings.HasPrefix(c.model, "gpt-5") {
		delete(payload, "max_tokens")
		delete(payload, "temperature")
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}

	start := time.Now()
	data, err := postJSON(ctx, c.hc, c.baseURL+"/chat/completions", headers, payload)
	if err != nil {
		return failedReply(c.provider, c.model, start, err)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage map[string]any `json:"usage"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return failedReply(c.provider, c.model, start, fmt.Errorf("decode response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return failedReply(c.provider, c.model, start, fmt.Errorf("response has no choices"))
	}

	return Reply{
		Provider:  c.provider,
		Model:     c.model,
		Text:      strings.TrimSpace(parsed.Choices[0].Message.Content),
		LatencyMS: time.Since(start).Milliseconds(),
		Raw:       json.RawMessage(data),
		Usage:     parsed.Usage,
	}
}

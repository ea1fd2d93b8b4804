package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiClient speaks the Gemini generateContent protocol.
type GeminiClient struct {
	apiKey string
	model  string
	opts   Options
	hc     *http.Client

	// baseURL is overridable for tests.
	baseURL string
}

// NewGeminiClient creates a client for the Gemini API.
func NewGeminiClient(apiKey, model string, opts Options) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	opts = opts.withDefaults()
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		opts:    opts,
		hc:      opts.httpClient(),
		baseURL: geminiBaseURL,
	}, nil
}

func (c *GeminiClient) Provider() string { return "gemini" }

func (c *GeminiClient) Model() string { return c.model }

// Generate implements Client.
func (c *GeminiClient) Generate(ctx context.Context, userPrompt, systemPrompt string) Reply {
	payload := map[string]any{
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]string{{"text": userPrompt}},
			},
		},
		"generationConfig": map[string]any{
			"temperature":     c.opts.Temperature,
			"maxOutputTokens": c.opts.MaxOutputTokens,
		},
	}
	if systemPrompt != "" {
		payload["systemInstruction"] = map[string]any{
			"parts": []map[string]string{{"text": systemPrompt}},
		}
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))

	start := time.Now()
	data, err := postJSON(ctx, c.hc, endpoint, nil, payload)
	if err != nil {
		return failedReply("gemini", c.model, start, err)
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		UsageMetadata map[string]any `json:"usageMetadata"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return failedReply("gemini", c.model, start, fmt.Errorf("decode response: %w", err))
	}

	var sb strings.Builder
	if len(parsed.Candidates) > 0 {
		for _, part := range parsed.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}

	return Reply{
		Provider:  "gemini",
		Model:     c.model,
		Text:      strings.TrimSpace(sb.String()),
		LatencyMS: time.Since(start).Milliseconds(),
		Raw:       json.RawMessage(data),
		Usage:     parsed.UsageMetadata,
	}
}

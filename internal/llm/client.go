// Package llm provides the generation port: a uniform interface for
// turning a (system prompt, user prompt) pair into a reply, with one
// concrete client per provider wire protocol.
//
// Generate never returns a Go error. All failure modes — transport
// errors, non-2xx statuses, malformed response bodies — surface as a
// populated Err field on the Reply with empty Text, so orchestration
// code can treat every agent call uniformly.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Reply is one provider's answer to a generation request.
type Reply struct {
	Provider  string          `json:"provider"`
	Model     string          `json:"model"`
	Text      string          `json:"text"`
	LatencyMS int64           `json:"latency_ms"`
	Raw       json.RawMessage `json:"raw,omitempty"`
	Usage     map[string]any  `json:"usage,omitempty"`
	Err       string          `json:"error,omitempty"`
}

// Failed reports whether the reply carries a transport or provider error.
func (r Reply) Failed() bool { return r.Err != "" }

// Client is the generation port consumed by the council engine.
// Implementations must never panic and must never return partial text
// alongside an error: a failed call has empty Text and a non-empty Err.
type Client interface {
	// Provider returns the short provider identifier ("openai", ...).
	Provider() string
	// Model returns the provider-specific model name.
	Model() string
	// Generate sends the prompts and returns the reply. The context
	// carries the per-call timeout budget; the engine imposes no
	// additional deadline.
	Generate(ctx context.Context, userPrompt, systemPrompt string) Reply
}

// Options holds tuning knobs shared by the HTTP clients.
type Options struct {
	Timeout         time.Duration
	MaxOutputTokens int
	Temperature     float64
}

// DefaultOptions mirrors the defaults the providers are tuned for:
// deterministic output, a modest token cap, and a one minute budget.
func DefaultOptions() Options {
	return Options{
		Timeout:         60 * time.Second,
		MaxOutputTokens: 800,
		Temperature:     0,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Timeout <= 0 {
		o.Timeout = d.Timeout
	}
	if o.MaxOutputTokens <= 0 {
		o.MaxOutputTokens = d.MaxOutputTokens
	}
	return o
}

// httpClient builds the http.Client enforcing the per-call timeout.
func (o Options) httpClient() *http.Client {
	return &http.Client{Timeout: o.Timeout}
}

// failedReply constructs the uniform error reply.
func failedReply(provider, model string, start time.Time, err error) Reply {
	return Reply{
		Provider:  provider,
		Model:     model,
		Text:      "",
		LatencyMS: time.Since(start).Milliseconds(),
		Err:       err.Error(),
	}
}

// postJSON sends a JSON POST and returns the raw response body.
// Non-2xx statuses are errors carrying a snippet of the body, since
// provider APIs put the useful diagnostics there.
func postJSON(ctx context.Context, hc *http.Client, url string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: %s", resp.Status, clipBody(data))
	}
	return data, nil
}

// clipBody bounds error-message size for oversized provider error bodies.
func clipBody(data []byte) string {
	const max = 512
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}

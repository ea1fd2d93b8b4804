package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAICompatClient(t *testing.T) {
	t.Run("extracts text and usage", func(t *testing.T) {
		var gotPath string
		var gotBody map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_, _ = w.Write([]byte(`{
				"choices": [{"message": {"content": "  hello world  "}}],
				"usage": {"total_tokens": 42}
			}`))
		}))
		defer srv.Close()

		c, err := NewOpenAICompatClient("openai", "sk-test", "gpt-4o-mini", srv.URL, Options{})
		if err != nil {
			t.Fatalf("NewOpenAICompatClient failed: %v", err)
		}

		rep := c.Generate(context.Background(), "prompt", "system")
		if rep.Failed() {
			t.Fatalf("unexpected error: %s", rep.Err)
		}
		if rep.Text != "hello world" {
			t.Errorf("expected trimmed text, got %q", rep.Text)
		}
		if rep.Provider != "openai" || rep.Model != "gpt-4o-mini" {
			t.Errorf("identity fields wrong: %s/%s", rep.Provider, rep.Model)
		}
		if rep.Usage["total_tokens"] != float64(42) {
			t.Errorf("expected usage to carry total_tokens, got %v", rep.Usage)
		}
		if gotPath != "/chat/completions" {
			t.Errorf("expected /chat/completions path, got %q", gotPath)
		}
		if gotBody["max_tokens"] == nil {
			t.Error("expected max_tokens in payload for non gpt-5 model")
		}
	})

	t.Run("gpt-5 models omit sampling parameters", func(t *testing.T) {
		var gotBody map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
		}))
		defer srv.Close()

		c, _ := NewOpenAICompatClient("openai", "sk-test", "gpt-5-nano", srv.URL, Options{})
		rep := c.Generate(context.Background(), "p", "")
		if rep.Failed() {
			t.Fatalf("unexpected error: %s", rep.Err)
		}
		if _, ok := gotBody["max_tokens"]; ok {
			t.Error("gpt-5 payload must not contain max_tokens")
		}
		if _, ok := gotBody["temperature"]; ok {
			t.Error("gpt-5 payload must not contain temperature")
		}
	})

	t.Run("non-2xx surfaces as Err with empty text", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
		}))
		defer srv.Close()

		c, _ := NewOpenAICompatClient("xai", "key", "grok-3-mini", srv.URL, Options{})
		rep := c.Generate(context.Background(), "p", "")
		if !rep.Failed() {
			t.Fatal("expected failed reply")
		}
		if rep.Text != "" {
			t.Errorf("failed reply must have empty text, got %q", rep.Text)
		}
		if !strings.Contains(rep.Err, "rate limited") {
			t.Errorf("expected error to carry body snippet, got %q", rep.Err)
		}
	})

	t.Run("empty choices is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices": []}`))
		}))
		defer srv.Close()

		c, _ := NewOpenAICompatClient("openai", "key", "m", srv.URL, Options{})
		rep := c.Generate(context.Background(), "p", "")
		if !rep.Failed() {
			t.Fatal("expected failed reply for empty choices")
		}
	})

	t.Run("dead server never panics", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // connection refused from here on

		c, _ := NewOpenAICompatClient("openai", "key", "m", srv.URL, Options{})
		rep := c.Generate(context.Background(), "p", "")
		if !rep.Failed() {
			t.Fatal("expected failed reply for dead server")
		}
	})

	t.Run("missing API key is a construction error", func(t *testing.T) {
		if _, err := NewOpenAICompatClient("openai", "", "m", "http://x", Options{}); err == nil {
			t.Error("expected error for missing API key")
		}
	})
}

func TestAnthropicClient(t *testing.T) {
	t.Run("joins text parts and forwards headers", func(t *testing.T) {
		var gotVersion, gotKey string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotVersion = r.Header.Get("anthropic-version")
			gotKey = r.Header.Get("x-api-key")
			_, _ = w.Write([]byte(`{
				"content": [
					{"type": "text", "text": "part one "},
					{"type": "thinking", "text": "ignored"},
					{"type": "text", "text": "part two"}
				],
				"usage": {"input_tokens": 10}
			}`))
		}))
		defer srv.Close()

		c, err := NewAnthropicClient("sk-ant", "claude-haiku-4-5", Options{})
		if err != nil {
			t.Fatalf("NewAnthropicClient failed: %v", err)
		}
		c.baseURL = srv.URL

		rep := c.Generate(context.Background(), "p", "sys")
		if rep.Failed() {
			t.Fatalf("unexpected error: %s", rep.Err)
		}
		if rep.Text != "part one part two" {
			t.Errorf("expected joined text parts, got %q", rep.Text)
		}
		if gotVersion != anthropicVersion {
			t.Errorf("expected anthropic-version header, got %q", gotVersion)
		}
		if gotKey != "sk-ant" {
			t.Errorf("expected x-api-key header, got %q", gotKey)
		}
	})
}

func TestGeminiClient(t *testing.T) {
	t.Run("extracts candidate parts", func(t *testing.T) {
		var gotKey string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.URL.Query().Get("key")
			_, _ = w.Write([]byte(`{
				"candidates": [
					{"content": {"parts": [{"text": "alpha"}, {"text": " beta"}]}}
				],
				"usageMetadata": {"totalTokenCount": 7}
			}`))
		}))
		defer srv.Close()

		c, err := NewGeminiClient("g-key", "gemini-2.5-flash-lite", Options{})
		if err != nil {
			t.Fatalf("NewGeminiClient failed: %v", err)
		}
		c.baseURL = srv.URL

		rep := c.Generate(context.Background(), "p", "")
		if rep.Failed() {
			t.Fatalf("unexpected error: %s", rep.Err)
		}
		if rep.Text != "alpha beta" {
			t.Errorf("expected joined parts, got %q", rep.Text)
		}
		if gotKey != "g-key" {
			t.Errorf("expected key query param, got %q", gotKey)
		}
	})

	t.Run("no candidates yields empty text without error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates": []}`))
		}))
		defer srv.Close()

		c, _ := NewGeminiClient("g-key", "m", Options{})
		c.baseURL = srv.URL

		rep := c.Generate(context.Background(), "p", "")
		if rep.Failed() {
			t.Fatalf("unexpected error: %s", rep.Err)
		}
		if rep.Text != "" {
			t.Errorf("expected empty text, got %q", rep.Text)
		}
	})
}

package config

import (
	"os"
	"time"

	"github.com/artali/council/internal/errors"
	"github.com/artali/council/internal/llm"
	"github.com/artali/council/internal/roster"
)

// Options converts the shared provider settings into client options.
func (p ProvidersConfig) Options() llm.Options {
	return llm.Options{
		Timeout:         time.Duration(p.TimeoutSeconds) * time.Second,
		MaxOutputTokens: p.MaxOutputTokens,
	}
}

// BuildClients constructs one client per provider whose API key env
// variable is set. Providers without keys are skipped, not errors; an
// empty result means no provider is usable at all.
func BuildClients(cfg *Config) ([]llm.Client, error) {
	opts := cfg.Providers.Options()
	var clients []llm.Client

	if key := os.Getenv(cfg.Providers.OpenAI.APIKeyEnv); key != "" {
		c, err := llm.NewOpenAICompatClient("openai", key, cfg.Providers.OpenAI.Model, cfg.Providers.OpenAI.BaseURL, opts)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	if key := os.Getenv(cfg.Providers.XAI.APIKeyEnv); key != "" {
		c, err := llm.NewOpenAICompatClient("xai", key, cfg.Providers.XAI.Model, cfg.Providers.XAI.BaseURL, opts)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	if key := os.Getenv(cfg.Providers.Anthropic.APIKeyEnv); key != "" {
		c, err := llm.NewAnthropicClient(key, cfg.Providers.Anthropic.Model, opts)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	if key := os.Getenv(cfg.Providers.Gemini.APIKeyEnv); key != "" {
		c, err := llm.NewGeminiClient(key, cfg.Providers.Gemini.Model, opts)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}

	if len(clients) == 0 {
		return nil, errors.ErrEmptyRoster
	}
	return clients, nil
}

// BuildRoster derives the roster from constructed clients, preserving
// their order for stable 1..N indexing.
func BuildRoster(clients []llm.Client) ([]roster.ModelInfo, error) {
	members := make([]roster.Member, len(clients))
	for i, c := range clients {
		members[i] = roster.Member{Provider: c.Provider(), Model: c.Model()}
	}
	return roster.Build(members)
}

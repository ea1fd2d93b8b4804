package config

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/artali/council/internal/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadUsesDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Providers.OpenAI.Model != "gpt-5-nano" {
		t.Errorf("openai model = %q", cfg.Providers.OpenAI.Model)
	}
	if cfg.Providers.XAI.BaseURL != "https://api.x.ai/v1" {
		t.Errorf("xai base url = %q", cfg.Providers.XAI.BaseURL)
	}
	if cfg.Providers.TimeoutSeconds != 60 || cfg.Providers.MaxOutputTokens != 800 {
		t.Errorf("call budget = %d/%d", cfg.Providers.TimeoutSeconds, cfg.Providers.MaxOutputTokens)
	}
	if !cfg.Council.DoReviews || !cfg.Council.DoRevise {
		t.Error("pipeline phases disabled by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	viper.Set("providers.openai.model", "gpt-5")
	viper.Set("council.do_reviews", false)
	viper.Set("council.judge_priors", map[string]float64{"gemini": 1.5})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Providers.OpenAI.Model != "gpt-5" {
		t.Errorf("model override lost: %q", cfg.Providers.OpenAI.Model)
	}
	if cfg.Council.DoReviews {
		t.Error("do_reviews override lost")
	}
	if cfg.Council.JudgePriors["gemini"] != 1.5 {
		t.Errorf("priors override lost: %v", cfg.Council.JudgePriors)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero timeout", func(c *Config) { c.Providers.TimeoutSeconds = 0 }, "providers.timeout_seconds"},
		{"zero max tokens", func(c *Config) { c.Providers.MaxOutputTokens = 0 }, "providers.max_output_tokens"},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"empty runs dir", func(c *Config) { c.Paths.RunsDir = "" }, "paths.runs_dir"},
		{"negative prior", func(c *Config) { c.Council.JudgePriors = map[string]float64{"openai": -1} }, "council.judge_priors.openai"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var errs errors.ValidationErrors
			if !errors.As(err, &errs) {
				t.Fatalf("error type %T", err)
			}
			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for field %s in %v", tt.field, err)
			}
		})
	}
}

func TestBuildClients(t *testing.T) {
	cfg := Default()
	cfg.Providers.OpenAI.APIKeyEnv = "TEST_COUNCIL_OPENAI_KEY"
	cfg.Providers.Anthropic.APIKeyEnv = "TEST_COUNCIL_ANTHROPIC_KEY"
	cfg.Providers.Gemini.APIKeyEnv = "TEST_COUNCIL_GEMINI_KEY"
	cfg.Providers.XAI.APIKeyEnv = "TEST_COUNCIL_XAI_KEY"

	t.Run("no keys at all", func(t *testing.T) {
		_, err := BuildClients(cfg)
		if !errors.Is(err, errors.ErrEmptyRoster) {
			t.Fatalf("err = %v, want ErrEmptyRoster", err)
		}
	})

	t.Run("configured providers only", func(t *testing.T) {
		t.Setenv("TEST_COUNCIL_OPENAI_KEY", "sk-test")
		t.Setenv("TEST_COUNCIL_GEMINI_KEY", "g-test")

		clients, err := BuildClients(cfg)
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		if len(clients) != 2 {
			t.Fatalf("clients = %d, want 2", len(clients))
		}
		if clients[0].Provider() != "openai" || clients[1].Provider() != "gemini" {
			t.Errorf("providers = %s, %s", clients[0].Provider(), clients[1].Provider())
		}

		members, err := BuildRoster(clients)
		if err != nil {
			t.Fatalf("roster: %v", err)
		}
		if members[0].Index != 1 || members[1].Index != 2 {
			t.Errorf("indices = %d, %d", members[0].Index, members[1].Index)
		}
		if members[0].Model != "gpt-5-nano" {
			t.Errorf("model = %q", members[0].Model)
		}
	})
}

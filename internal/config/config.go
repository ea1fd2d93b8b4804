// Package config defines the council configuration, loaded through
// viper from config file, environment, and flags, with defaults that
// work out of the box once provider API keys are present.
package config

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/viper"

	"github.com/artali/council/internal/errors"
)

// Config is the complete council configuration.
type Config struct {
	Providers ProvidersConfig `mapstructure:"providers"`
	Council   CouncilConfig   `mapstructure:"council"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Paths     PathsConfig     `mapstructure:"paths"`
}

// ProviderConfig describes one provider endpoint. The API key itself is
// never stored in config; only the environment variable naming it is.
type ProviderConfig struct {
	// APIKeyEnv names the environment variable holding the key. A
	// provider with no key set is simply left off the roster.
	APIKeyEnv string `mapstructure:"api_key_env"`
	// Model is the provider-specific model string.
	Model string `mapstructure:"model"`
	// BaseURL overrides the API endpoint (OpenAI-compatible providers).
	BaseURL string `mapstructure:"base_url"`
}

// ProvidersConfig holds the per-provider endpoints plus the call budget
// shared by all of them.
type ProvidersConfig struct {
	OpenAI    ProviderConfig `mapstructure:"openai"`
	Anthropic ProviderConfig `mapstructure:"anthropic"`
	Gemini    ProviderConfig `mapstructure:"gemini"`
	XAI       ProviderConfig `mapstructure:"xai"`

	// TimeoutSeconds is the per-call budget for every provider call.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// MaxOutputTokens caps generation length per call.
	MaxOutputTokens int `mapstructure:"max_output_tokens"`
}

// CouncilConfig tunes the pipeline.
type CouncilConfig struct {
	// DoReviews enables the peer review phase.
	DoReviews bool `mapstructure:"do_reviews"`
	// DoRevise enables the revision phase.
	DoRevise bool `mapstructure:"do_revise"`
	// JudgeOverride forces the judge to a provider, skipping the vote.
	JudgeOverride string `mapstructure:"judge_override"`
	// JudgePriors overrides the static judging-quality priors.
	JudgePriors map[string]float64 `mapstructure:"judge_priors"`
}

// LoggingConfig controls the debug log.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
}

// PathsConfig controls where artifacts land.
type PathsConfig struct {
	// RunsDir is where run artifacts are written.
	RunsDir string `mapstructure:"runs_dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Providers: ProvidersConfig{
			OpenAI: ProviderConfig{
				APIKeyEnv: "OPENAI_API_KEY",
				Model:     "gpt-5-nano",
				BaseURL:   "https://api.openai.com/v1",
			},
			Anthropic: ProviderConfig{
				APIKeyEnv: "ANTHROPIC_API_KEY",
				Model:     "claude-haiku-4-5",
			},
			Gemini: ProviderConfig{
				APIKeyEnv: "GEMINI_API_KEY",
				Model:     "gemini-2.5-flash-lite",
			},
			XAI: ProviderConfig{
				APIKeyEnv: "XAI_API_KEY",
				Model:     "grok-3-mini",
				BaseURL:   "https://api.x.ai/v1",
			},
			TimeoutSeconds:  60,
			MaxOutputTokens: 800,
		},
		Council: CouncilConfig{
			DoReviews: true,
			DoRevise:  true,
		},
		Logging: LoggingConfig{Level: "info"},
		Paths:   PathsConfig{RunsDir: "runs"},
	}
}

// SetDefaults registers every default with viper so config files only
// need to name what they change.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("providers.openai.api_key_env", defaults.Providers.OpenAI.APIKeyEnv)
	viper.SetDefault("providers.openai.model", defaults.Providers.OpenAI.Model)
	viper.SetDefault("providers.openai.base_url", defaults.Providers.OpenAI.BaseURL)

	viper.SetDefault("providers.anthropic.api_key_env", defaults.Providers.Anthropic.APIKeyEnv)
	viper.SetDefault("providers.anthropic.model", defaults.Providers.Anthropic.Model)

	viper.SetDefault("providers.gemini.api_key_env", defaults.Providers.Gemini.APIKeyEnv)
	viper.SetDefault("providers.gemini.model", defaults.Providers.Gemini.Model)

	viper.SetDefault("providers.xai.api_key_env", defaults.Providers.XAI.APIKeyEnv)
	viper.SetDefault("providers.xai.model", defaults.Providers.XAI.Model)
	viper.SetDefault("providers.xai.base_url", defaults.Providers.XAI.BaseURL)

	viper.SetDefault("providers.timeout_seconds", defaults.Providers.TimeoutSeconds)
	viper.SetDefault("providers.max_output_tokens", defaults.Providers.MaxOutputTokens)

	viper.SetDefault("council.do_reviews", defaults.Council.DoReviews)
	viper.SetDefault("council.do_revise", defaults.Council.DoRevise)
	viper.SetDefault("council.judge_override", defaults.Council.JudgeOverride)
	viper.SetDefault("council.judge_priors", defaults.Council.JudgePriors)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("paths.runs_dir", defaults.Paths.RunsDir)
}

// Load unmarshals and validates the effective configuration.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get loads the configuration, falling back to defaults when the
// effective configuration is unusable.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ValidLogLevels returns the accepted logging levels.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs errors.ValidationErrors

	if c.Providers.TimeoutSeconds <= 0 {
		errs = append(errs, errors.NewValidationError(
			"providers.timeout_seconds", "must be positive"))
	}
	if c.Providers.MaxOutputTokens <= 0 {
		errs = append(errs, errors.NewValidationError(
			"providers.max_output_tokens", "must be positive"))
	}
	if !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errs = append(errs, errors.NewValidationError(
			"logging.level", "must be one of debug, info, warn, error"))
	}
	if c.Paths.RunsDir == "" {
		errs = append(errs, errors.NewValidationError(
			"paths.runs_dir", "must not be empty"))
	}
	for provider, prior := range c.Council.JudgePriors {
		if prior < 0 {
			errs = append(errs, errors.NewValidationError(
				"council.judge_priors."+provider, "must not be negative"))
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ConfigDir returns the user's council config directory, honoring
// XDG_CONFIG_HOME.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "council")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".council"
	}
	return filepath.Join(home, ".config", "council")
}

// ConfigFile returns the path to the config file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/artali/council/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or initialize council configuration",
	Long: `View or initialize council configuration.

Without arguments, displays the effective configuration. API keys are
never read from the config file; each provider names an environment
variable instead.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/council/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Println("Current configuration:")
	fmt.Println()

	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("Config file: (none - using defaults)\n")
	}
	fmt.Println()

	fmt.Println("providers:")
	for _, entry := range []struct {
		name string
		cfg  config.ProviderConfig
	}{
		{"openai", cfg.Providers.OpenAI},
		{"anthropic", cfg.Providers.Anthropic},
		{"gemini", cfg.Providers.Gemini},
		{"xai", cfg.Providers.XAI},
	} {
		name, p := entry.name, entry.cfg
		keyState := "unset"
		if os.Getenv(p.APIKeyEnv) != "" {
			keyState = "set"
		}
		fmt.Printf("  %s: model=%s key_env=%s (%s)\n", name, p.Model, p.APIKeyEnv, keyState)
	}
	fmt.Printf("  timeout_seconds: %d\n", cfg.Providers.TimeoutSeconds)
	fmt.Printf("  max_output_tokens: %d\n", cfg.Providers.MaxOutputTokens)

	fmt.Println("council:")
	fmt.Printf("  do_reviews: %v\n", cfg.Council.DoReviews)
	fmt.Printf("  do_revise: %v\n", cfg.Council.DoRevise)
	fmt.Printf("  judge_override: %q\n", cfg.Council.JudgeOverride)
	if len(cfg.Council.JudgePriors) > 0 {
		fmt.Println("  judge_priors:")
		for provider, prior := range cfg.Council.JudgePriors {
			fmt.Printf("    %s: %.2f\n", provider, prior)
		}
	}

	fmt.Println("logging:")
	fmt.Printf("  level: %s\n", cfg.Logging.Level)

	fmt.Println("paths:")
	fmt.Printf("  runs_dir: %s\n", cfg.Paths.RunsDir)

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configContent := `# Council configuration
# API keys are read from environment variables, never from this file.

providers:
  openai:
    api_key_env: OPENAI_API_KEY
    model: gpt-5-nano
    base_url: https://api.openai.com/v1
  anthropic:
    api_key_env: ANTHROPIC_API_KEY
    model: claude-haiku-4-5
  gemini:
    api_key_env: GEMINI_API_KEY
    model: gemini-2.5-flash-lite
  xai:
    api_key_env: XAI_API_KEY
    model: grok-3-mini
    base_url: https://api.x.ai/v1
  timeout_seconds: 60
  max_output_tokens: 800

council:
  do_reviews: true
  do_revise: true
  # judge_override: anthropic
  # judge_priors:
  #   openai: 1.00
  #   anthropic: 0.95

logging:
  level: info

paths:
  runs_dir: runs
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	fmt.Println(config.ConfigFile())
	return nil
}

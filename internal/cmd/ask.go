package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"

	"github.com/artali/council/internal/llm"
)

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Send one prompt to every configured provider",
	Long: `Broadcast a single prompt to every provider with a configured API key
and print each reply. No council machinery, just a side-by-side
comparison of the raw models.`,
	RunE: runAsk,
}

var askSystem string

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVar(&askSystem, "system", "You are a helpful assistant. Answer clearly.", "System prompt sent to every provider")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	prompt, err := problemFromArgs(args)
	if err != nil {
		return err
	}

	setup, err := buildSetup(cfg, "")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	replies := askAll(ctx, setup.clients, prompt, askSystem)
	for _, r := range replies {
		fmt.Println("\n" + strings.Repeat("=", 80))
		fmt.Printf("%s | %s | %d ms | error=%v\n", r.Provider, r.Model, r.LatencyMS, r.Err != "")
		if r.Err != "" {
			fmt.Println("ERROR:", r.Err)
			continue
		}
		fmt.Println(r.Text)
	}
	return nil
}

// askAll fans the prompt out to every client and returns replies in
// client order. Failures come back as error replies, never as a missing
// slot.
func askAll(ctx context.Context, clients []llm.Client, userPrompt, systemPrompt string) []llm.Reply {
	replies := make([]llm.Reply, len(clients))
	var wg conc.WaitGroup
	for i, c := range clients {
		i, c := i, c
		wg.Go(func() {
			replies[i] = c.Generate(ctx, userPrompt, systemPrompt)
		})
	}
	wg.Wait()
	return replies
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artali/council/internal/store"
	"github.com/artali/council/internal/util"
)

var replayCmd = &cobra.Command{
	Use:   "replay <path>",
	Short: "Replay a saved run artifact",
	Long: `Load a saved run artifact and print its plan, phase tallies, and the
winning solution. No providers are called.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	state, err := store.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Println("=== REPLAY ===")
	fmt.Println("Problem:", state.ProblemStatement)
	fmt.Println()
	fmt.Println("Judge:", memberLine(state.Plan.Judge))
	fmt.Println("Solvers:", solverProviders(state.Plan.Solvers))
	fmt.Println()

	fmt.Printf("Drafts: %d\n", len(state.Drafts))
	fmt.Printf("Reviews: %d\n", len(state.Reviews))
	fmt.Printf("Revisions: %d\n", len(state.Revisions))
	fmt.Println("Judge decision present:", state.Judge != nil)
	fmt.Println()

	fmt.Println("Winner:", state.WinnerProvider)
	if state.WinnerText != "" {
		fmt.Println()
		fmt.Println("--- Winner text (first 600 chars) ---")
		fmt.Println(util.Clip(state.WinnerText, 600))
	}

	parsedOK := 0
	retried := 0
	for _, r := range state.Reviews {
		if r.Parsed != nil && r.ParseError == "" {
			parsedOK++
		}
		if r.Attempts > 1 {
			retried++
		}
	}
	fmt.Println()
	fmt.Printf("Reviews parsed ok: %d/%d\n", parsedOK, len(state.Reviews))
	fmt.Printf("Reviews retried: %d\n", retried)

	return nil
}

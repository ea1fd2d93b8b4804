package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artali/council/internal/council"
	"github.com/artali/council/internal/roles"
	"github.com/artali/council/internal/util"
)

var planCmd = &cobra.Command{
	Use:   "plan [problem statement]",
	Short: "Preview the role plan without running the pipeline",
	Long: `Ask every council member who should judge, then print the resulting
plan, each member's opinion, and the score breakdown. Nothing else runs
and nothing is saved.`,
	RunE: runPlan,
}

var (
	planJudge  string
	planRoster string
)

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVar(&planJudge, "judge", "", "Force this provider as judge, skipping the vote outcome")
	planCmd.Flags().StringVar(&planRoster, "roster", "", "Roster definition file (YAML)")
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	problem, err := problemFromArgs(args)
	if err != nil {
		return err
	}

	setup, err := buildSetup(cfg, planRoster)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	plan, err := council.PlanCouncil(ctx, problem, setup.clients, setup.members, planJudge, setup.priors)
	if err != nil {
		return err
	}

	printPlan(plan)
	return nil
}

func printPlan(plan roles.SuggestedPlan) {
	fmt.Println("\n=== PLAN ===")
	fmt.Printf("Judge:  %d) %s\n", plan.Judge.Index, memberLine(plan.Judge))
	fmt.Println("Solvers:")
	for _, m := range plan.Solvers {
		fmt.Printf("  %d) %s\n", m.Index, memberLine(m))
	}

	fmt.Println("\n=== OPINIONS ===")
	for provider, res := range plan.Opinions {
		fmt.Printf("\n[%s] model=%s\n", provider, res.Model)
		if res.Parsed == nil {
			fmt.Printf("  INVALID: %s\n", res.ParseError)
			fmt.Printf("  raw: %s\n", util.Clip(res.RawText, 250))
			continue
		}
		self := res.Parsed.Self
		rec := res.Parsed.RecommendedJudge
		fmt.Printf("  self: %s conf=%.2f\n", self.PreferredRole, self.Confidence)
		fmt.Printf("  self_reason: %s\n", self.Reason)
		fmt.Printf("  recommends_judge: %s conf=%.2f\n", rec.Provider, rec.Confidence)
		fmt.Printf("  judge_reason: %s\n", rec.Reason)
	}

	fmt.Println("\n=== SCORE BREAKDOWN ===")
	for provider, b := range plan.ScoreBreakdown {
		parts := make([]string, 0, 3)
		for _, key := range []string{"prior", "self", "nominations"} {
			parts = append(parts, fmt.Sprintf("%s=%.2f", key, b[key]))
		}
		fmt.Printf("%s: %s\n", provider, strings.Join(parts, " "))
	}
}

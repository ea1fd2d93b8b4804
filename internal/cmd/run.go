package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/artali/council/internal/council"
	"github.com/artali/council/internal/event"
	"github.com/artali/council/internal/logging"
	"github.com/artali/council/internal/roles"
	"github.com/artali/council/internal/store"
	"github.com/artali/council/internal/tui"
	"github.com/artali/council/internal/util"
)

var runCmd = &cobra.Command{
	Use:   "run [problem statement]",
	Short: "Run the full council pipeline on a problem",
	Long: `Run the full council pipeline: role vote, parallel drafts, peer
reviews, revisions, and the judge's verdict. The run artifact is saved
as JSON under the configured runs directory.

Examples:
  # Full pipeline, interactive progress
  council run "Design a rate limiter for a public API"

  # Skip the review and revise phases
  council run --no-reviews --no-revise "Quick sanity check question"

  # Force the judge and save to a named artifact
  council run --judge anthropic --out runs/experiment1.json "..."`,
	RunE: runRun,
}

var (
	runOut       string
	runNoSave    bool
	runJudge     string
	runRoster    string
	runNoReviews bool
	runNoRevise  bool
	runPlain     bool
	runPreview   int
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "Artifact path (default: timestamped file in runs dir)")
	runCmd.Flags().BoolVar(&runNoSave, "no-save", false, "Do not save the run artifact")
	runCmd.Flags().StringVar(&runJudge, "judge", "", "Force this provider as judge, skipping the vote outcome")
	runCmd.Flags().StringVar(&runRoster, "roster", "", "Roster definition file (YAML)")
	runCmd.Flags().BoolVar(&runNoReviews, "no-reviews", false, "Skip the peer review phase")
	runCmd.Flags().BoolVar(&runNoRevise, "no-revise", false, "Skip the revision phase")
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "Plain console output instead of the interactive view")
	runCmd.Flags().IntVar(&runPreview, "preview-chars", 350, "Characters of draft/revision text to preview in plain mode")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	problem, err := problemFromArgs(args)
	if err != nil {
		return err
	}

	setup, err := buildSetup(cfg, runRoster)
	if err != nil {
		return err
	}

	log, err := logging.NewLogger(cfg.Paths.RunsDir, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer log.Close()

	judgeOverride := runJudge
	if judgeOverride == "" {
		judgeOverride = cfg.Council.JudgeOverride
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Println("Gathering role opinions...")
	plan, err := council.PlanCouncil(ctx, problem, setup.clients, setup.members, judgeOverride, setup.priors)
	if err != nil {
		return err
	}
	log = log.WithRun(store.NewRunID())

	opts := council.RunOptions{
		DoReviews: cfg.Council.DoReviews && !runNoReviews,
		DoRevise:  cfg.Council.DoRevise && !runNoRevise,
		Logger:    log,
	}

	savePath := ""
	if !runNoSave {
		savePath = runOut
		if savePath == "" {
			savePath = store.DefaultRunPath(cfg.Paths.RunsDir)
		} else if !strings.HasSuffix(strings.ToLower(savePath), ".json") {
			savePath += ".json"
		}
	}

	interactive := !runPlain && term.IsTerminal(int(os.Stdout.Fd()))
	if interactive {
		return runInteractive(ctx, problem, plan, setup, opts, savePath)
	}
	return runPlainConsole(ctx, problem, plan, setup, opts, savePath)
}

// problemFromArgs joins the args, or prompts on stdin when empty.
func problemFromArgs(args []string) (string, error) {
	problem := strings.TrimSpace(strings.Join(args, " "))
	if problem != "" {
		return problem, nil
	}

	fmt.Print("Problem statement: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read problem statement: %w", err)
	}
	problem = strings.TrimSpace(line)
	if problem == "" {
		return "", fmt.Errorf("empty problem statement")
	}
	return problem, nil
}

// runInteractive drives the bubbletea view. The pipeline runs on its
// own goroutine and streams events through the bus onto the view's
// message channel; DoneMsg closes the loop.
func runInteractive(ctx context.Context, problem string, plan roles.SuggestedPlan, setup *councilSetup, opts council.RunOptions, savePath string) error {
	bus := event.NewBus()
	msgs := make(chan tea.Msg, 64)
	bus.SubscribeAll(func(e event.Event) {
		msgs <- e
	})

	go func() {
		state, err := council.Run(ctx, problem, plan, council.ClientsByProvider(setup.clients), busCallbacks(bus), opts)
		if err != nil {
			msgs <- tui.DoneMsg{Err: err}
			return
		}
		publishOutcome(bus, state)

		saved := ""
		if savePath != "" {
			if _, serr := store.Save(state, savePath); serr != nil {
				msgs <- tui.DoneMsg{State: state, Err: serr}
				return
			}
			saved = savePath
		}
		msgs <- tui.DoneMsg{State: state, SavedPath: saved}
	}()

	_, err := tea.NewProgram(tui.New(plan, msgs)).Run()
	return err
}

// runPlainConsole prints per-item progress lines, for piped output and
// --plain runs.
func runPlainConsole(ctx context.Context, problem string, plan roles.SuggestedPlan, setup *councilSetup, opts council.RunOptions, savePath string) error {
	fmt.Printf("\nJudge: %s\n", memberLine(plan.Judge))
	fmt.Printf("Solvers: %s\n", solverProviders(plan.Solvers))

	cb := &council.RunCallbacks{
		OnPhaseStart: func(phase string) {
			fmt.Printf("\n[%s]\n", phase)
		},
		OnDraft: func(d council.SolutionResult) {
			if d.Err != "" {
				fmt.Printf("--- Draft failed: %s --- %s\n", d.Provider, d.Err)
				return
			}
			fmt.Printf("--- Draft ready: %s ---\n%s\n", d.Provider, util.Clip(d.Text, runPreview))
		},
		OnReview: func(r council.ReviewResult) {
			retry := ""
			if r.Attempts > 1 {
				retry = " (retried)"
			}
			if r.Parsed != nil {
				fmt.Printf("--- Review ready: %s -> %s --- overall=%d%s\n", r.ReviewerProvider, r.TargetProvider, r.Parsed.Overall, retry)
				return
			}
			fmt.Printf("--- Review ready: %s -> %s --- invalid JSON: %s%s\n", r.ReviewerProvider, r.TargetProvider, r.ParseError, retry)
		},
		OnRevision: func(r council.RevisionResult) {
			fmt.Printf("--- Revision ready: %s ---\n%s\n", r.Provider, util.Clip(r.Text, runPreview))
		},
	}

	state, err := council.Run(ctx, problem, plan, council.ClientsByProvider(setup.clients), cb, opts)
	if err != nil {
		return err
	}

	fmt.Println("\n==============================")
	fmt.Println("WINNER:", state.WinnerProvider)
	fmt.Println("==============================")
	fmt.Println()
	fmt.Println(state.WinnerText)

	if state.Judge != nil && state.Judge.Parsed != nil {
		fmt.Println("\n--- Judge rationale ---")
		fmt.Println(state.Judge.Parsed.Rationale)
	} else {
		fmt.Println("\n(Judge verdict unusable; deterministic fallback winner.)")
	}

	if savePath != "" {
		if _, err := store.Save(state, savePath); err != nil {
			return err
		}
		fmt.Printf("\nSaved run: %s\n", savePath)
	}
	return nil
}

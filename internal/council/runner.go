package council

import (
	"context"

	"github.com/artali/council/internal/llm"
	"github.com/artali/council/internal/logging"
	"github.com/artali/council/internal/roles"
	"github.com/artali/council/internal/roster"
)

// Phase names emitted through RunCallbacks.
const (
	PhaseDrafts    = "generate_drafts"
	PhaseReviews   = "generate_peer_reviews"
	PhaseRevisions = "revise_solutions"
	PhaseJudge     = "judge_solutions"
)

// RunCallbacks is the shared hook bundle used by every run surface.
// The CLI prints lines, the TUI updates its model; both consume the
// same per-item completions in arrival order. All fields are optional.
type RunCallbacks struct {
	OnPhaseStart func(phase string)
	OnPhaseEnd   func(phase string)

	OnDraft    func(SolutionResult)
	OnReview   func(ReviewResult)
	OnRevision func(RevisionResult)
}

func (cb *RunCallbacks) phaseStart(phase string) {
	if cb != nil && cb.OnPhaseStart != nil {
		cb.OnPhaseStart(phase)
	}
}

func (cb *RunCallbacks) phaseEnd(phase string) {
	if cb != nil && cb.OnPhaseEnd != nil {
		cb.OnPhaseEnd(phase)
	}
}

func (cb *RunCallbacks) onDraft() func(SolutionResult) {
	if cb == nil {
		return nil
	}
	return cb.OnDraft
}

func (cb *RunCallbacks) onReview() func(ReviewResult) {
	if cb == nil {
		return nil
	}
	return cb.OnReview
}

func (cb *RunCallbacks) onRevision() func(RevisionResult) {
	if cb == nil {
		return nil
	}
	return cb.OnRevision
}

// RunOptions tunes a council run. The review and revise phases can be
// skipped independently; drafting and judging always run.
type RunOptions struct {
	DoReviews bool
	DoRevise  bool
	Logger    *logging.Logger
}

// DefaultRunOptions enables the full four-phase pipeline.
func DefaultRunOptions() RunOptions {
	return RunOptions{DoReviews: true, DoRevise: true}
}

// PlanCouncil performs the pre-run role negotiation: gather every
// member's opinion, compute the deterministic default plan, then apply
// the optional judge override on top. Clients must align one-to-one
// with the roster.
func PlanCouncil(ctx context.Context, problemStatement string, clients []llm.Client, members []roster.ModelInfo, judgeOverride string, judgePriors map[string]float64) (roles.SuggestedPlan, error) {
	opinions, err := roles.AskForRoles(ctx, problemStatement, clients, members)
	if err != nil {
		return roles.SuggestedPlan{}, err
	}

	plan := roles.PlanRoles(members, opinions, judgePriors)
	if judgeOverride != "" {
		return roles.ApplyUserOverride(plan, judgeOverride)
	}
	return plan, nil
}

// ClientsByProvider indexes clients for phase dispatch.
func ClientsByProvider(clients []llm.Client) map[string]llm.Client {
	out := make(map[string]llm.Client, len(clients))
	for _, c := range clients {
		out[c.Provider()] = c
	}
	return out
}

// Run executes the council pipeline over a plan and returns the final
// state, which always carries a winner. Phases run strictly in
// sequence; within a phase, calls fan out in parallel and callbacks
// fire per item as results arrive.
func Run(ctx context.Context, problemStatement string, plan roles.SuggestedPlan, clients map[string]llm.Client, cb *RunCallbacks, opts RunOptions) (*CouncilState, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	state := NewState(problemStatement, plan)
	log.Info("council run starting",
		"judge", plan.Judge.Provider,
		"solvers", roster.Providers(plan.Solvers),
		"do_reviews", opts.DoReviews,
		"do_revise", opts.DoRevise)

	cb.phaseStart(PhaseDrafts)
	GenerateDrafts(ctx, state, clients, cb.onDraft())
	cb.phaseEnd(PhaseDrafts)
	log.WithPhase(PhaseDrafts).Debug("phase complete", "drafts", len(state.Drafts))

	if opts.DoReviews {
		cb.phaseStart(PhaseReviews)
		if err := GeneratePeerReviews(ctx, state, clients, cb.onReview()); err != nil {
			return nil, err
		}
		cb.phaseEnd(PhaseReviews)
		log.WithPhase(PhaseReviews).Debug("phase complete", "reviews", len(state.Reviews))
	}

	if opts.DoRevise {
		cb.phaseStart(PhaseRevisions)
		if err := ReviseSolutions(ctx, state, clients, cb.onRevision()); err != nil {
			return nil, err
		}
		cb.phaseEnd(PhaseRevisions)
		log.WithPhase(PhaseRevisions).Debug("phase complete", "revisions", len(state.Revisions))
	}

	cb.phaseStart(PhaseJudge)
	if err := JudgeSolutions(ctx, state, clients); err != nil {
		return nil, err
	}
	cb.phaseEnd(PhaseJudge)

	log.Info("council run finished",
		"winner", state.WinnerProvider,
		"judge_attempts", state.Judge.Attempts,
		"judge_parsed", state.Judge.Parsed != nil)
	return state, nil
}

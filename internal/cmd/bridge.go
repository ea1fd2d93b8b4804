package cmd

import (
	"github.com/artali/council/internal/council"
	"github.com/artali/council/internal/event"
)

// busCallbacks adapts pipeline callbacks into bus events so any number
// of surfaces (TUI, plain console, logs) can watch one run.
func busCallbacks(bus *event.Bus) *council.RunCallbacks {
	return &council.RunCallbacks{
		OnPhaseStart: func(phase string) {
			bus.Publish(event.NewPhaseStartedEvent(phase))
		},
		OnPhaseEnd: func(phase string) {
			bus.Publish(event.NewPhaseEndedEvent(phase))
		},
		OnDraft: func(d council.SolutionResult) {
			bus.Publish(event.NewDraftCompletedEvent(d.Provider, d.Err != ""))
		},
		OnReview: func(r council.ReviewResult) {
			bus.Publish(event.NewReviewCompletedEvent(r.ReviewerProvider, r.TargetProvider, r.Parsed != nil, r.Attempts))
		},
		OnRevision: func(r council.RevisionResult) {
			bus.Publish(event.NewRevisionCompletedEvent(r.Provider, r.KeptDraft))
		},
	}
}

// publishOutcome emits the terminal events once the pipeline returns.
// The judge phase has no per-item callback, so the verdict and winner
// are read off the final state.
func publishOutcome(bus *event.Bus, state *council.CouncilState) {
	if state.Judge != nil {
		bus.Publish(event.NewJudgeCompletedEvent(state.Judge.Provider, state.Judge.Parsed != nil, state.Judge.Attempts))
	}
	fallback := state.Judge == nil || state.Judge.Parsed == nil ||
		state.Judge.Parsed.WinnerProvider != state.WinnerProvider
	bus.Publish(event.NewWinnerSelectedEvent(state.WinnerProvider, fallback))
}

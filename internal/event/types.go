// Package event defines event types for decoupling components in the
// council engine. The CLI and TUI subscribe to run progress events
// without depending on the orchestrator directly.
package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "phase.started", "draft.completed")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Phase Events
// -----------------------------------------------------------------------------

// PhaseStartedEvent is emitted when a council phase begins.
type PhaseStartedEvent struct {
	baseEvent
	Phase string // Phase name, e.g. "generate_drafts", "judge_solutions"
}

// NewPhaseStartedEvent creates a PhaseStartedEvent.
func NewPhaseStartedEvent(phase string) PhaseStartedEvent {
	return PhaseStartedEvent{
		baseEvent: newBaseEvent("phase.started"),
		Phase:     phase,
	}
}

// PhaseEndedEvent is emitted when a council phase has fully drained its
// fan-in and merged results into the run state.
type PhaseEndedEvent struct {
	baseEvent
	Phase string
}

// NewPhaseEndedEvent creates a PhaseEndedEvent.
func NewPhaseEndedEvent(phase string) PhaseEndedEvent {
	return PhaseEndedEvent{
		baseEvent: newBaseEvent("phase.ended"),
		Phase:     phase,
	}
}

// -----------------------------------------------------------------------------
// Per-Item Events
// -----------------------------------------------------------------------------

// DraftCompletedEvent is emitted as each solver's draft arrives.
// Emission order reflects real completion timing, not roster order.
type DraftCompletedEvent struct {
	baseEvent
	Provider string
	Failed   bool // True when the reply carried a transport error
}

// NewDraftCompletedEvent creates a DraftCompletedEvent.
func NewDraftCompletedEvent(provider string, failed bool) DraftCompletedEvent {
	return DraftCompletedEvent{
		baseEvent: newBaseEvent("draft.completed"),
		Provider:  provider,
		Failed:    failed,
	}
}

// ReviewCompletedEvent is emitted as each peer review arrives.
type ReviewCompletedEvent struct {
	baseEvent
	Reviewer string
	Target   string
	Parsed   bool // False when both parse attempts failed
	Attempts int  // 1 or 2
}

// NewReviewCompletedEvent creates a ReviewCompletedEvent.
func NewReviewCompletedEvent(reviewer, target string, parsed bool, attempts int) ReviewCompletedEvent {
	return ReviewCompletedEvent{
		baseEvent: newBaseEvent("review.completed"),
		Reviewer:  reviewer,
		Target:    target,
		Parsed:    parsed,
		Attempts:  attempts,
	}
}

// RevisionCompletedEvent is emitted as each solver's revision arrives.
type RevisionCompletedEvent struct {
	baseEvent
	Provider  string
	KeptDraft bool // True when the revision was empty and the draft was kept
}

// NewRevisionCompletedEvent creates a RevisionCompletedEvent.
func NewRevisionCompletedEvent(provider string, keptDraft bool) RevisionCompletedEvent {
	return RevisionCompletedEvent{
		baseEvent: newBaseEvent("revision.completed"),
		Provider:  provider,
		KeptDraft: keptDraft,
	}
}

// JudgeCompletedEvent is emitted once the judge call (including any repair
// attempt) has finished, before winner selection.
type JudgeCompletedEvent struct {
	baseEvent
	Provider string
	Parsed   bool
	Attempts int
}

// NewJudgeCompletedEvent creates a JudgeCompletedEvent.
func NewJudgeCompletedEvent(provider string, parsed bool, attempts int) JudgeCompletedEvent {
	return JudgeCompletedEvent{
		baseEvent: newBaseEvent("judge.completed"),
		Provider:  provider,
		Parsed:    parsed,
		Attempts:  attempts,
	}
}

// WinnerSelectedEvent is emitted when a winner has been determined,
// whether by the judge's decision or by the deterministic fallback.
type WinnerSelectedEvent struct {
	baseEvent
	Provider string
	Fallback bool // True when the scoring fallback picked the winner
}

// NewWinnerSelectedEvent creates a WinnerSelectedEvent.
func NewWinnerSelectedEvent(provider string, fallback bool) WinnerSelectedEvent {
	return WinnerSelectedEvent{
		baseEvent: newBaseEvent("winner.selected"),
		Provider:  provider,
		Fallback:  fallback,
	}
}

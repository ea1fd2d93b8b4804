// Package council implements the deliberation pipeline: solvers draft
// in parallel, cross-review each other's drafts, revise under feedback,
// and a judge picks the winner. Agent failures are absorbed into result
// records so a run always completes with a winner.
package council

import (
	"encoding/json"

	"github.com/artali/council/internal/roles"
)

// SolutionResult records one solver's draft (or revision source) text.
// A failed generation keeps its slot with empty text and the error.
type SolutionResult struct {
	Provider string          `json:"provider"`
	Model    string          `json:"model"`
	Text     string          `json:"text"`
	Raw      json.RawMessage `json:"raw,omitempty"`
	Err      string          `json:"error,omitempty"`
}

// ReviewResult records one reviewer/target pairing, parsed or not.
// Attempts is 1 when the first output parsed, 2 when a repair retry was
// needed (whether or not it succeeded).
type ReviewResult struct {
	ReviewerProvider string          `json:"reviewer_provider"`
	TargetProvider   string          `json:"target_provider"`
	RawText          string          `json:"raw_text"`
	Parsed           *PeerReview     `json:"parsed,omitempty"`
	ParseError       string          `json:"parse_error,omitempty"`
	Raw              json.RawMessage `json:"raw,omitempty"`
	Attempts         int             `json:"attempts"`
	Err              string          `json:"error,omitempty"`
}

// RevisionResult records one solver's post-feedback text. When the
// solver produced nothing usable the draft text is carried forward, so
// revisions never regress below the draft.
type RevisionResult struct {
	Provider  string          `json:"provider"`
	Model     string          `json:"model"`
	Text      string          `json:"text"`
	Raw       json.RawMessage `json:"raw,omitempty"`
	Err       string          `json:"error,omitempty"`
	KeptDraft bool            `json:"kept_draft,omitempty"`
}

// JudgeResult records the judge call, parsed or not.
type JudgeResult struct {
	Provider   string          `json:"provider"`
	Model      string          `json:"model"`
	RawText    string          `json:"raw_text"`
	Parsed     *JudgeDecision  `json:"parsed,omitempty"`
	ParseError string          `json:"parse_error,omitempty"`
	Raw        json.RawMessage `json:"raw,omitempty"`
	Attempts   int             `json:"attempts"`
	Err        string          `json:"error,omitempty"`
}

// CouncilState is the mutable aggregate a run accumulates phase by
// phase. Phases write it only at their join points; between phases it
// is safe to read for progress display or persistence.
type CouncilState struct {
	ProblemStatement string              `json:"problem_statement"`
	Plan             roles.SuggestedPlan `json:"plan"`

	Drafts    map[string]SolutionResult `json:"drafts"`
	Reviews   []ReviewResult            `json:"reviews"`
	Revisions map[string]RevisionResult `json:"revisions"`
	Judge     *JudgeResult              `json:"judge"`

	WinnerProvider string `json:"winner_provider"`
	WinnerText     string `json:"winner_text"`
}

// NewState creates an empty state for a planned run.
func NewState(problemStatement string, plan roles.SuggestedPlan) *CouncilState {
	return &CouncilState{
		ProblemStatement: problemStatement,
		Plan:             plan,
		Drafts:           make(map[string]SolutionResult),
		Revisions:        make(map[string]RevisionResult),
	}
}

// FinalSolutions returns the text the judge sees per solver: revisions
// when the revise phase ran, drafts otherwise.
func (s *CouncilState) FinalSolutions() map[string]string {
	out := make(map[string]string)
	if len(s.Revisions) > 0 {
		for p, r := range s.Revisions {
			out[p] = r.Text
		}
		return out
	}
	for p, d := range s.Drafts {
		out[p] = d.Text
	}
	return out
}

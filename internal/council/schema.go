package council

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/artali/council/internal/jsonx"
)

// MaxParseAttempts bounds how many times a structured output is
// requested from an agent: one attempt plus one repair retry. Raise it
// here if operator throughput needs ever change.
const MaxParseAttempts = 2

// PeerReview is the structured verdict one solver produces about
// another solver's draft. Identity fields are overwritten with ground
// truth after parsing, so agents cannot misattribute reviews.
type PeerReview struct {
	ReviewerProvider string `json:"reviewer_provider"`
	TargetProvider   string `json:"target_provider"`

	Correctness  int `json:"correctness"`
	Completeness int `json:"completeness"`
	Clarity      int `json:"clarity"`
	Feasibility  int `json:"feasibility"`
	Overall      int `json:"overall"`

	KeyFlaws       []string `json:"key_flaws"`
	SuggestedFixes []string `json:"suggested_fixes"`
	Summary        string   `json:"summary"`

	missing []string
}

// reviewRequiredKeys are the fields an agent must send. key_flaws and
// suggested_fixes default to empty lists and may be omitted.
var reviewRequiredKeys = []string{
	"reviewer_provider", "target_provider",
	"correctness", "completeness", "clarity", "feasibility", "overall",
	"summary",
}

// UnmarshalJSON records which required keys the payload omitted, since a
// zero-valued score decodes identically to an absent one. Validate then
// rejects the zero-filled fields the agent never actually sent.
func (r *PeerReview) UnmarshalJSON(data []byte) error {
	type plain PeerReview
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*r = PeerReview(decoded)
	for _, k := range reviewRequiredKeys {
		if _, ok := keys[k]; !ok {
			r.missing = append(r.missing, k)
		}
	}
	return nil
}

// Validate implements jsonx.Validatable.
func (r *PeerReview) Validate() error {
	if len(r.missing) > 0 {
		return fmt.Errorf("missing required field %q", r.missing[0])
	}
	if r.ReviewerProvider == "" {
		return fmt.Errorf("reviewer_provider must not be empty")
	}
	if r.TargetProvider == "" {
		return fmt.Errorf("target_provider must not be empty")
	}
	scores := []struct {
		name  string
		value int
	}{
		{"correctness", r.Correctness},
		{"completeness", r.Completeness},
		{"clarity", r.Clarity},
		{"feasibility", r.Feasibility},
		{"overall", r.Overall},
	}
	for _, s := range scores {
		if s.value < 0 || s.value > 10 {
			return fmt.Errorf("%s must be in [0,10], got %d", s.name, s.value)
		}
	}
	if len(r.KeyFlaws) > 8 {
		return fmt.Errorf("key_flaws must have at most 8 entries, got %d", len(r.KeyFlaws))
	}
	if len(r.SuggestedFixes) > 8 {
		return fmt.Errorf("suggested_fixes must have at most 8 entries, got %d", len(r.SuggestedFixes))
	}
	if n := utf8.RuneCountInString(r.Summary); n < 1 || n > 600 {
		return fmt.Errorf("summary must be 1-600 characters, got %d", n)
	}
	return nil
}

// RankingEntry is one row of the judge's ranking. Entries are carried
// for display and are not themselves validated beyond decoding.
type RankingEntry struct {
	Provider string  `json:"provider"`
	Score    float64 `json:"score"`
	Reason   string  `json:"reason"`
}

// JudgeDecision is the judge's structured verdict over the final
// solutions.
type JudgeDecision struct {
	WinnerProvider string         `json:"winner_provider"`
	Ranking        []RankingEntry `json:"ranking"`
	Rationale      string         `json:"rationale"`
}

// Validate implements jsonx.Validatable.
func (d *JudgeDecision) Validate() error {
	if d.WinnerProvider == "" {
		return fmt.Errorf("winner_provider must not be empty")
	}
	if d.Ranking == nil {
		return fmt.Errorf("ranking must be present")
	}
	if n := utf8.RuneCountInString(d.Rationale); n < 1 || n > 1200 {
		return fmt.Errorf("rationale must be 1-1200 characters, got %d", n)
	}
	return nil
}

// ParseReview decodes a PeerReview from free-form agent output.
func ParseReview(rawText string) (*PeerReview, *jsonx.ParseError) {
	var review PeerReview
	if perr := jsonx.Unmarshal(rawText, &review); perr != nil {
		return nil, perr
	}
	return &review, nil
}

// ParseJudgeDecision decodes a JudgeDecision from free-form agent output.
func ParseJudgeDecision(rawText string) (*JudgeDecision, *jsonx.ParseError) {
	var decision JudgeDecision
	if perr := jsonx.Unmarshal(rawText, &decision); perr != nil {
		return nil, perr
	}
	return &decision, nil
}

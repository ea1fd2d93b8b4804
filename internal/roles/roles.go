// Package roles implements the role negotiation round that runs before
// the council proper: every member is asked which role it wants and who
// among the roster should judge, and a deterministic planner turns those
// opinions into a judge/solver assignment.
package roles

import (
	"fmt"
	"unicode/utf8"

	"github.com/artali/council/internal/jsonx"
	"github.com/artali/council/internal/roster"
)

// Role is a council member's function in a run.
type Role string

const (
	// RoleJudge evaluates solver answers and picks the best.
	RoleJudge Role = "judge"
	// RoleSolver generates candidate solutions.
	RoleSolver Role = "solver"
)

// RolePreference is a member's claim about its own role.
type RolePreference struct {
	PreferredRole Role    `json:"preferred_role"`
	Confidence    float64 `json:"confidence"`
	Reason        string  `json:"reason"`
}

// Validate checks field ranges.
func (p *RolePreference) Validate() error {
	if p.PreferredRole != RoleJudge && p.PreferredRole != RoleSolver {
		return fmt.Errorf("self.preferred_role must be %q or %q, got %q", RoleJudge, RoleSolver, p.PreferredRole)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("self.confidence must be in [0,1], got %v", p.Confidence)
	}
	if n := utf8.RuneCountInString(p.Reason); n < 1 || n > 400 {
		return fmt.Errorf("self.reason must be 1-400 characters, got %d", n)
	}
	return nil
}

// JudgeRecommendation is a member's nomination of a judge provider.
type JudgeRecommendation struct {
	Provider   string  `json:"provider"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Validate checks field ranges.
func (r *JudgeRecommendation) Validate() error {
	if r.Provider == "" {
		return fmt.Errorf("recommended_judge.provider must not be empty")
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("recommended_judge.confidence must be in [0,1], got %v", r.Confidence)
	}
	if n := utf8.RuneCountInString(r.Reason); n < 1 || n > 400 {
		return fmt.Errorf("recommended_judge.reason must be 1-400 characters, got %d", n)
	}
	return nil
}

// RoleOpinion is one member's full answer: its own preference plus its
// judge nomination.
type RoleOpinion struct {
	Self             RolePreference      `json:"self"`
	RecommendedJudge JudgeRecommendation `json:"recommended_judge"`
}

// Validate implements jsonx.Validatable.
func (o *RoleOpinion) Validate() error {
	if err := o.Self.Validate(); err != nil {
		return err
	}
	return o.RecommendedJudge.Validate()
}

// RoleOpinionResult records the outcome of asking one member for its
// opinion. Parsed is nil when the member's output could not be decoded;
// the run proceeds regardless, falling back to priors.
type RoleOpinionResult struct {
	Provider   string       `json:"provider"`
	Model      string       `json:"model"`
	RawText    string       `json:"raw_text"`
	Parsed     *RoleOpinion `json:"parsed,omitempty"`
	ParseError string       `json:"parse_error,omitempty"`
}

// ParseOpinion decodes a RoleOpinion from free-form agent output.
// It never panics; failures come back as a tagged parse error.
func ParseOpinion(rawText string) (*RoleOpinion, *jsonx.ParseError) {
	var opinion RoleOpinion
	if perr := jsonx.Unmarshal(rawText, &opinion); perr != nil {
		return nil, perr
	}
	return &opinion, nil
}

// BuildOpinionPrompts renders the (system, user) prompt pair for asking
// member `you` its role opinion. The full roster is embedded so the
// member nominates among real providers, and the output contract is
// strict JSON-only.
func BuildOpinionPrompts(problemStatement string, members []roster.ModelInfo, you roster.ModelInfo) (systemPrompt, userPrompt string) {
	systemPrompt = "You are a member of an LLM Council. Exactly 1 model will be the JUDGE and the rest are SOLVERS.\n" +
		"Solvers generate solutions. The Judge evaluates multiple solver answers and picks the best.\n" +
		"Output MUST be ONLY a single JSON object. No extra text.\n\n" +
		fmt.Sprintf("Your identity: provider='%s', model='%s', roster_index=%d\n", you.Provider, you.Model, you.Index)

	userPrompt = roster.Text(members) + "\n\n" +
		"Task:\n" +
		"1) Decide whether YOU should be 'judge' or 'solver' given the roster.\n" +
		"2) Recommend which PROVIDER from the roster should be the judge overall.\n\n" +
		"Return ONLY JSON with this exact schema (no markdown):\n" +
		"{\n" +
		"  \"self\": {\"preferred_role\": \"judge\" | \"solver\", \"confidence\": 0.0-1.0, \"reason\": \"short\"},\n" +
		"  \"recommended_judge\": {\"provider\": \"<one of the roster providers>\", \"confidence\": 0.0-1.0, \"reason\": \"short\"}\n" +
		"}\n\n" +
		fmt.Sprintf("Problem statement:\n%s\n", problemStatement)

	return systemPrompt, userPrompt
}

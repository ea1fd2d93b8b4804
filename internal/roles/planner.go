package roles

import (
	"fmt"
	"sort"
	"strings"

	"github.com/artali/council/internal/errors"
	"github.com/artali/council/internal/roster"
)

// NominationWeight scales how much nominations contribute relative to
// priors plus the self-signal.
const NominationWeight = 0.70

// defaultPrior is used for providers absent from the prior table.
const defaultPrior = 0.80

// solverSelfDamping discounts the self-signal of members that asked to
// be solvers. A self-claim of judge matters, but isn't absolute.
const solverSelfDamping = 0.55

// DefaultJudgePriors returns the static judging-quality priors used
// when no overrides are configured.
func DefaultJudgePriors() map[string]float64 {
	return map[string]float64{
		"openai":    1.00,
		"anthropic": 0.95,
		"gemini":    0.90,
		"xai":       0.85,
	}
}

// SuggestedPlan is the planner's judge/solver assignment, with the
// opinions and per-provider score components kept for display and
// persistence.
type SuggestedPlan struct {
	Judge   roster.ModelInfo   `json:"judge"`
	Solvers []roster.ModelInfo `json:"solvers"`

	Opinions       map[string]RoleOpinionResult  `json:"opinions"`
	ScoreBreakdown map[string]map[string]float64 `json:"score_breakdown"`
}

// Roster returns the plan's full member list, judge first.
func (p SuggestedPlan) Roster() []roster.ModelInfo {
	out := make([]roster.ModelInfo, 0, len(p.Solvers)+1)
	out = append(out, p.Judge)
	out = append(out, p.Solvers...)
	return out
}

// PlanRoles deterministically picks the judge from opinions and priors.
//
// Score components for candidate provider P:
//   - prior(P)
//   - self(P): P claiming judge, weighted by its confidence
//   - nominations(P): other members nominating P, weighted by their
//     confidence and the nominator's prior
//
// Final score is prior*(0.60 + 0.40*self) + nominations. When opinions
// are missing or unparsable for everyone, the highest prior wins. Ties
// break on descending (provider, model, index), so identical inputs
// always produce identical plans.
func PlanRoles(members []roster.ModelInfo, opinions map[string]RoleOpinionResult, judgePriors map[string]float64) SuggestedPlan {
	priors := judgePriors
	if priors == nil {
		priors = DefaultJudgePriors()
	}

	breakdown := make(map[string]map[string]float64, len(members))
	for _, m := range members {
		breakdown[m.Provider] = map[string]float64{
			"prior":       priorFor(priors, m.Provider),
			"self":        0,
			"nominations": 0,
		}
	}

	for _, m := range members {
		r, ok := opinions[m.Provider]
		if !ok || r.Parsed == nil {
			continue
		}
		factor := solverSelfDamping
		if r.Parsed.Self.PreferredRole == RoleJudge {
			factor = 1.0
		}
		breakdown[m.Provider]["self"] += factor * r.Parsed.Self.Confidence
	}

	for _, nominator := range members {
		r, ok := opinions[nominator.Provider]
		if !ok || r.Parsed == nil {
			continue
		}
		target := strings.TrimSpace(r.Parsed.RecommendedJudge.Provider)
		if _, known := breakdown[target]; !known {
			continue
		}
		weight := priorFor(priors, nominator.Provider)
		breakdown[target]["nominations"] += NominationWeight * r.Parsed.RecommendedJudge.Confidence * weight
	}

	scored := make([]roster.ModelInfo, len(members))
	copy(scored, members)
	score := func(m roster.ModelInfo) float64 {
		b := breakdown[m.Provider]
		return b["prior"]*(0.60+0.40*b["self"]) + b["nominations"]
	}
	sort.SliceStable(scored, func(i, j int) bool {
		si, sj := score(scored[i]), score(scored[j])
		if si != sj {
			return si > sj
		}
		if scored[i].Provider != scored[j].Provider {
			return scored[i].Provider > scored[j].Provider
		}
		if scored[i].Model != scored[j].Model {
			return scored[i].Model > scored[j].Model
		}
		return scored[i].Index > scored[j].Index
	})

	judge := scored[0]
	solvers := make([]roster.ModelInfo, 0, len(members)-1)
	for _, m := range members {
		if m.Provider != judge.Provider {
			solvers = append(solvers, m)
		}
	}

	return SuggestedPlan{
		Judge:          judge,
		Solvers:        solvers,
		Opinions:       opinions,
		ScoreBreakdown: breakdown,
	}
}

// ApplyUserOverride swaps the judge to the named provider, keeping
// opinions and scores intact. An unknown provider is a configuration
// error.
func ApplyUserOverride(plan SuggestedPlan, judgeProvider string) (SuggestedPlan, error) {
	if judgeProvider == plan.Judge.Provider {
		return plan, nil
	}

	members := plan.Roster()
	byProvider := roster.ByProvider(members)
	newJudge, ok := byProvider[judgeProvider]
	if !ok {
		return SuggestedPlan{}, fmt.Errorf("%w: judge %q, roster %v",
			errors.ErrUnknownProvider, judgeProvider, roster.Providers(members))
	}

	solvers := make([]roster.ModelInfo, 0, len(members)-1)
	for _, m := range members {
		if m.Provider != judgeProvider {
			solvers = append(solvers, m)
		}
	}

	return SuggestedPlan{
		Judge:          newJudge,
		Solvers:        solvers,
		Opinions:       plan.Opinions,
		ScoreBreakdown: plan.ScoreBreakdown,
	}, nil
}

func priorFor(priors map[string]float64, provider string) float64 {
	if p, ok := priors[provider]; ok {
		return p
	}
	return defaultPrior
}

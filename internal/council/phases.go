package council

import (
	"context"
	"strings"

	"github.com/sourcegraph/conc"

	"github.com/artali/council/internal/errors"
	"github.com/artali/council/internal/llm"
	"github.com/artali/council/internal/roster"
)

// collect runs every job in parallel and hands results to onItem in
// arrival order. The caller sees completion as it happens; aggregate
// state is only written after all jobs joined.
func collect[T any](jobs []func() T, onItem func(T)) []T {
	ch := make(chan T)

	var wg conc.WaitGroup
	for _, job := range jobs {
		job := job
		wg.Go(func() { ch <- job() })
	}
	go func() {
		wg.Wait()
		close(ch)
	}()

	results := make([]T, 0, len(jobs))
	for item := range ch {
		results = append(results, item)
		if onItem != nil {
			onItem(item)
		}
	}
	return results
}

// GenerateDrafts runs phase one: every solver drafts in parallel.
// onDraft fires per draft as it arrives; failures are absorbed into the
// draft record.
func GenerateDrafts(ctx context.Context, state *CouncilState, clients map[string]llm.Client, onDraft func(SolutionResult)) {
	systemPrompt, userPrompt := buildSolverPrompts(state.ProblemStatement, state.Plan)

	jobs := make([]func() SolutionResult, 0, len(state.Plan.Solvers))
	for _, solver := range state.Plan.Solvers {
		solver := solver
		jobs = append(jobs, func() SolutionResult {
			reply := clients[solver.Provider].Generate(ctx, userPrompt, systemPrompt)
			return SolutionResult{
				Provider: solver.Provider,
				Model:    solver.Model,
				Text:     reply.Text,
				Raw:      reply.Raw,
				Err:      reply.Err,
			}
		})
	}

	drafts := collect(jobs, onDraft)
	state.Drafts = make(map[string]SolutionResult, len(drafts))
	for _, d := range drafts {
		state.Drafts[d.Provider] = d
	}
}

// GeneratePeerReviews runs phase two: every solver reviews every other
// solver's draft, N*(N-1) reviews in parallel. Each review gets at most
// one repair retry when its JSON fails to parse; unparsable reviews are
// still recorded. Requires drafts.
func GeneratePeerReviews(ctx context.Context, state *CouncilState, clients map[string]llm.Client, onReview func(ReviewResult)) error {
	if len(state.Drafts) == 0 {
		return errors.ErrNoDrafts
	}

	var jobs []func() ReviewResult
	for _, reviewer := range state.Plan.Solvers {
		for _, target := range state.Plan.Solvers {
			if reviewer.Provider == target.Provider {
				continue
			}
			reviewer, target := reviewer, target
			jobs = append(jobs, func() ReviewResult {
				return reviewOne(ctx, state, clients[reviewer.Provider], reviewer, target)
			})
		}
	}

	state.Reviews = collect(jobs, onReview)
	return nil
}

func reviewOne(ctx context.Context, state *CouncilState, client llm.Client, reviewer, target roster.ModelInfo) ReviewResult {
	targetText := state.Drafts[target.Provider].Text
	systemPrompt, userPrompt := buildReviewPrompts(state.ProblemStatement, state.Plan, reviewer, target, targetText)

	reply := client.Generate(ctx, userPrompt, systemPrompt)
	parsed, perr := ParseReview(reply.Text)

	attempts := 1
	var firstErr, firstTransportErr string
	if parsed == nil {
		if perr != nil {
			firstErr = perr.Error()
		}
		firstTransportErr = reply.Err

		repairSystem, repairUser := buildRepairPrompts("REVIEW_REPAIR", reply.Text, reviewSchemaText)
		reply = client.Generate(ctx, repairUser, repairSystem)
		parsed, perr = ParseReview(reply.Text)
		attempts = MaxParseAttempts
	}

	result := ReviewResult{
		ReviewerProvider: reviewer.Provider,
		TargetProvider:   target.Provider,
		RawText:          reply.Text,
		Raw:              reply.Raw,
		Attempts:         attempts,
		Err:              reply.Err,
	}

	if parsed != nil {
		// Never trust self-reported identity fields.
		parsed.ReviewerProvider = reviewer.Provider
		parsed.TargetProvider = target.Provider
		result.Parsed = parsed
		return result
	}

	if perr != nil {
		result.ParseError = perr.Error()
	}
	if result.ParseError == "" {
		result.ParseError = firstErr
	}
	if result.Err == "" {
		result.Err = firstTransportErr
	}
	return result
}

// ReviseSolutions runs phase three: every solver rewrites its draft
// under the peer feedback addressed to it. An empty or whitespace-only
// revision keeps the draft text, so this phase never loses work.
// Requires drafts; reviews are optional.
func ReviseSolutions(ctx context.Context, state *CouncilState, clients map[string]llm.Client, onRevision func(RevisionResult)) error {
	if len(state.Drafts) == 0 {
		return errors.ErrNoDrafts
	}

	jobs := make([]func() RevisionResult, 0, len(state.Plan.Solvers))
	for _, solver := range state.Plan.Solvers {
		solver := solver
		jobs = append(jobs, func() RevisionResult {
			var myReviews []ReviewResult
			for _, r := range state.Reviews {
				if r.TargetProvider == solver.Provider {
					myReviews = append(myReviews, r)
				}
			}

			draft := state.Drafts[solver.Provider].Text
			systemPrompt, userPrompt := buildRefinePrompts(state.ProblemStatement, state.Plan, solver, draft, myReviews)
			reply := clients[solver.Provider].Generate(ctx, userPrompt, systemPrompt)

			text := strings.TrimSpace(reply.Text)
			kept := text == ""
			if kept {
				text = draft
			}
			return RevisionResult{
				Provider:  solver.Provider,
				Model:     solver.Model,
				Text:      text,
				Raw:       reply.Raw,
				Err:       reply.Err,
				KeptDraft: kept,
			}
		})
	}

	revisions := collect(jobs, onRevision)
	state.Revisions = make(map[string]RevisionResult, len(revisions))
	for _, r := range revisions {
		state.Revisions[r.Provider] = r
	}
	return nil
}

// JudgeSolutions runs phase four: the judge ranks the final solutions
// and names a winner. The judge gets one repair retry; when its verdict
// is still unusable, or names a non-solver, the winner falls back to
// the highest mean peer overall score, then to the first solver in plan
// order. A run that reaches this phase always ends with a winner.
// Requires drafts.
func JudgeSolutions(ctx context.Context, state *CouncilState, clients map[string]llm.Client) error {
	if len(state.Drafts) == 0 {
		return errors.ErrNoDrafts
	}

	solutions := state.FinalSolutions()
	systemPrompt, userPrompt := buildJudgePrompts(state.ProblemStatement, state.Plan, solutions)
	judgeClient := clients[state.Plan.Judge.Provider]

	reply := judgeClient.Generate(ctx, userPrompt, systemPrompt)
	parsed, perr := ParseJudgeDecision(reply.Text)

	attempts := 1
	if parsed == nil {
		repairSystem, repairUser := buildRepairPrompts("JUDGE_REPAIR", reply.Text, judgeSchemaText)
		reply = judgeClient.Generate(ctx, repairUser, repairSystem)
		parsed, perr = ParseJudgeDecision(reply.Text)
		attempts = MaxParseAttempts
	}

	judge := &JudgeResult{
		Provider: state.Plan.Judge.Provider,
		Model:    state.Plan.Judge.Model,
		RawText:  reply.Text,
		Parsed:   parsed,
		Raw:      reply.Raw,
		Attempts: attempts,
		Err:      reply.Err,
	}
	if perr != nil {
		judge.ParseError = perr.Error()
	}
	state.Judge = judge

	solverProviders := roster.Providers(state.Plan.Solvers)

	if parsed != nil {
		for _, p := range solverProviders {
			if parsed.WinnerProvider == p {
				if text, ok := solutions[p]; ok {
					state.WinnerProvider = p
					state.WinnerText = text
					return nil
				}
			}
		}
	}

	winner := fallbackWinner(state.Reviews, solverProviders)
	state.WinnerProvider = winner
	state.WinnerText = solutions[winner]
	return nil
}

// fallbackWinner picks the solver with the highest mean parsed peer
// "overall" score. Reviewer priors deliberately do not weigh in here:
// the fallback stays dumb and transparent. With no parsed reviews at
// all, the first solver in plan order wins.
func fallbackWinner(reviews []ReviewResult, solverProviders []string) string {
	sums := make(map[string]float64, len(solverProviders))
	counts := make(map[string]int, len(solverProviders))
	known := make(map[string]bool, len(solverProviders))
	for _, p := range solverProviders {
		known[p] = true
	}

	for _, r := range reviews {
		if r.Parsed != nil && known[r.TargetProvider] {
			sums[r.TargetProvider] += float64(r.Parsed.Overall)
			counts[r.TargetProvider]++
		}
	}

	winner := ""
	bestMean := 0.0
	for _, p := range solverProviders {
		if counts[p] == 0 {
			continue
		}
		mean := sums[p] / float64(counts[p])
		if winner == "" || mean > bestMean || (mean == bestMean && p > winner) {
			winner = p
			bestMean = mean
		}
	}
	if winner == "" {
		winner = solverProviders[0]
	}
	return winner
}

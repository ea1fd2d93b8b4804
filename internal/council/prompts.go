package council

import (
	"fmt"
	"strings"

	"github.com/artali/council/internal/roles"
	"github.com/artali/council/internal/roster"
	"github.com/artali/council/internal/util"
)

const strictJSONRules = "Return ONLY a single JSON object.\n" +
	"Do NOT include any extra text.\n" +
	"Do NOT use markdown.\n" +
	"Do NOT wrap in backticks or ```.\n" +
	"The output must start with '{' and end with '}'.\n"

const reviewSchemaText = "{\n" +
	"  \"reviewer_provider\": \"<your provider>\",\n" +
	"  \"target_provider\": \"<target provider>\",\n" +
	"  \"correctness\": 0-10,\n" +
	"  \"completeness\": 0-10,\n" +
	"  \"clarity\": 0-10,\n" +
	"  \"feasibility\": 0-10,\n" +
	"  \"overall\": 0-10,\n" +
	"  \"key_flaws\": [\"...\"],\n" +
	"  \"suggested_fixes\": [\"...\"],\n" +
	"  \"summary\": \"short\"\n" +
	"}\n"

const judgeSchemaText = "{\n" +
	"  \"winner_provider\": \"<one of the solver providers>\",\n" +
	"  \"ranking\": [ {\"provider\":\"...\", \"score\":0-10, \"reason\":\"short\"}, ... ],\n" +
	"  \"rationale\": \"short explanation of why the winner is best\"\n" +
	"}\n"

func planRosterText(plan roles.SuggestedPlan) string {
	lines := []string{"Council roster:"}
	for _, m := range plan.Roster() {
		lines = append(lines, fmt.Sprintf("- provider='%s', model='%s'", m.Provider, m.Model))
	}
	return strings.Join(lines, "\n")
}

func buildSolverPrompts(problemStatement string, plan roles.SuggestedPlan) (systemPrompt, userPrompt string) {
	systemPrompt = "COUNCIL_PHASE: SOLVE\n" +
		"You are a SOLVER in an LLM Council.\n" +
		"Write a reasonably structured practical solution in under 400 words.\n" +
		"Do not mention you are an AI or that this is a council.\n"
	userPrompt = planRosterText(plan) + "\n\n" +
		fmt.Sprintf("Problem statement:\n%s\n\n", problemStatement) +
		"Deliverable:\n" +
		"- A clear solution with steps.\n"
	return systemPrompt, userPrompt
}

func buildReviewPrompts(problemStatement string, plan roles.SuggestedPlan, reviewer, target roster.ModelInfo, targetSolution string) (systemPrompt, userPrompt string) {
	systemPrompt = "COUNCIL_PHASE: REVIEW\n" +
		"You are a SOLVER doing peer review of another solver's draft.\n" +
		strictJSONRules
	userPrompt = planRosterText(plan) + "\n\n" +
		fmt.Sprintf("Problem statement:\n%s\n\n", problemStatement) +
		fmt.Sprintf("You are reviewer provider='%s', model='%s'.\n", reviewer.Provider, reviewer.Model) +
		fmt.Sprintf("You must review target provider='%s', model='%s'.\n\n", target.Provider, target.Model) +
		"Target draft:\n" +
		"-----\n" +
		targetSolution + "\n" +
		"-----\n\n" +
		"Output JSON with this exact schema:\n" +
		reviewSchemaText
	return systemPrompt, userPrompt
}

func buildRefinePrompts(problemStatement string, plan roles.SuggestedPlan, solver roster.ModelInfo, draft string, reviewsAboutSolver []ReviewResult) (systemPrompt, userPrompt string) {
	systemPrompt = "COUNCIL_PHASE: REFINE\n" +
		"You are a SOLVER. Improve your draft using the peer feedback.\n" +
		"Write the revised solution only (no JSON), and do it in under 400 words.\n" +
		"Do not mention the council.\n"

	var feedback []string
	for _, r := range reviewsAboutSolver {
		if r.Parsed != nil {
			feedback = append(feedback, fmt.Sprintf("- From %s: overall=%d, flaws=%v, fixes=%v",
				r.ReviewerProvider, r.Parsed.Overall, r.Parsed.KeyFlaws, r.Parsed.SuggestedFixes))
		} else {
			feedback = append(feedback, fmt.Sprintf("- From %s: (unparsed) %s",
				r.ReviewerProvider, util.Clip(r.RawText, 250)))
		}
	}
	feedbackBlock := "- (no peer feedback)\n"
	if len(feedback) > 0 {
		feedbackBlock = strings.Join(feedback, "\n")
	}

	userPrompt = planRosterText(plan) + "\n\n" +
		fmt.Sprintf("Problem statement:\n%s\n\n", problemStatement) +
		fmt.Sprintf("Your identity: provider='%s', model='%s'.\n\n", solver.Provider, solver.Model) +
		"Your draft:\n" +
		"-----\n" +
		draft + "\n" +
		"-----\n\n" +
		"Peer feedback:\n" +
		feedbackBlock +
		"\n\n" +
		"Now output the improved final solution.\n"
	return systemPrompt, userPrompt
}

func buildJudgePrompts(problemStatement string, plan roles.SuggestedPlan, finalSolutions map[string]string) (systemPrompt, userPrompt string) {
	systemPrompt = "COUNCIL_PHASE: JUDGE\n" +
		"You are the JUDGE in an LLM Council.\n" +
		"Compare final solutions and pick the best.\n" +
		strictJSONRules

	var blocks []string
	for _, solver := range plan.Solvers {
		blocks = append(blocks, fmt.Sprintf("=== provider='%s' model='%s' ===\n%s\n",
			solver.Provider, solver.Model, finalSolutions[solver.Provider]))
	}

	userPrompt = planRosterText(plan) + "\n\n" +
		fmt.Sprintf("Problem statement:\n%s\n\n", problemStatement) +
		"Final solutions:\n\n" +
		strings.Join(blocks, "\n") +
		"\nOutput JSON with this exact schema:\n" +
		judgeSchemaText
	return systemPrompt, userPrompt
}

func buildRepairPrompts(phase, previousOutput, schemaText string) (systemPrompt, userPrompt string) {
	systemPrompt = fmt.Sprintf("COUNCIL_PHASE: %s\n", phase) +
		"Your previous output was invalid.\n" +
		strictJSONRules
	userPrompt = fmt.Sprintf("Previous output (invalid):\n%s\n\n", util.Clip(previousOutput, 900)) +
		"Fix it now. Output ONLY JSON with this exact schema:\n" +
		schemaText
	return systemPrompt, userPrompt
}

package roles

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sourcegraph/conc"

	"github.com/artali/council/internal/errors"
	"github.com/artali/council/internal/llm"
	"github.com/artali/council/internal/roster"
)

var providerTokenRe = regexp.MustCompile(`[a-zA-Z0-9_]+`)

// NormalizeProvider maps a member's judge nomination onto a roster
// provider. Exact matches pass through; otherwise the string is scanned
// for lowercase alphanumeric tokens, which recovers sloppy outputs like
// "provider='openai', model='gpt-5-nano'". Returns "" when no safe
// mapping exists.
func NormalizeProvider(raw string, allowed map[string]bool) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if allowed[s] {
		return s
	}
	for _, t := range providerTokenRe.FindAllString(strings.ToLower(s), -1) {
		if allowed[t] {
			return t
		}
	}
	return ""
}

// AskForRoles asks every member, in parallel, which role it wants and
// who should judge. Clients must align one-to-one with the roster by
// position; a mismatch is a configuration error. Individual member
// failures are absorbed into that member's result record and never fail
// the round.
func AskForRoles(ctx context.Context, problemStatement string, clients []llm.Client, members []roster.ModelInfo) (map[string]RoleOpinionResult, error) {
	if len(clients) != len(members) {
		return nil, fmt.Errorf("%w: clients (%d) vs roster (%d)", errors.ErrRosterMismatch, len(clients), len(members))
	}

	allowed := make(map[string]bool, len(members))
	for _, m := range members {
		allowed[m.Provider] = true
	}

	results := make([]RoleOpinionResult, len(members))

	var wg conc.WaitGroup
	for i := range members {
		i := i
		wg.Go(func() {
			you := members[i]
			systemPrompt, userPrompt := BuildOpinionPrompts(problemStatement, members, you)
			reply := clients[i].Generate(ctx, userPrompt, systemPrompt)

			var parseErr string
			parsed, perr := ParseOpinion(reply.Text)
			if perr != nil {
				parseErr = perr.Error()
			}

			if parsed != nil {
				nominated := parsed.RecommendedJudge.Provider
				norm := NormalizeProvider(nominated, allowed)
				switch {
				case norm == "":
					parsed = nil
					parseErr = strings.TrimSpace(parseErr + fmt.Sprintf(" | Invalid recommended_judge.provider=%q", nominated))
				case norm != nominated:
					fixed := *parsed
					fixed.RecommendedJudge.Provider = norm
					parsed = &fixed
				}
			}
			if parseErr == "" {
				parseErr = reply.Err
			}

			results[i] = RoleOpinionResult{
				Provider:   you.Provider,
				Model:      you.Model,
				RawText:    reply.Text,
				Parsed:     parsed,
				ParseError: parseErr,
			}
		})
	}
	wg.Wait()

	out := make(map[string]RoleOpinionResult, len(members))
	for _, r := range results {
		out[r.Provider] = r
	}
	return out, nil
}

package roles

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/artali/council/internal/errors"
	"github.com/artali/council/internal/llm"
	"github.com/artali/council/internal/testutil"
)

func opinionJSON(role Role, selfConf float64, judge string, judgeConf float64) string {
	return fmt.Sprintf(`{"self": {"preferred_role": %q, "confidence": %v, "reason": "r"},
		"recommended_judge": {"provider": %q, "confidence": %v, "reason": "r"}}`,
		role, selfConf, judge, judgeConf)
}

func TestAskForRolesRosterMismatch(t *testing.T) {
	members := testRoster(t)
	clients := []llm.Client{testutil.NewFakeClient("openai", "gpt-5-nano")}

	_, err := AskForRoles(context.Background(), "p", clients, members)
	if !errors.Is(err, errors.ErrRosterMismatch) {
		t.Fatalf("err = %v, want ErrRosterMismatch", err)
	}
}

func TestAskForRolesCollectsAllOpinions(t *testing.T) {
	members := testRoster(t)
	openai := testutil.NewFakeClient("openai", "gpt-5-nano").
		EnqueueText(opinionJSON(RoleJudge, 0.9, "openai", 0.8))
	anthropic := testutil.NewFakeClient("anthropic", "claude-haiku").
		EnqueueText(opinionJSON(RoleSolver, 0.7, "openai", 0.9))
	gemini := testutil.NewFakeClient("gemini", "gemini-flash").
		EnqueueText(opinionJSON(RoleSolver, 0.6, "anthropic", 0.5))

	opinions, err := AskForRoles(context.Background(),
		"p", []llm.Client{openai, anthropic, gemini}, members)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(opinions) != 3 {
		t.Fatalf("got %d opinions, want 3", len(opinions))
	}
	for _, m := range members {
		r, ok := opinions[m.Provider]
		if !ok {
			t.Fatalf("missing opinion for %s", m.Provider)
		}
		if r.Parsed == nil {
			t.Errorf("%s: parsed is nil (parse_error=%s)", m.Provider, r.ParseError)
		}
		if r.Model != m.Model {
			t.Errorf("%s: model = %q, want %q", m.Provider, r.Model, m.Model)
		}
	}
	if got := opinions["anthropic"].Parsed.RecommendedJudge.Provider; got != "openai" {
		t.Errorf("anthropic nominated %q, want openai", got)
	}
}

func TestAskForRolesNormalizesSloppyProvider(t *testing.T) {
	members := testRoster(t)
	sloppy := `{"self": {"preferred_role": "solver", "confidence": 0.5, "reason": "r"},
		"recommended_judge": {"provider": "provider='openai', model='gpt-5-nano'", "confidence": 0.8, "reason": "r"}}`

	clients := []llm.Client{
		testutil.NewFakeClient("openai", "gpt-5-nano").EnqueueText(sloppy),
		testutil.NewFakeClient("anthropic", "claude-haiku").
			EnqueueText(opinionJSON(RoleSolver, 0.5, "openai", 0.5)),
		testutil.NewFakeClient("gemini", "gemini-flash").
			EnqueueText(opinionJSON(RoleSolver, 0.5, "openai", 0.5)),
	}

	opinions, err := AskForRoles(context.Background(), "p", clients, members)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := opinions["openai"]
	if r.Parsed == nil {
		t.Fatalf("parsed is nil: %s", r.ParseError)
	}
	if r.Parsed.RecommendedJudge.Provider != "openai" {
		t.Errorf("normalized provider = %q, want openai", r.Parsed.RecommendedJudge.Provider)
	}
}

func TestAskForRolesRejectsUnmappableProvider(t *testing.T) {
	members := testRoster(t)
	bogus := `{"self": {"preferred_role": "solver", "confidence": 0.5, "reason": "r"},
		"recommended_judge": {"provider": "deepmind", "confidence": 0.8, "reason": "r"}}`

	clients := []llm.Client{
		testutil.NewFakeClient("openai", "gpt-5-nano").EnqueueText(bogus),
		testutil.NewFakeClient("anthropic", "claude-haiku").
			EnqueueText(opinionJSON(RoleSolver, 0.5, "openai", 0.5)),
		testutil.NewFakeClient("gemini", "gemini-flash").
			EnqueueText(opinionJSON(RoleSolver, 0.5, "openai", 0.5)),
	}

	opinions, err := AskForRoles(context.Background(), "p", clients, members)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := opinions["openai"]
	if r.Parsed != nil {
		t.Error("parsed should be nil for unmappable provider")
	}
	if !strings.Contains(r.ParseError, "deepmind") {
		t.Errorf("parse_error should name the bad provider, got %q", r.ParseError)
	}
}

func TestAskForRolesAbsorbsClientFailure(t *testing.T) {
	members := testRoster(t)
	clients := []llm.Client{
		testutil.NewFakeClient("openai", "gpt-5-nano").
			Enqueue(llm.Reply{Provider: "openai", Model: "gpt-5-nano", Err: "connection refused"}),
		testutil.NewFakeClient("anthropic", "claude-haiku").
			EnqueueText(opinionJSON(RoleSolver, 0.5, "openai", 0.5)),
		testutil.NewFakeClient("gemini", "gemini-flash").
			EnqueueText(opinionJSON(RoleSolver, 0.5, "openai", 0.5)),
	}

	opinions, err := AskForRoles(context.Background(), "p", clients, members)
	if err != nil {
		t.Fatalf("member failure must not fail the round: %v", err)
	}
	r := opinions["openai"]
	if r.Parsed != nil {
		t.Error("parsed should be nil for a failed call")
	}
	if r.ParseError == "" {
		t.Error("parse_error should be recorded for a failed call")
	}
}

func TestNormalizeProvider(t *testing.T) {
	allowed := map[string]bool{"openai": true, "anthropic": true, "gemini": true}

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"exact", "openai", "openai"},
		{"surrounding whitespace", "  anthropic  ", "anthropic"},
		{"uppercase token", "OpenAI", "openai"},
		{"sloppy identity string", "provider='gemini', model='gemini-flash'", "gemini"},
		{"unknown", "deepmind", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeProvider(tt.raw, allowed); got != tt.want {
				t.Errorf("NormalizeProvider(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

// Package roster defines the identity of council members and utilities
// for building the fixed ordered member list used by a run.
package roster

import (
	"fmt"
	"strings"

	"github.com/artali/council/internal/errors"
)

// ModelInfo is the immutable identity of one council member.
// Index is for stable roster display (1..N). Provider is the short
// identifier used throughout ("openai", "anthropic", "gemini", "xai", ...).
// Model is the provider-specific model string.
type ModelInfo struct {
	Index    int    `json:"idx"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Build creates a roster from (provider, model) pairs, assigning stable
// 1..N indices in input order. Duplicate providers are a configuration
// error: provider names key every downstream map.
func Build(members []Member) ([]ModelInfo, error) {
	if len(members) == 0 {
		return nil, errors.ErrEmptyRoster
	}

	seen := make(map[string]bool, len(members))
	roster := make([]ModelInfo, 0, len(members))
	for i, m := range members {
		provider := strings.TrimSpace(m.Provider)
		if provider == "" {
			return nil, errors.NewValidationError(
				fmt.Sprintf("members[%d].provider", i), "must not be empty")
		}
		if m.Model == "" {
			return nil, errors.NewValidationError(
				fmt.Sprintf("members[%d].model", i), "must not be empty")
		}
		if seen[provider] {
			return nil, errors.NewValidationError(
				fmt.Sprintf("members[%d].provider", i),
				fmt.Sprintf("duplicate provider %q", provider))
		}
		seen[provider] = true

		roster = append(roster, ModelInfo{
			Index:    i + 1,
			Provider: provider,
			Model:    m.Model,
		})
	}
	return roster, nil
}

// Member is one entry of a roster definition, before index assignment.
type Member struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// Providers returns the provider names of a roster, in roster order.
func Providers(roster []ModelInfo) []string {
	out := make([]string, len(roster))
	for i, m := range roster {
		out[i] = m.Provider
	}
	return out
}

// ByProvider indexes a roster by provider name.
func ByProvider(roster []ModelInfo) map[string]ModelInfo {
	out := make(map[string]ModelInfo, len(roster))
	for _, m := range roster {
		out[m.Provider] = m
	}
	return out
}

// Text renders the roster for embedding in prompts, so every agent sees
// every competitor.
func Text(roster []ModelInfo) string {
	lines := []string{"Council roster (choose among these exact providers):"}
	for _, m := range roster {
		lines = append(lines, fmt.Sprintf("%d) provider='%s', model='%s'", m.Index, m.Provider, m.Model))
	}
	return strings.Join(lines, "\n")
}

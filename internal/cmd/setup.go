package cmd

import (
	"fmt"
	"strings"

	"github.com/artali/council/internal/config"
	"github.com/artali/council/internal/errors"
	"github.com/artali/council/internal/llm"
	"github.com/artali/council/internal/roster"
)

// councilSetup is everything a command needs to talk to the panel:
// the live clients, the indexed roster, and the effective judge priors.
type councilSetup struct {
	clients []llm.Client
	members []roster.ModelInfo
	priors  map[string]float64
}

// buildSetup wires clients from configured API keys and resolves the
// roster. When rosterPath is set the file defines membership and order;
// every member still needs a configured client for its provider.
func buildSetup(cfg *config.Config, rosterPath string) (*councilSetup, error) {
	clients, err := config.BuildClients(cfg)
	if err != nil {
		return nil, err
	}

	priors := cfg.Council.JudgePriors

	members, err := config.BuildRoster(clients)
	if err != nil {
		return nil, err
	}

	if rosterPath != "" {
		fileMembers, filePriors, err := roster.LoadFile(rosterPath)
		if err != nil {
			return nil, err
		}

		byProvider := make(map[string]llm.Client, len(clients))
		for _, c := range clients {
			byProvider[c.Provider()] = c
		}

		picked := make([]llm.Client, 0, len(fileMembers))
		for _, m := range fileMembers {
			c, ok := byProvider[m.Provider]
			if !ok {
				return nil, fmt.Errorf("%w: roster member %q has no configured API key", errors.ErrUnknownProvider, m.Provider)
			}
			picked = append(picked, c)
		}

		clients = picked
		members = fileMembers
		if len(filePriors) > 0 {
			priors = filePriors
		}
	}

	return &councilSetup{clients: clients, members: members, priors: priors}, nil
}

// memberLine renders one roster member for plan and replay output.
func memberLine(m roster.ModelInfo) string {
	return fmt.Sprintf("%s | %s", m.Provider, m.Model)
}

func solverProviders(members []roster.ModelInfo) string {
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Provider)
	}
	return strings.Join(names, ", ")
}

package main

import (
	"errors"
	rand "math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/lox/liarsdice/internal/bot"
	"github.com/lox/liarsdice/internal/game"
	"github.com/lox/liarsdice/sdk/solver"
	"github.com/lox/liarsdice/sdk/solver/runtime"
)

// policyAgent is the registry name of the trained CFR agent.
const policyAgent = "policy"

// newRegistry returns the built-in agents plus, when requested, the policy
// agent backed by the store at storePath. A missing store leaves the policy
// agent playing uniformly.
func newRegistry(names []string, storePath string, logger *log.Logger) (*bot.Registry, error) {
	if !slices.Contains(names, policyAgent) {
		return bot.NewRegistry(nil), nil
	}

	store, err := solver.LoadStore(storePath)
	switch {
	case err == nil:
		logger.Info("Loaded policy store", "path", storePath, "configs", store.Len())
	case errors.Is(err, solver.ErrUntrainedPolicy):
		logger.Warn("No policy store found, policy agent will play uniformly", "path", storePath)
		store = solver.NewPolicyStore()
	default:
		return nil, err
	}

	return bot.NewRegistry(map[string]bot.Factory{
		policyAgent: func(rng *rand.Rand) game.Agent {
			return runtime.NewAgent(store, rng)
		},
	}), nil
}

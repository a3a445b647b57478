package runtime

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/liarsdice/internal/game"
	"github.com/lox/liarsdice/sdk/solver"
)

// Agent plays by sampling from a trained policy store.
type Agent struct {
	store  *solver.PolicyStore
	rng    *rand.Rand
	strict bool
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// Strict makes ActionWeights return solver.ErrUntrainedPolicy for
// configurations the store does not cover instead of falling back to uniform.
// ChooseAction still falls back so a match can proceed.
func Strict() AgentOption {
	return func(a *Agent) { a.strict = true }
}

// NewAgent wraps store. rng drives action sampling.
func NewAgent(store *solver.PolicyStore, rng *rand.Rand, opts ...AgentOption) *Agent {
	a := &Agent{store: store, rng: rng}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load constructs an agent from a stored policy file. A missing file yields
// solver.ErrUntrainedPolicy.
func Load(path string, rng *rand.Rand, opts ...AgentOption) (*Agent, error) {
	store, err := solver.LoadStore(path)
	if err != nil {
		return nil, err
	}
	return NewAgent(store, rng, opts...), nil
}

// Store returns the underlying policy store (read-only).
func (a *Agent) Store() *solver.PolicyStore {
	if a == nil {
		return nil
	}
	return a.store
}

// ActionWeights returns the distribution the agent samples from for view.
// When the configuration or info set is missing, a uniform distribution over
// the currently legal actions is returned.
func (a *Agent) ActionWeights(view game.View) (solver.Distribution, error) {
	if a == nil || a.store == nil {
		return nil, errors.New("nil policy")
	}
	legal := view.LegalActions()
	policy, ok := a.store.Lookup(view.Public.DiceCounts, view.Config.Faces)
	if !ok {
		if a.strict {
			return nil, fmt.Errorf("%w: dice %v faces %v", solver.ErrUntrainedPolicy, view.Public.DiceCounts, view.Config.Faces)
		}
		return solver.Uniform(legal), nil
	}

	key, ok := solver.TryInfoSetKey(view.MyDice, view.LastBid())
	if !ok {
		if a.strict {
			return nil, fmt.Errorf("%w: hand of %d dice has no info set", solver.ErrUntrainedPolicy, len(view.MyDice))
		}
		return solver.Uniform(legal), nil
	}
	dist, ok := policy[key]
	if !ok {
		return solver.Uniform(legal), nil
	}
	// Only legal actions survive; the turn cap can remove bids the policy knows.
	out := make(solver.Distribution, len(dist))
	total := 0.0
	for _, act := range legal {
		if p, ok := dist[act]; ok && p > 0 {
			out[act] = p
			total += p
		}
	}
	if total <= 0 {
		return solver.Uniform(legal), nil
	}
	for act := range out {
		out[act] /= total
	}
	return out, nil
}

// ChooseAction implements game.Agent.
func (a *Agent) ChooseAction(view game.View) game.Action {
	dist, err := a.ActionWeights(view)
	if err != nil || len(dist) == 0 {
		dist = solver.Uniform(view.LegalActions())
	}
	if len(dist) == 0 {
		return game.CallLiar()
	}
	return dist.Sample(a.rng)
}

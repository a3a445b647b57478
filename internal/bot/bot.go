// Package bot provides heuristic Liar's Dice agents and a registry that builds
// them by name.
package bot

import (
	"fmt"
	rand "math/rand/v2"
	"slices"

	"github.com/lox/liarsdice/internal/game"
)

// Factory builds a fresh agent. rng is owned by the agent.
type Factory func(rng *rand.Rand) game.Agent

var builtins = map[string]Factory{
	"uniform":              func(rng *rand.Rand) game.Agent { return NewRandBot(rng) },
	"random":               func(rng *rand.Rand) game.Agent { return NewBluffBot(rng, DefaultBluffParams()) },
	"random_cautious":      func(rng *rand.Rand) game.Agent { return NewBluffBot(rng, CautiousBluffParams()) },
	"random_aggressive":    func(rng *rand.Rand) game.Agent { return NewBluffBot(rng, AggressiveBluffParams()) },
	"random_facefixed":     func(rng *rand.Rand) game.Agent { return NewBluffBot(rng, FaceFixedBluffParams()) },
	"random_facerandom":    func(rng *rand.Rand) game.Agent { return NewBluffBot(rng, DefaultBluffParams()) },
	"conservative":         func(rng *rand.Rand) game.Agent { return NewConservativeBot() },
	"aggressive":           func(rng *rand.Rand) game.Agent { return NewAggressiveBot(rng) },
	"probability_minraise": func(rng *rand.Rand) game.Agent { return NewProbabilityBot(rng, false) },
	"probability_maxraise": func(rng *rand.Rand) game.Agent { return NewProbabilityBot(rng, true) },
	"minraise":             func(rng *rand.Rand) game.Agent { return NewRaiseBot(rng, false) },
	"maxraise":             func(rng *rand.Rand) game.Agent { return NewRaiseBot(rng, true) },
	"mirror":               func(rng *rand.Rand) game.Agent { return NewMirrorBot(rng) },
	"maxcount":             func(rng *rand.Rand) game.Agent { return NewMaxCountBot() },
}

// Registry maps agent names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns the built-in agents plus extra. Entries in extra
// replace built-ins with the same name.
func NewRegistry(extra map[string]Factory) *Registry {
	r := &Registry{factories: make(map[string]Factory, len(builtins)+len(extra))}
	for name, f := range builtins {
		r.factories[name] = f
	}
	for name, f := range extra {
		r.factories[name] = f
	}
	return r
}

// New builds the agent registered under name.
func (r *Registry) New(name string, rng *rand.Rand) (game.Agent, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown agent %q (available: %v)", name, r.Names())
	}
	return f(rng), nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

var defaultRegistry = NewRegistry(nil)

// New builds a built-in agent by name.
func New(name string, rng *rand.Rand) (game.Agent, error) {
	return defaultRegistry.New(name, rng)
}

// Names lists the built-in agents.
func Names() []string {
	return defaultRegistry.Names()
}

// forcedCall reports whether a challenge is the only legal move, which is the
// case once the turn cap is reached.
func forcedCall(view game.View) bool {
	legal := view.LegalActions()
	return len(legal) == 1 && legal[0].IsCall()
}

// higherBids lists every valid bid above last with quantity in [minQ, maxQ],
// in ascending order.
func higherBids(view game.View, last game.Bid, minQ, maxQ int) []game.Bid {
	maxQ = min(maxQ, view.TotalDice())
	var out []game.Bid
	for q := max(minQ, 1); q <= maxQ; q++ {
		for _, f := range view.Config.Faces {
			b := game.Bid{Quantity: q, Face: f}
			if b.IsHigherThan(&last) {
				out = append(out, b)
			}
		}
	}
	return out
}

// bidOrCall returns a bid action if b beats the last bid and is within the
// pool, otherwise a challenge.
func bidOrCall(view game.View, b game.Bid) game.Action {
	if b.Quantity < 1 || b.Quantity > view.TotalDice() || !view.Config.HasFace(b.Face) {
		return game.CallLiar()
	}
	if !b.IsHigherThan(view.LastBid()) {
		return game.CallLiar()
	}
	return game.BidAction(b.Quantity, b.Face)
}

// randomOwnFace picks one of the player's dice, falling back to the lowest
// face when the hand is empty.
func randomOwnFace(view game.View, rng *rand.Rand) int {
	if len(view.MyDice) == 0 {
		return view.Config.Faces[0]
	}
	return view.MyDice[rng.IntN(len(view.MyDice))]
}

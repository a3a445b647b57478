package solver

import (
	"math"
	rand "math/rand/v2"
	"slices"

	"github.com/lox/liarsdice/internal/game"
)

// Distribution is a normalised probability per legal action.
type Distribution map[game.Action]float64

// Actions returns the actions in a stable order (bids ascending, challenge
// last).
func (d Distribution) Actions() []game.Action {
	out := make([]game.Action, 0, len(d))
	for a := range d {
		out = append(out, a)
	}
	slices.SortFunc(out, game.CompareActions)
	return out
}

// Sample draws an action. Iteration order is fixed so that a seeded rng
// yields reproducible choices.
func (d Distribution) Sample(rng *rand.Rand) game.Action {
	actions := d.Actions()
	if len(actions) == 0 {
		return game.CallLiar()
	}
	total := 0.0
	for _, a := range actions {
		total += d[a]
	}
	r := rng.Float64() * total
	for _, a := range actions {
		r -= d[a]
		if r < 0 {
			return a
		}
	}
	return actions[len(actions)-1]
}

// Uniform spreads probability evenly over actions.
func Uniform(actions []game.Action) Distribution {
	d := make(Distribution, len(actions))
	if len(actions) == 0 {
		return d
	}
	p := 1.0 / float64(len(actions))
	for _, a := range actions {
		d[a] = p
	}
	return d
}

// Policy maps information sets to their averaged strategy.
type Policy map[InfoSetKey]Distribution

// ExtractPolicy averages every node's strategy sum. Nodes without mass get a
// uniform distribution.
func ExtractPolicy(table *RegretTable) Policy {
	policy := make(Policy, table.Size())
	for key, node := range table.nodes {
		avg := node.AverageStrategy()
		d := make(Distribution, len(node.Actions))
		for i, a := range node.Actions {
			d[a] = avg[i]
		}
		policy[key] = d
	}
	return policy
}

// Keys returns the policy's info sets in a stable order.
func (p Policy) Keys() []InfoSetKey {
	keys := make([]InfoSetKey, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

// MaxDelta is the largest absolute probability change between prev and cur
// over every info set in cur. Info sets absent from prev are compared with
// the uniform distribution a lookup would have fallen back to.
func MaxDelta(prev, cur Policy) float64 {
	worst := 0.0
	for key, dist := range cur {
		old, ok := prev[key]
		var fallback float64
		if !ok {
			fallback = 1.0 / float64(len(dist))
		}
		for a, p := range dist {
			q := fallback
			if ok {
				q = old[a]
			}
			if d := math.Abs(p - q); d > worst {
				worst = d
			}
		}
	}
	return worst
}

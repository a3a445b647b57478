package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/liarsdice/internal/game"
	"github.com/lox/liarsdice/internal/randutil"
)

func TestDistributionSample(t *testing.T) {
	d := Distribution{
		game.BidAction(1, 2): 0.7,
		game.CallLiar():      0.3,
	}
	assert.Equal(t, []game.Action{game.BidAction(1, 2), game.CallLiar()}, d.Actions())

	rng := randutil.New(1)
	calls := 0
	for i := 0; i < 5000; i++ {
		if d.Sample(rng).IsCall() {
			calls++
		}
	}
	assert.InDelta(t, 1500, calls, 150)

	assert.Equal(t, game.CallLiar(), Distribution{}.Sample(rng))
}

func TestMaxDelta(t *testing.T) {
	k1 := NewInfoSetKey([]int{1}, nil)
	k2 := NewInfoSetKey([]int{2}, nil)
	prev := Policy{
		k1: {game.BidAction(1, 1): 0.5, game.BidAction(1, 2): 0.5},
	}
	cur := Policy{
		k1: {game.BidAction(1, 1): 0.6, game.BidAction(1, 2): 0.4},
		k2: {game.BidAction(1, 1): 0.2, game.BidAction(1, 2): 0.8},
	}
	// k2 is new and compared against uniform: |0.8-0.5|.
	assert.InDelta(t, 0.3, MaxDelta(prev, cur), 1e-12)
	assert.Zero(t, MaxDelta(cur, cur))
}

func TestExtractPolicyUsesAverageStrategy(t *testing.T) {
	table := NewRegretTable()
	key := NewInfoSetKey([]int{2}, nil)
	node := table.Get(key, []game.Action{game.BidAction(1, 1), game.BidAction(1, 2)})
	node.StrategySum = []float64{1, 3}

	policy := ExtractPolicy(table)
	assert.InDelta(t, 0.25, policy[key][game.BidAction(1, 1)], 1e-12)
	assert.InDelta(t, 0.75, policy[key][game.BidAction(1, 2)], 1e-12)
	assert.Equal(t, []InfoSetKey{key}, policy.Keys())
}

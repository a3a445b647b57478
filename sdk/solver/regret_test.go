package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/liarsdice/internal/game"
)

func TestNodeStrategyRegretMatching(t *testing.T) {
	node := newNode([]game.Action{game.BidAction(1, 1), game.BidAction(1, 2), game.CallLiar()})

	assert.Equal(t, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, node.Strategy(), "uniform without regrets")

	node.RegretSum = []float64{3, -2, 1}
	assert.InDeltaSlice(t, []float64{0.75, 0, 0.25}, node.Strategy(), 1e-12)

	node.RegretSum = []float64{-1, -2, 0}
	assert.InDeltaSlice(t, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, node.Strategy(), 1e-12)
}

func TestNodeUpdateAndAverage(t *testing.T) {
	node := newNode([]game.Action{game.BidAction(2, 3), game.CallLiar()})
	assert.Equal(t, []float64{0.5, 0.5}, node.AverageStrategy())

	node.Update([]float64{1, -1}, []float64{0.5, 0.5}, 2)
	node.Update([]float64{0.5, 0}, []float64{1, 0}, 1)

	assert.Equal(t, []float64{1.5, -1}, node.RegretSum)
	assert.Equal(t, []float64{2, 1}, node.StrategySum)
	assert.InDeltaSlice(t, []float64{2.0 / 3, 1.0 / 3}, node.AverageStrategy(), 1e-12)
}

func TestRegretTableGetCreatesOnce(t *testing.T) {
	table := NewRegretTable()
	key := NewInfoSetKey([]int{3, 1}, nil)
	actions := game.LegalActions(nil, []int{1, 2, 3}, 4)

	a := table.Get(key, actions)
	b := table.Get(key, nil)
	require.Same(t, a, b)
	assert.Equal(t, 1, table.Size())

	_, ok := table.Lookup(NewInfoSetKey([]int{1, 3}, nil))
	assert.True(t, ok, "dice order does not matter")

	last := game.Bid{Quantity: 1, Face: 2}
	table.Get(NewInfoSetKey([]int{1, 1}, &last), game.LegalActions(&last, []int{1, 2, 3}, 4))
	keys := table.Keys()
	require.Len(t, keys, 2)
	assert.Equal(t, []int{1, 1}, keys[0].Hand.Dice())
}

func TestAverageAbsRegret(t *testing.T) {
	table := NewRegretTable()
	assert.Zero(t, table.AverageAbsRegret())

	n := table.Get(NewInfoSetKey([]int{1}, nil), []game.Action{game.BidAction(1, 1), game.BidAction(1, 2)})
	n.RegretSum = []float64{2, -4}
	assert.InDelta(t, 3.0, table.AverageAbsRegret(), 1e-12)
}

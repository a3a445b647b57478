package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountMatchesOrderInvariant(t *testing.T) {
	t.Parallel()

	a := []int{1, 4, 4, 2}
	b := []int{6, 4, 1}
	for face := 1; face <= 6; face++ {
		for _, wild := range []bool{false, true} {
			assert.Equal(t,
				CountMatches([][]int{a, b}, face, wild),
				CountMatches([][]int{b, a}, face, wild),
				"face %d wild %v", face, wild)
		}
	}
}

func TestCountMatchesWildOnes(t *testing.T) {
	t.Parallel()

	dice := [][]int{{1, 4, 4, 2}, {6, 4, 1, 1}}
	ones := 3

	for face := 2; face <= 6; face++ {
		naive := CountMatches(dice, face, false)
		assert.Equal(t, naive+ones, CountMatches(dice, face, true), "face %d", face)
	}
	assert.Equal(t, ones, CountMatches(dice, 1, false))
	assert.Equal(t, ones, CountMatches(dice, 1, true), "wild flag has no effect on ones")
}

func TestResolve(t *testing.T) {
	t.Parallel()

	dice := [][]int{{2, 3}, {2, 1}}

	n, ok := Resolve(dice, Bid{2, 2}, false)
	assert.Equal(t, 2, n)
	assert.True(t, ok)

	n, ok = Resolve(dice, Bid{3, 2}, false)
	assert.Equal(t, 2, n)
	assert.False(t, ok)

	n, ok = Resolve(dice, Bid{3, 2}, true)
	assert.Equal(t, 3, n)
	assert.True(t, ok)
}

func TestLegalActionsOpening(t *testing.T) {
	t.Parallel()

	actions := LegalActions(nil, []int{1, 2, 3}, 4)
	assert.Equal(t, []Action{BidAction(1, 1), BidAction(1, 2), BidAction(1, 3)}, actions)
}

func TestLegalActionsAfterBid(t *testing.T) {
	t.Parallel()

	last := Bid{Quantity: 2, Face: 2}
	actions := LegalActions(&last, []int{1, 2, 3}, 3)
	assert.Equal(t, []Action{
		BidAction(2, 3),
		BidAction(3, 1),
		BidAction(3, 2),
		BidAction(3, 3),
		CallLiar(),
	}, actions)

	top := Bid{Quantity: 3, Face: 3}
	require.Equal(t, []Action{CallLiar()}, LegalActions(&top, []int{1, 2, 3}, 3))
}

package runtime

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/liarsdice/internal/game"
	"github.com/lox/liarsdice/internal/randutil"
	"github.com/lox/liarsdice/sdk/solver"
)

func testView(dice []int, counts []int, last *game.Bid) game.View {
	cfg := game.DefaultConfig().WithDiceCounts(counts)
	turn := 0
	if last != nil {
		turn = 1
	}
	return game.View{
		PlayerID: 1,
		Public: game.PublicState{
			TurnIndex:  turn,
			LastBid:    last,
			DiceCounts: counts,
			Status:     game.StatusBidding,
		},
		MyDice: dice,
		Config: cfg,
	}
}

func TestLoadMissingStore(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.msgp"), randutil.New(1))
	require.ErrorIs(t, err, solver.ErrUntrainedPolicy)
}

func TestAgentFollowsStoredPolicy(t *testing.T) {
	last := game.Bid{Quantity: 1, Face: 6}
	key := solver.NewInfoSetKey([]int{6}, &last)

	store := solver.NewPolicyStore()
	store.Put(solver.NewConfigKey([]int{1, 1}, []int{1, 2, 3, 4, 5, 6}), solver.Policy{
		key: {game.BidAction(2, 6): 1, game.CallLiar(): 0},
	})
	store.Put(solver.NewConfigKey([]int{2, 2}, []int{1, 2, 3, 4, 5, 6}), solver.Policy{})

	agent := NewAgent(store, randutil.New(3))
	view := testView([]int{6}, []int{1, 1}, &last)
	for i := 0; i < 20; i++ {
		assert.Equal(t, game.BidAction(2, 6), agent.ChooseAction(view))
	}
}

func TestAgentUniformFallback(t *testing.T) {
	store := solver.NewPolicyStore()
	store.Put(solver.NewConfigKey([]int{1, 1}, []int{1, 2, 3, 4, 5, 6}), solver.Policy{})
	store.Put(solver.NewConfigKey([]int{2, 2}, []int{1, 2, 3, 4, 5, 6}), solver.Policy{})

	agent := NewAgent(store, randutil.New(5))
	last := game.Bid{Quantity: 2, Face: 3}
	view := testView([]int{4, 4, 1}, []int{3, 1}, &last)

	weights, err := agent.ActionWeights(view)
	require.NoError(t, err)
	legal := view.LegalActions()
	require.Len(t, weights, len(legal))
	for _, a := range legal {
		assert.InDelta(t, 1.0/float64(len(legal)), weights[a], 1e-9)
	}

	chosen := agent.ChooseAction(view)
	assert.Contains(t, legal, chosen)
}

func TestStrictAgentReportsUntrained(t *testing.T) {
	store := solver.NewPolicyStore()
	store.Put(solver.NewConfigKey([]int{1, 1}, []int{1, 2, 3, 4, 5, 6}), solver.Policy{})
	store.Put(solver.NewConfigKey([]int{2, 2}, []int{1, 2, 3, 4, 5, 6}), solver.Policy{})

	agent := NewAgent(store, randutil.New(5), Strict())
	view := testView([]int{4}, []int{1, 3}, nil)

	_, err := agent.ActionWeights(view)
	require.ErrorIs(t, err, solver.ErrUntrainedPolicy)
	assert.True(t, agent.ChooseAction(view).IsBid(), "opening move must still be a bid")
}

func TestSinglePolicyServesEveryConfig(t *testing.T) {
	key := solver.NewInfoSetKey([]int{2, 2}, nil)
	store := solver.NewPolicyStore()
	store.Put(solver.NewConfigKey([]int{1, 1}, []int{1, 2, 3, 4, 5, 6}), solver.Policy{
		key: {game.BidAction(1, 2): 1},
	})

	agent := NewAgent(store, randutil.New(9), Strict())
	weights, err := agent.ActionWeights(testView([]int{2, 2}, []int{2, 2}, nil))
	require.NoError(t, err)
	assert.Equal(t, solver.Distribution{game.BidAction(1, 2): 1}, weights)
}

func TestAgentDropsActionsRemovedByTurnCap(t *testing.T) {
	last := game.Bid{Quantity: 1, Face: 1}
	key := solver.NewInfoSetKey([]int{3}, &last)
	store := solver.NewPolicyStore()
	store.Put(solver.NewConfigKey([]int{1, 1}, []int{1, 2, 3, 4, 5, 6}), solver.Policy{
		key: {game.BidAction(1, 2): 0.9, game.CallLiar(): 0.1},
	})

	view := testView([]int{3}, []int{1, 1}, &last)
	view.Config.MaxTurns = 1

	weights, err := NewAgent(store, randutil.New(1)).ActionWeights(view)
	require.NoError(t, err)
	assert.Equal(t, solver.Distribution{game.CallLiar(): 1}, weights)
}

func TestAgentHandlesHandsTooLargeForInfoSets(t *testing.T) {
	store := solver.NewPolicyStore()
	store.Put(solver.NewConfigKey([]int{1, 1}, []int{1, 2, 3, 4, 5, 6}), solver.Policy{
		solver.NewInfoSetKey([]int{2}, nil): {game.BidAction(1, 2): 1},
	})

	cfg := game.TestConfig()
	cfg.DicePerPlayer = solver.MaxDicePerPlayer + 1
	eng := game.NewTestEngine(cfg)
	eng.StartRound()
	view := eng.View(0)
	require.Len(t, view.MyDice, solver.MaxDicePerPlayer+1)

	agent := NewAgent(store, randutil.New(4))
	weights, err := agent.ActionWeights(view)
	require.NoError(t, err)
	assert.Equal(t, solver.Uniform(view.LegalActions()), weights)

	var action game.Action
	require.NotPanics(t, func() { action = agent.ChooseAction(view) })
	require.NoError(t, eng.ApplyAction(0, action))

	_, err = NewAgent(store, randutil.New(4), Strict()).ActionWeights(view)
	require.ErrorIs(t, err, solver.ErrUntrainedPolicy)
}

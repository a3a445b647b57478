package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewHelpers(t *testing.T) {
	t.Parallel()

	last := Bid{Quantity: 5, Face: 6}
	view := View{
		PlayerID: 0,
		Public: PublicState{
			TurnIndex:  1,
			LastBid:    &last,
			DiceCounts: []int{2, 3},
		},
		MyDice: []int{1, 1},
		Config: DefaultConfig().WithDiceCounts([]int{2, 3}),
	}

	assert.Equal(t, 5, view.TotalDice())
	assert.Equal(t, 3, view.Unseen())
	assert.Equal(t, 2, view.MyCount(1))
	assert.Equal(t, 0, view.MyCount(6))
	assert.True(t, view.CallLiarDeterministic(), "three unseen dice cannot make five sixes")

	possible := Bid{Quantity: 3, Face: 1}
	view.Public.LastBid = &possible
	assert.False(t, view.CallLiarDeterministic())
}

func TestViewLegalActionsAtOpening(t *testing.T) {
	t.Parallel()

	view := View{
		Public: PublicState{DiceCounts: []int{1, 1}},
		Config: DefaultConfig(),
	}
	actions := view.LegalActions()
	assert.Len(t, actions, 6)
	for _, a := range actions {
		assert.True(t, a.IsBid())
		assert.Equal(t, 1, a.Bid.Quantity)
	}
}

func TestAgentFunc(t *testing.T) {
	t.Parallel()

	var agent Agent = AgentFunc(func(View) Action { return CallLiar() })
	assert.True(t, agent.ChooseAction(View{}).IsCall())
}

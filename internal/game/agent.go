package game

import "slices"

// Agent represents any policy that can act for a player.
// Agents receive an immutable view and return an action; the engine decides
// whether it is legal.
type Agent interface {
	ChooseAction(view View) Action
}

// AgentFunc adapts a function to the Agent interface.
type AgentFunc func(view View) Action

func (f AgentFunc) ChooseAction(view View) Action { return f(view) }

// View is what a single player may observe: public state, their own dice and
// the rules. It never contains the opponent's dice.
type View struct {
	PlayerID int
	Public   PublicState
	MyDice   []int
	Config   Config
}

// LastBid returns the bid to beat, or nil at the start of a round.
func (v View) LastBid() *Bid { return v.Public.LastBid }

// TotalDice is the number of dice in play this round.
func (v View) TotalDice() int {
	total := 0
	for _, n := range v.Public.DiceCounts {
		total += n
	}
	return total
}

// MyCount counts own dice showing face, without wilds.
func (v View) MyCount(face int) int {
	n := 0
	for _, d := range v.MyDice {
		if d == face {
			n++
		}
	}
	return n
}

// Unseen is the number of dice the player cannot see.
func (v View) Unseen() int {
	return v.TotalDice() - len(v.MyDice)
}

// SortedDice returns own dice in ascending order.
func (v View) SortedDice() []int {
	out := slices.Clone(v.MyDice)
	slices.Sort(out)
	return out
}

// LegalActions enumerates moves using the same rule as the solver. Once the
// turn cap is reached only a challenge remains.
func (v View) LegalActions() []Action {
	if v.Config.MaxTurns > 0 && v.Public.TurnIndex >= v.Config.MaxTurns && v.Public.LastBid != nil {
		return []Action{CallLiar()}
	}
	return LegalActions(v.Public.LastBid, v.Config.Faces, v.TotalDice())
}

// CallLiarDeterministic reports whether the last bid is impossible even if
// every unseen die matched.
func (v View) CallLiarDeterministic() bool {
	last := v.LastBid()
	if last == nil {
		return false
	}
	return v.MyCount(last.Face)+v.Unseen() < last.Quantity
}

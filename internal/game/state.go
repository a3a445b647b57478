package game

import "slices"

// NoPlayer marks an unset winner or loser.
const NoPlayer = -1

// Status is the phase of the current round.
type Status uint8

const (
	StatusNotStarted Status = iota
	StatusBidding
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusBidding:
		return "bidding"
	case StatusEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// PlayerState is the engine-owned record for one seat.
type PlayerState struct {
	PlayerID    int
	NumDice     int
	PrivateDice []int
	AgentID     string
}

// PublicState is everything both players can see.
type PublicState struct {
	RoundIndex    int
	TurnIndex     int
	CurrentPlayer int
	LastBid       *Bid
	BidHistory    []Bid
	DiceCounts    []int
	Status        Status
	Winner        int
	Loser         int
}

// Clone returns a deep copy.
func (p PublicState) Clone() PublicState {
	out := p
	if p.LastBid != nil {
		b := *p.LastBid
		out.LastBid = &b
	}
	out.BidHistory = slices.Clone(p.BidHistory)
	out.DiceCounts = slices.Clone(p.DiceCounts)
	return out
}

// GameState is the complete engine state.
type GameState struct {
	Config  Config
	Players []PlayerState
	Public  PublicState
}

// Clone returns a deep copy.
func (g GameState) Clone() GameState {
	out := GameState{
		Config:  g.Config.Clone(),
		Players: make([]PlayerState, len(g.Players)),
		Public:  g.Public.Clone(),
	}
	for i, p := range g.Players {
		p.PrivateDice = slices.Clone(p.PrivateDice)
		out.Players[i] = p
	}
	return out
}

// AllDice returns a copy of every player's dice, indexed by player.
func (g GameState) AllDice() [][]int {
	out := make([][]int, len(g.Players))
	for i, p := range g.Players {
		out[i] = slices.Clone(p.PrivateDice)
	}
	return out
}

package game

import (
	"cmp"
	"fmt"
)

// ActionKind distinguishes the two moves a player can make.
type ActionKind uint8

const (
	ActionUnknown ActionKind = iota
	ActionBid
	ActionCallLiar
)

func (k ActionKind) String() string {
	switch k {
	case ActionBid:
		return "bid"
	case ActionCallLiar:
		return "liar"
	default:
		return "unknown"
	}
}

// Action is either a bid or a challenge of the last bid. The zero value is
// ActionUnknown and is rejected by the engine.
type Action struct {
	Kind ActionKind
	Bid  Bid
}

// BidAction returns a bid action.
func BidAction(quantity, face int) Action {
	return Action{Kind: ActionBid, Bid: Bid{Quantity: quantity, Face: face}}
}

// CallLiar returns a challenge of the last bid.
func CallLiar() Action {
	return Action{Kind: ActionCallLiar}
}

// IsBid reports whether the action is a bid.
func (a Action) IsBid() bool { return a.Kind == ActionBid }

// IsCall reports whether the action challenges the last bid.
func (a Action) IsCall() bool { return a.Kind == ActionCallLiar }

func (a Action) String() string {
	switch a.Kind {
	case ActionBid:
		return "bid " + a.Bid.String()
	case ActionCallLiar:
		return "liar"
	default:
		return "unknown"
	}
}

// Key is a compact form used in persisted tables: "QxF" or "liar".
func (a Action) Key() string {
	if a.Kind == ActionBid {
		return a.Bid.String()
	}
	return a.Kind.String()
}

// ParseAction parses the output of Key.
func ParseAction(s string) (Action, error) {
	if s == "liar" {
		return CallLiar(), nil
	}
	b, err := ParseBid(s)
	if err != nil {
		return Action{}, fmt.Errorf("parse action: %w", err)
	}
	return Action{Kind: ActionBid, Bid: b}, nil
}

// CompareActions orders bids by rank with challenges last.
func CompareActions(a, b Action) int {
	if a.Kind != b.Kind {
		return cmp.Compare(a.Kind, b.Kind)
	}
	return a.Bid.Compare(b.Bid)
}

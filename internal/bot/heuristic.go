package bot

import (
	rand "math/rand/v2"

	"github.com/lox/liarsdice/internal/game"
)

// ConservativeBot opens low on its first die, challenges any quantity larger
// than its own hand and otherwise makes the smallest raise it can back with
// its own dice count.
type ConservativeBot struct{}

func NewConservativeBot() *ConservativeBot { return &ConservativeBot{} }

func (c *ConservativeBot) ChooseAction(view game.View) game.Action {
	last := view.LastBid()
	if last == nil {
		return game.BidAction(1, ownFirstFace(view))
	}
	if forcedCall(view) || last.Quantity > len(view.MyDice) {
		return game.CallLiar()
	}
	if bids := higherBids(view, *last, last.Quantity, len(view.MyDice)); len(bids) > 0 {
		return game.BidAction(bids[0].Quantity, bids[0].Face)
	}
	return game.CallLiar()
}

// AggressiveBot opens at its hand size and raises to the highest quantity in
// the pool; it challenges only when no higher bid exists.
type AggressiveBot struct {
	rng *rand.Rand
}

func NewAggressiveBot(rng *rand.Rand) *AggressiveBot { return &AggressiveBot{rng: rng} }

func (a *AggressiveBot) ChooseAction(view game.View) game.Action {
	last := view.LastBid()
	if last == nil {
		return game.BidAction(max(len(view.MyDice), 1), randomOwnFace(view, a.rng))
	}
	if forcedCall(view) {
		return game.CallLiar()
	}
	total := view.TotalDice()
	for q := total; q > last.Quantity; q-- {
		for _, f := range view.Config.Faces {
			b := game.Bid{Quantity: q, Face: f}
			if b.IsHigherThan(last) {
				return game.BidAction(q, f)
			}
		}
	}
	return game.CallLiar()
}

// ProbabilityBot challenges when the last quantity exceeds the expected
// count of any face by more than one, otherwise raises minimally or
// maximally.
type ProbabilityBot struct {
	rng     *rand.Rand
	maximal bool
}

func NewProbabilityBot(rng *rand.Rand, maximal bool) *ProbabilityBot {
	return &ProbabilityBot{rng: rng, maximal: maximal}
}

func (p *ProbabilityBot) ChooseAction(view game.View) game.Action {
	last := view.LastBid()
	if last == nil {
		return game.BidAction(1, randomOwnFace(view, p.rng))
	}
	if forcedCall(view) {
		return game.CallLiar()
	}
	expected := float64(view.TotalDice()) / float64(len(view.Config.Faces))
	if float64(last.Quantity) > expected+1 {
		return game.CallLiar()
	}
	return pickRaise(view, *last, p.maximal)
}

// RaiseBot always raises, minimally or maximally, until no raise remains.
type RaiseBot struct {
	rng     *rand.Rand
	maximal bool
}

func NewRaiseBot(rng *rand.Rand, maximal bool) *RaiseBot {
	return &RaiseBot{rng: rng, maximal: maximal}
}

func (r *RaiseBot) ChooseAction(view game.View) game.Action {
	last := view.LastBid()
	if last == nil {
		return game.BidAction(1, randomOwnFace(view, r.rng))
	}
	if forcedCall(view) {
		return game.CallLiar()
	}
	return pickRaise(view, *last, r.maximal)
}

func pickRaise(view game.View, last game.Bid, maximal bool) game.Action {
	bids := higherBids(view, last, last.Quantity, view.TotalDice())
	if len(bids) == 0 {
		return game.CallLiar()
	}
	b := bids[0]
	if maximal {
		b = bids[len(bids)-1]
	}
	return game.BidAction(b.Quantity, b.Face)
}

// MirrorBot keeps the opponent's face and raises its quantity by one.
type MirrorBot struct {
	rng *rand.Rand
}

func NewMirrorBot(rng *rand.Rand) *MirrorBot { return &MirrorBot{rng: rng} }

func (m *MirrorBot) ChooseAction(view game.View) game.Action {
	last := view.LastBid()
	if last == nil {
		return game.BidAction(1, randomOwnFace(view, m.rng))
	}
	if forcedCall(view) {
		return game.CallLiar()
	}
	return bidOrCall(view, game.Bid{Quantity: last.Quantity + 1, Face: last.Face})
}

// MaxCountBot opens with its most common face at its full count, then pushes
// the quantity of the standing face up by one.
type MaxCountBot struct{}

func NewMaxCountBot() *MaxCountBot { return &MaxCountBot{} }

func (m *MaxCountBot) ChooseAction(view game.View) game.Action {
	last := view.LastBid()
	if last == nil {
		face, count := mostCommonFace(view.MyDice)
		if count == 0 {
			return game.BidAction(1, view.Config.Faces[0])
		}
		return game.BidAction(count, face)
	}
	if forcedCall(view) {
		return game.CallLiar()
	}
	return bidOrCall(view, game.Bid{Quantity: last.Quantity + 1, Face: last.Face})
}

// mostCommonFace returns the face held most often; ties go to the face seen
// first in dice.
func mostCommonFace(dice []int) (face, count int) {
	counts := make(map[int]int, len(dice))
	for _, d := range dice {
		counts[d]++
	}
	for _, d := range dice {
		if counts[d] > count {
			face, count = d, counts[d]
		}
	}
	return face, count
}

func ownFirstFace(view game.View) int {
	if len(view.MyDice) == 0 {
		return view.Config.Faces[0]
	}
	return view.MyDice[0]
}

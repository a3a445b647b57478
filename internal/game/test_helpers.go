package game

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"
)

// FixedDice is a DiceSource that deals scripted hands in order, cycling when
// exhausted. Each call to RollN consumes one hand and truncates or pads it
// (with the hand's first die) to n.
type FixedDice struct {
	hands [][]int
	next  int
}

// NewFixedDice scripts the hands to deal, player 0 first.
func NewFixedDice(hands ...[]int) *FixedDice {
	return &FixedDice{hands: hands}
}

// RollN implements DiceSource.
func (f *FixedDice) RollN(n int) []int {
	hand := f.hands[f.next%len(f.hands)]
	f.next++
	out := make([]int, n)
	for i := range out {
		if i < len(hand) {
			out[i] = hand[i]
		} else {
			out[i] = hand[0]
		}
	}
	return out
}

// TestConfig returns a small deterministic rule set: two dice each, faces 1..6.
func TestConfig() Config {
	cfg := DefaultConfig()
	cfg.DicePerPlayer = 2
	cfg.RNGSeed = 1
	return cfg
}

// NewTestEngine creates an engine with a discarding logger. Dice are fixed
// when hands are given, seeded from cfg otherwise.
func NewTestEngine(cfg Config, hands ...[]int) *Engine {
	opts := []Option{WithLogger(log.New(io.Discard))}
	if len(hands) > 0 {
		cloned := make([][]int, len(hands))
		for i, h := range hands {
			cloned[i] = slices.Clone(h)
		}
		opts = append(opts, WithRoller(NewFixedDice(cloned...)))
	}
	eng, err := NewEngine(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return eng
}

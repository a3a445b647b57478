package game

import (
	rand "math/rand/v2"
	"slices"

	"github.com/lox/liarsdice/internal/randutil"
)

// DiceSource produces a player's dice at round start.
type DiceSource interface {
	RollN(n int) []int
}

// Roller rolls dice uniformly over a fixed set of faces.
type Roller struct {
	rng   *rand.Rand
	faces []int
}

// NewRoller creates a roller seeded with seed; 0 picks a time-derived seed.
func NewRoller(seed int64, faces []int) *Roller {
	return NewRollerFromRand(randutil.New(randutil.Resolve(seed)), faces)
}

// NewRollerFromRand wraps an existing generator.
func NewRollerFromRand(rng *rand.Rand, faces []int) *Roller {
	return &Roller{rng: rng, faces: slices.Clone(faces)}
}

// Roll returns one die.
func (r *Roller) Roll() int {
	return r.faces[r.rng.IntN(len(r.faces))]
}

// RollN returns n dice.
func (r *Roller) RollN(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = r.Roll()
	}
	return out
}

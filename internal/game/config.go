package game

import (
	"fmt"
	"slices"
)

// BidOrdering names the total order used to compare bids.
type BidOrdering string

// OrderQuantityThenFace compares quantity first, then face.
const OrderQuantityThenFace BidOrdering = "quantity_then_face"

// Config holds the immutable rules for an engine.
type Config struct {
	NumPlayers int
	// DicePerPlayer is used when DiceDistribution is empty.
	DicePerPlayer int
	// DiceDistribution gives each player's dice count. A distribution shorter
	// than NumPlayers is cycled.
	DiceDistribution []int
	Faces            []int
	OnesWild         bool
	BidOrdering      BidOrdering
	// MaxTurns caps the number of bids in a round; <= 0 disables the cap.
	MaxTurns int
	// RNGSeed seeds the dice roller; 0 picks a time-derived seed.
	RNGSeed int64
}

// DefaultConfig returns the standard rules: two players with ten dice each,
// six-sided dice, no wild ones.
func DefaultConfig() Config {
	return Config{
		NumPlayers:    2,
		DicePerPlayer: 10,
		Faces:         []int{1, 2, 3, 4, 5, 6},
		BidOrdering:   OrderQuantityThenFace,
		MaxTurns:      64,
		RNGSeed:       69,
	}
}

// Distribution returns the dice count of every player.
func (c Config) Distribution() []int {
	out := make([]int, c.NumPlayers)
	if len(c.DiceDistribution) == 0 {
		for i := range out {
			out[i] = c.DicePerPlayer
		}
		return out
	}
	for i := range out {
		out[i] = c.DiceDistribution[i%len(c.DiceDistribution)]
	}
	return out
}

// TotalDice is the number of dice in play across all players.
func (c Config) TotalDice() int {
	total := 0
	for _, n := range c.Distribution() {
		total += n
	}
	return total
}

// HasFace reports whether face is one of the configured faces.
func (c Config) HasFace(face int) bool {
	return slices.Contains(c.Faces, face)
}

// WithDiceCounts returns a copy of c whose distribution is counts.
func (c Config) WithDiceCounts(counts []int) Config {
	out := c.Clone()
	out.DiceDistribution = slices.Clone(counts)
	return out
}

// Clone returns a deep copy, so the engine can freeze its configuration.
func (c Config) Clone() Config {
	out := c
	out.DiceDistribution = slices.Clone(c.DiceDistribution)
	out.Faces = slices.Clone(c.Faces)
	return out
}

// Validate checks the configuration; failures wrap ErrInvalidConfig.
func (c Config) Validate() error {
	if c.NumPlayers != 2 {
		return fmt.Errorf("%w: num players must be 2, got %d", ErrInvalidConfig, c.NumPlayers)
	}
	if len(c.Faces) == 0 {
		return fmt.Errorf("%w: faces must not be empty", ErrInvalidConfig)
	}
	seen := make(map[int]bool, len(c.Faces))
	for _, f := range c.Faces {
		if f < 1 {
			return fmt.Errorf("%w: face %d must be positive", ErrInvalidConfig, f)
		}
		if seen[f] {
			return fmt.Errorf("%w: duplicate face %d", ErrInvalidConfig, f)
		}
		seen[f] = true
	}
	for i, n := range c.Distribution() {
		if n < 1 {
			return fmt.Errorf("%w: player %d must hold at least one die, got %d", ErrInvalidConfig, i, n)
		}
	}
	if c.BidOrdering != "" && c.BidOrdering != OrderQuantityThenFace {
		return fmt.Errorf("%w: unsupported bid ordering %q", ErrInvalidConfig, c.BidOrdering)
	}
	return nil
}

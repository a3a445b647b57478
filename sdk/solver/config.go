package solver

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SamplingMode controls how a deal is chosen for each CFR iteration.
type SamplingMode uint8

const (
	// SamplingUniform rolls every die uniformly.
	SamplingUniform SamplingMode = iota
	// SamplingAdaptive favours deals whose hands have been visited least.
	SamplingAdaptive
)

func (m SamplingMode) String() string {
	switch m {
	case SamplingUniform:
		return "uniform"
	case SamplingAdaptive:
		return "adaptive"
	default:
		return "unknown"
	}
}

// ParseSamplingMode accepts the names produced by String.
func ParseSamplingMode(s string) (SamplingMode, error) {
	switch strings.ToLower(s) {
	case "uniform", "":
		return SamplingUniform, nil
	case "adaptive":
		return SamplingAdaptive, nil
	default:
		return 0, fmt.Errorf("unknown sampling mode %q", s)
	}
}

// TraversalMode selects how the bidding tree is walked for a fixed deal.
type TraversalMode uint8

const (
	// TraversalMerged walks each (last bid, player to act) state once per
	// iteration, summing reach probabilities over every history that leads to
	// it. Per-iteration cost is polynomial in the number of bids.
	TraversalMerged TraversalMode = iota
	// TraversalTree recurses over every history. Cost is exponential in the
	// number of bids, so larger games need a MaxDepth bound.
	TraversalTree
)

func (m TraversalMode) String() string {
	switch m {
	case TraversalMerged:
		return "merged"
	case TraversalTree:
		return "tree"
	default:
		return "unknown"
	}
}

// ParseTraversalMode accepts the names produced by String.
func ParseTraversalMode(s string) (TraversalMode, error) {
	switch strings.ToLower(s) {
	case "merged", "":
		return TraversalMerged, nil
	case "tree":
		return TraversalTree, nil
	default:
		return 0, fmt.Errorf("unknown traversal mode %q", s)
	}
}

// maxTreeBids bounds the bid space TraversalTree accepts without a MaxDepth.
const maxTreeBids = 16

// TrainingConfig aggregates parameters that control CFR execution for one
// dice-count configuration.
type TrainingConfig struct {
	DiceCounts []int         `json:"dice_counts"`
	Faces      []int         `json:"faces"`
	OnesWild   bool          `json:"ones_wild"`
	Iterations int           `json:"iterations"`
	Seed       int64         `json:"seed"`
	Sampling   SamplingMode  `json:"sampling"`
	Traversal  TraversalMode `json:"traversal"`

	// ExplorationBonus is added to every adaptive sampling weight so that
	// well-visited deals keep a floor probability.
	ExplorationBonus float64 `json:"exploration_bonus"`
	// AdaptiveCandidates is the number of uniform deals drawn per iteration
	// for the adaptive sampler to choose from.
	AdaptiveCandidates int `json:"adaptive_candidates"`

	// MaxDepth bounds tree recursion; a node at the bound is scored as an
	// immediate challenge. Zero means no bound beyond the bid space.
	MaxDepth int `json:"max_depth"`

	ConvergenceEvery     int     `json:"convergence_every"`
	MinIterations        int     `json:"min_iterations"`
	ConvergenceThreshold float64 `json:"convergence_threshold"`

	ProgressEvery int `json:"progress_every"`
	// CheckpointInterval also checkpoints when this much wall time has passed
	// since the last checkpoint. Zero disables the time trigger.
	CheckpointInterval time.Duration `json:"checkpoint_interval"`
	// TrackRegret records the average absolute regret at every progress tick.
	TrackRegret bool `json:"track_regret"`
}

// TotalDice is the number of dice in play.
func (c TrainingConfig) TotalDice() int {
	total := 0
	for _, n := range c.DiceCounts {
		total += n
	}
	return total
}

// Key identifies the configuration in a PolicyStore.
func (c TrainingConfig) Key() ConfigKey {
	return NewConfigKey(c.DiceCounts, c.Faces)
}

// Validate ensures the training parameters are safe to use.
func (c TrainingConfig) Validate() error {
	if len(c.DiceCounts) != 2 {
		return fmt.Errorf("dice counts must name 2 players, got %d", len(c.DiceCounts))
	}
	for i, n := range c.DiceCounts {
		if n < 1 || n > MaxDicePerPlayer {
			return fmt.Errorf("dice count for player %d must be in [1, %d], got %d", i, MaxDicePerPlayer, n)
		}
	}
	if len(c.Faces) == 0 {
		return errors.New("faces must not be empty")
	}
	seen := make(map[int]bool, len(c.Faces))
	last := 0
	for _, f := range c.Faces {
		if f < 1 || f > 255 {
			return fmt.Errorf("face %d must be in [1, 255]", f)
		}
		if seen[f] {
			return fmt.Errorf("duplicate face %d", f)
		}
		if f < last {
			return errors.New("faces must be sorted ascending")
		}
		seen[f] = true
		last = f
	}
	if c.Iterations <= 0 {
		return errors.New("iterations must be > 0")
	}
	if c.Sampling > SamplingAdaptive {
		return errors.New("invalid sampling mode")
	}
	if c.Traversal > TraversalTree {
		return errors.New("invalid traversal mode")
	}
	if c.Traversal == TraversalTree && c.MaxDepth == 0 && c.TotalDice()*len(c.Faces) > maxTreeBids {
		return fmt.Errorf("tree traversal without max depth supports at most %d distinct bids, config has %d", maxTreeBids, c.TotalDice()*len(c.Faces))
	}
	if c.Sampling == SamplingAdaptive && c.AdaptiveCandidates < 1 {
		return errors.New("adaptive sampling needs at least one candidate")
	}
	if c.ExplorationBonus < 0 {
		return errors.New("exploration bonus cannot be negative")
	}
	if c.MaxDepth < 0 {
		return errors.New("max depth cannot be negative")
	}
	if c.ConvergenceEvery < 0 || c.MinIterations < 0 {
		return errors.New("convergence schedule cannot be negative")
	}
	if c.ConvergenceEvery > 0 && c.ConvergenceThreshold <= 0 {
		return errors.New("convergence threshold must be > 0 when checks are enabled")
	}
	if c.ProgressEvery < 0 {
		return errors.New("progress interval cannot be negative")
	}
	if c.CheckpointInterval < 0 {
		return errors.New("checkpoint interval cannot be negative")
	}
	return nil
}

// DefaultTrainingConfig returns a configuration for a one-die-each game on
// six faces, suitable for local experimentation.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		DiceCounts:           []int{1, 1},
		Faces:                []int{1, 2, 3, 4, 5, 6},
		Iterations:           10000,
		Seed:                 69,
		Sampling:             SamplingUniform,
		Traversal:            TraversalMerged,
		ExplorationBonus:     0.01,
		AdaptiveCandidates:   8,
		MaxDepth:             0,
		ConvergenceEvery:     500,
		MinIterations:        2000,
		ConvergenceThreshold: 0.001,
		ProgressEvery:        0,
		CheckpointInterval:   5 * time.Minute,
	}
}

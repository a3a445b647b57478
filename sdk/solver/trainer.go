package solver

import (
	"context"
	"fmt"
	"io"
	rand "math/rand/v2"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/liarsdice/internal/randutil"
)

// Progress contains metadata emitted during long-running solver operations.
type Progress struct {
	Iteration       int
	Iterations      int
	RegretTableSize int
	Stats           TraversalStats
	Converged       bool
	// LastDelta is the most recent convergence delta, or -1 before the first
	// comparison.
	LastDelta float64
}

// Metrics is the trainer's history across iterations.
type Metrics struct {
	// Deltas[i] is the max policy change measured at DeltaIterations[i].
	Deltas          []float64 `json:"deltas"`
	DeltaIterations []int     `json:"delta_iterations"`
	// RegretHistory holds the average absolute regret at each progress tick
	// when TrackRegret is enabled.
	RegretHistory []float64 `json:"regret_history"`
	ConvergedAt   int       `json:"converged_at"`
	// RootValue is player 0's value at the opening under the last iteration's
	// strategies (merged traversal only).
	RootValue float64 `json:"root_value"`
}

func (m Metrics) clone() Metrics {
	m.Deltas = slices.Clone(m.Deltas)
	m.DeltaIterations = slices.Clone(m.DeltaIterations)
	m.RegretHistory = slices.Clone(m.RegretHistory)
	return m
}

// Trainer runs counterfactual regret minimisation for a single dice-count
// configuration. It is single-threaded; Run must not be called concurrently.
type Trainer struct {
	cfg     TrainingConfig
	tree    *bidTree
	regrets *RegretTable
	dealer  *dealer
	src     *rand.PCG
	rng     *rand.Rand

	iteration int
	converged bool
	snapshot  Policy
	metrics   Metrics
	stats     TraversalStats

	states []mergedState
	truth  []bool

	clock           quartz.Clock
	logger          *log.Logger
	checkpointPath  string
	checkpointEvery int
	lastCheckpoint  time.Time
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithClock injects the clock used for iteration timing and time-based
// checkpoints.
func WithClock(clock quartz.Clock) Option {
	return func(t *Trainer) { t.clock = clock }
}

// WithLogger sets the trainer's logger; the default discards output.
func WithLogger(logger *log.Logger) Option {
	return func(t *Trainer) { t.logger = logger }
}

// NewTrainer constructs a trainer for cfg.
func NewTrainer(cfg TrainingConfig, opts ...Option) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid training config: %w", err)
	}
	cfg.DiceCounts = slices.Clone(cfg.DiceCounts)
	cfg.Faces = slices.Clone(cfg.Faces)
	cfg.Seed = randutil.Resolve(cfg.Seed)

	src := randutil.NewSource(cfg.Seed)
	t := &Trainer{
		cfg:     cfg,
		tree:    newBidTree(cfg),
		regrets: NewRegretTable(),
		dealer:  newDealer(cfg),
		src:     src,
		rng:     rand.New(src),
		clock:   quartz.NewReal(),
		logger:  log.New(io.Discard),
	}
	t.states = make([]mergedState, (len(t.tree.bids)+1)*2)
	for _, opt := range opts {
		opt(t)
	}
	t.lastCheckpoint = t.clock.Now()
	return t, nil
}

// Run executes CFR iterations until the configured count is reached, the
// policy converges, or ctx is cancelled. On cancellation a checkpoint is
// written when checkpoints are enabled and ctx.Err() is returned.
func (t *Trainer) Run(ctx context.Context, progress func(Progress)) error {
	batch := t.cfg.Iterations / 100
	if batch == 0 {
		batch = 1
	}
	if t.cfg.ProgressEvery > 0 {
		batch = t.cfg.ProgressEvery
	}

	for t.iteration < t.cfg.Iterations && !t.converged {
		select {
		case <-ctx.Done():
			if t.checkpointPath != "" {
				if err := t.SaveCheckpoint(t.checkpointPath); err != nil {
					return fmt.Errorf("checkpoint on cancel: %w", err)
				}
			}
			return ctx.Err()
		default:
		}

		start := t.clock.Now()
		stats := t.step()
		stats.IterationTime = t.clock.Since(start)
		t.stats = stats
		t.iteration++

		t.checkConvergence()

		if err := t.maybeCheckpoint(); err != nil {
			return err
		}

		if t.iteration%batch == 0 {
			if t.cfg.TrackRegret {
				t.metrics.RegretHistory = append(t.metrics.RegretHistory, t.regrets.AverageAbsRegret())
			}
			if progress != nil {
				progress(t.progress())
			}
		}
	}

	if progress != nil {
		progress(t.progress())
	}
	if t.checkpointPath != "" {
		if err := t.SaveCheckpoint(t.checkpointPath); err != nil {
			return err
		}
	}
	t.logger.Debug("Training finished",
		"config", t.cfg.Key(),
		"iterations", t.iteration,
		"converged", t.converged,
		"infosets", t.regrets.Size())
	return nil
}

// step runs one iteration over a freshly sampled deal.
func (t *Trainer) step() TraversalStats {
	deal := t.dealer.next(t.rng)
	t.truth = t.tree.truth(deal, t.truth)
	it := iteration{
		tree:     t.tree,
		table:    t.regrets,
		deal:     deal,
		truth:    t.truth,
		maxDepth: t.cfg.MaxDepth,
	}
	switch t.cfg.Traversal {
	case TraversalTree:
		it.treeCFR(-1, 0, 0, 1, 1)
	default:
		it.mergedCFR(t.states)
		t.metrics.RootValue = rootValue(t.states)
	}
	return it.stats
}

func (t *Trainer) checkConvergence() {
	every := t.cfg.ConvergenceEvery
	if every <= 0 || t.iteration < t.cfg.MinIterations || t.iteration%every != 0 {
		return
	}
	current := ExtractPolicy(t.regrets)
	if t.snapshot != nil {
		delta := MaxDelta(t.snapshot, current)
		t.metrics.Deltas = append(t.metrics.Deltas, delta)
		t.metrics.DeltaIterations = append(t.metrics.DeltaIterations, t.iteration)
		t.logger.Debug("Convergence check", "iteration", t.iteration, "delta", delta)
		if delta < t.cfg.ConvergenceThreshold {
			t.converged = true
			t.metrics.ConvergedAt = t.iteration
			t.logger.Info("Converged", "config", t.cfg.Key(), "iteration", t.iteration, "delta", delta)
		}
	}
	t.snapshot = current
}

func (t *Trainer) maybeCheckpoint() error {
	if t.checkpointPath == "" {
		return nil
	}
	due := t.checkpointEvery > 0 && t.iteration%t.checkpointEvery == 0
	if !due && t.cfg.CheckpointInterval > 0 && t.clock.Since(t.lastCheckpoint) >= t.cfg.CheckpointInterval {
		due = true
	}
	if !due {
		return nil
	}
	return t.SaveCheckpoint(t.checkpointPath)
}

func (t *Trainer) progress() Progress {
	delta := -1.0
	if n := len(t.metrics.Deltas); n > 0 {
		delta = t.metrics.Deltas[n-1]
	}
	return Progress{
		Iteration:       t.iteration,
		Iterations:      t.cfg.Iterations,
		RegretTableSize: t.regrets.Size(),
		Stats:           t.stats,
		Converged:       t.converged,
		LastDelta:       delta,
	}
}

// Policy materialises the averaged strategy produced so far.
func (t *Trainer) Policy() Policy {
	return ExtractPolicy(t.regrets)
}

// Regrets exposes the underlying table (read-only use).
func (t *Trainer) Regrets() *RegretTable { return t.regrets }

// Stats returns the most recent traversal statistics recorded by the trainer.
func (t *Trainer) Stats() TraversalStats { return t.stats }

// Metrics returns a copy of the convergence and regret history.
func (t *Trainer) Metrics() Metrics { return t.metrics.clone() }

// Converged reports whether the convergence threshold was met.
func (t *Trainer) Converged() bool { return t.converged }

func (t *Trainer) TrainingConfig() TrainingConfig { return t.cfg }

func (t *Trainer) Iteration() int { return t.iteration }

// HandVisits reports how many iterations dealt hand to either player.
func (t *Trainer) HandVisits(dice []int) int64 {
	return t.dealer.handVisits(NewHand(dice))
}

func (t *Trainer) SetTotalIterations(n int) error {
	if n < t.iteration {
		return fmt.Errorf("total iterations %d less than completed %d", n, t.iteration)
	}
	t.cfg.Iterations = n
	return nil
}

func (t *Trainer) SetProgressEvery(n int) {
	if n < 0 {
		n = 0
	}
	t.cfg.ProgressEvery = n
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"github.com/lox/liarsdice/internal/config"
	"github.com/lox/liarsdice/sdk/solver"
)

// TrainCmd trains a policy store. Flags override the configuration file.
type TrainCmd struct {
	MaxDice         int     `help:"Train every dice pairing up to this many dice per player"`
	Faces           []int   `help:"Die faces, comma separated"`
	OnesWild        bool    `help:"Count ones as wild when resolving challenges"`
	Iterations      int     `help:"CFR iterations per configuration"`
	Sampling        string  `help:"Deal sampling mode (uniform|adaptive)"`
	Traversal       string  `help:"Bidding traversal (merged|tree)"`
	Threshold       float64 `help:"Convergence threshold on the max policy change"`
	Seed            int64   `help:"Random seed; 0 keeps the configured seed"`
	Store           string  `help:"Policy store path"`
	CheckpointDir   string  `help:"Directory for per-configuration checkpoints"`
	CheckpointEvery int     `help:"Checkpoint every N iterations (0 uses the wall-clock interval only)"`
	Resume          string  `help:"Resume a single checkpoint file and merge its policy into the store"`
	Quiet           bool    `help:"Disable the progress bar"`
}

func (c *TrainCmd) Run(g *Globals) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	c.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid training flags: %w", err)
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	if c.Resume != "" {
		return c.resume(ctx, cfg, logger)
	}

	multi, err := cfg.MultiConfig()
	if err != nil {
		return err
	}
	multi.Logger = logger
	var bar *trainProgress
	if !c.Quiet {
		bar = &trainProgress{out: os.Stderr}
		multi.Progress = bar.update
	}

	logger.Info("Starting training run",
		"max_dice", multi.MaxDice,
		"configs", len(multi.Configurations()),
		"faces", multi.Base.Faces,
		"iterations", humanize.Comma(int64(multi.Base.Iterations)),
		"sampling", multi.Base.Sampling,
		"traversal", multi.Base.Traversal,
		"store", multi.StorePath)

	start := time.Now()
	store, err := solver.TrainAll(ctx, multi)
	bar.finish()
	if errors.Is(err, context.Canceled) {
		logger.Warn("Training interrupted; completed configs were saved",
			"trained", store.Len(),
			"checkpoints", multi.CheckpointDir)
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("Training completed",
		"duration", time.Since(start).Round(time.Millisecond),
		"configs", store.Len(),
		"infosets", humanize.Comma(int64(countInfoSets(store))),
		"store", multi.StorePath)
	return nil
}

func (c *TrainCmd) apply(cfg *config.Config) {
	t := cfg.Training
	if c.MaxDice > 0 {
		t.MaxDice = c.MaxDice
	}
	if len(c.Faces) > 0 {
		cfg.Rules.Faces = c.Faces
	}
	if c.OnesWild {
		cfg.Rules.OnesWild = true
	}
	if c.Iterations > 0 {
		t.Iterations = c.Iterations
	}
	if c.Sampling != "" {
		t.Sampling = c.Sampling
	}
	if c.Traversal != "" {
		t.Traversal = c.Traversal
	}
	if c.Threshold > 0 {
		t.ConvergenceThreshold = c.Threshold
	}
	if c.Seed != 0 {
		t.Seed = c.Seed
	}
	if c.Store != "" {
		t.PolicyStore = c.Store
	}
	if c.CheckpointDir != "" {
		t.CheckpointDir = c.CheckpointDir
	}
	if c.CheckpointEvery > 0 {
		t.CheckpointEvery = c.CheckpointEvery
	}
}

// resume continues one checkpointed configuration and stores its policy.
// The checkpoint keeps its own rules; only the iteration budget and the
// checkpoint cadence can change.
func (c *TrainCmd) resume(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	trainer, err := solver.LoadTrainerFromCheckpoint(c.Resume, solver.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}
	if c.Iterations > 0 {
		if err := trainer.SetTotalIterations(c.Iterations); err != nil {
			return err
		}
	}
	trainer.EnableCheckpoints(c.Resume, cfg.Training.CheckpointEvery)

	tc := trainer.TrainingConfig()
	logger.Info("Resuming training run",
		"config", tc.Key(),
		"iteration", humanize.Comma(int64(trainer.Iteration())),
		"iterations", humanize.Comma(int64(tc.Iterations)),
		"checkpoint", c.Resume)

	var progress func(solver.Progress)
	var bar *trainProgress
	if !c.Quiet {
		bar = &trainProgress{out: os.Stderr}
		progress = func(p solver.Progress) { bar.update(tc.Key(), p) }
	}
	err = trainer.Run(ctx, progress)
	bar.finish()
	if errors.Is(err, context.Canceled) {
		logger.Warn("Training interrupted", "iteration", trainer.Iteration(), "checkpoint", c.Resume)
		return nil
	}
	if err != nil {
		return err
	}

	path := cfg.Training.PolicyStore
	store, err := solver.LoadStore(path)
	if errors.Is(err, solver.ErrUntrainedPolicy) {
		store = solver.NewPolicyStore()
	} else if err != nil {
		return err
	}
	store.Put(tc.Key(), trainer.Policy())
	if err := solver.SaveStore(path, store); err != nil {
		return err
	}
	logger.Info("Policy stored",
		"config", tc.Key(),
		"converged", trainer.Converged(),
		"infosets", humanize.Comma(int64(trainer.Regrets().Size())),
		"store", path)
	return nil
}

func countInfoSets(store *solver.PolicyStore) int {
	total := 0
	for _, key := range store.Keys() {
		p, _ := store.Get(key)
		total += len(p)
	}
	return total
}

// trainProgress draws one progress bar per configuration.
type trainProgress struct {
	out io.Writer
	bar *progressbar.ProgressBar
	key solver.ConfigKey
}

func (p *trainProgress) update(key solver.ConfigKey, pr solver.Progress) {
	if p.bar == nil || key != p.key {
		p.finish()
		p.key = key
		p.bar = progressbar.NewOptions(pr.Iterations,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription(key.String()),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(p.out) }),
		)
	}
	if pr.LastDelta >= 0 {
		p.bar.Describe(fmt.Sprintf("%s delta=%.4f", key, pr.LastDelta))
	}
	_ = p.bar.Set(pr.Iteration)
}

func (p *trainProgress) finish() {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}

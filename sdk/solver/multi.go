package solver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// MultiConfig describes training across every dice-count pairing up to
// MaxDice per player.
type MultiConfig struct {
	MaxDice int
	// Base supplies faces, iteration budget, sampling and convergence settings;
	// its DiceCounts are replaced per configuration.
	Base TrainingConfig
	// StorePath, when set, is loaded before training (already-trained
	// configurations are skipped) and rewritten after every configuration.
	StorePath string
	// CheckpointDir, when set, holds a per-configuration trainer checkpoint
	// so an interrupted configuration resumes mid-run.
	CheckpointDir   string
	CheckpointEvery int

	Logger *log.Logger
	Clock  quartz.Clock
	// Progress receives per-iteration progress for the configuration being
	// trained.
	Progress func(ConfigKey, Progress)
}

// Configurations lists the dice-count pairs TrainAll visits, in
// lexicographic order.
func (m MultiConfig) Configurations() [][]int {
	var out [][]int
	for a := 1; a <= m.MaxDice; a++ {
		for b := 1; b <= m.MaxDice; b++ {
			out = append(out, []int{a, b})
		}
	}
	return out
}

func (m MultiConfig) validate() error {
	if m.MaxDice < 1 || m.MaxDice > MaxDicePerPlayer {
		return fmt.Errorf("max dice must be in [1, %d], got %d", MaxDicePerPlayer, m.MaxDice)
	}
	base := m.Base
	base.DiceCounts = []int{1, 1}
	return base.Validate()
}

// TrainAll trains a policy for every configuration not yet present in the
// store and returns the store. Cancelling ctx stops after checkpointing the
// configuration in progress; configurations completed so far are kept.
func TrainAll(ctx context.Context, m MultiConfig) (*PolicyStore, error) {
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid multi config: %w", err)
	}
	logger := m.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	store := NewPolicyStore()
	if m.StorePath != "" {
		loaded, err := LoadStore(m.StorePath)
		switch {
		case err == nil:
			store = loaded
			logger.Info("Resuming from policy store", "path", m.StorePath, "configs", store.Len())
		case errors.Is(err, ErrUntrainedPolicy):
		default:
			return nil, err
		}
	}

	for _, counts := range m.Configurations() {
		cfg := m.Base
		cfg.DiceCounts = counts
		cfg.Faces = slices.Clone(m.Base.Faces)
		key := cfg.Key()
		if store.Has(key) {
			logger.Debug("Skipping trained config", "config", key)
			continue
		}

		trainer, err := m.trainer(cfg, logger)
		if err != nil {
			return store, err
		}

		logger.Info("Training config", "config", key, "iterations", cfg.Iterations)
		var progress func(Progress)
		if m.Progress != nil {
			progress = func(p Progress) { m.Progress(key, p) }
		}
		if err := trainer.Run(ctx, progress); err != nil {
			return store, fmt.Errorf("train %s: %w", key, err)
		}

		store.Put(key, trainer.Policy())
		if m.StorePath != "" {
			if err := SaveStore(m.StorePath, store); err != nil {
				return store, err
			}
		}
		logger.Info("Trained config",
			"config", key,
			"iterations", trainer.Iteration(),
			"converged", trainer.Converged(),
			"infosets", trainer.Regrets().Size())
	}
	return store, nil
}

func (m MultiConfig) trainer(cfg TrainingConfig, logger *log.Logger) (*Trainer, error) {
	opts := []Option{WithLogger(logger)}
	if m.Clock != nil {
		opts = append(opts, WithClock(m.Clock))
	}
	if m.CheckpointDir == "" {
		return NewTrainer(cfg, opts...)
	}

	path := filepath.Join(m.CheckpointDir, checkpointName(cfg))
	if _, err := os.Stat(path); err == nil {
		t, err := LoadTrainerFromCheckpoint(path, opts...)
		if err != nil {
			return nil, err
		}
		resumed := t.TrainingConfig()
		if resumed.Key() == cfg.Key() && resumed.OnesWild == cfg.OnesWild {
			if err := t.SetTotalIterations(max(cfg.Iterations, t.Iteration())); err != nil {
				return nil, err
			}
			logger.Info("Resuming config from checkpoint", "path", path, "iteration", t.Iteration())
			t.EnableCheckpoints(path, m.CheckpointEvery)
			return t, nil
		}
		logger.Warn("Ignoring checkpoint for different rules", "path", path,
			"checkpoint", resumed.Key(), "ones_wild", resumed.OnesWild, "config", cfg.Key())
	}

	t, err := NewTrainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	t.EnableCheckpoints(path, m.CheckpointEvery)
	return t, nil
}

// checkpointName names a configuration's checkpoint after everything that
// shapes its game tree, e.g. checkpoint-2x1-f1.2.3-wild.json.
func checkpointName(cfg TrainingConfig) string {
	name := "checkpoint-" + joinWith(cfg.DiceCounts, "x") + "-f" + joinWith(cfg.Faces, ".")
	if cfg.OnesWild {
		name += "-wild"
	}
	return name + ".json"
}

func joinWith(values []int, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, sep)
}

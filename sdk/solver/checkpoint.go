package solver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lox/liarsdice/internal/fileutil"
	"github.com/lox/liarsdice/internal/game"
)

const checkpointFileVersion = 1

type checkpointSnapshot struct {
	Version   int                     `json:"version"`
	Iteration int                     `json:"iteration"`
	Converged bool                    `json:"converged"`
	RNGState  []byte                  `json:"rng_state"`
	Training  TrainingConfig          `json:"training"`
	Nodes     map[string]nodeSnapshot `json:"nodes"`
	Visits    map[string]int64        `json:"hand_visits"`
	Metrics   Metrics                 `json:"metrics"`
	Stats     TraversalStats          `json:"stats"`
}

type nodeSnapshot struct {
	Actions     []string  `json:"actions"`
	RegretSum   []float64 `json:"regret_sum"`
	StrategySum []float64 `json:"strategy_sum"`
	Visits      int64     `json:"visits"`
}

// EnableCheckpoints configures the trainer to write checkpoints to path every
// n iterations (n <= 0 relies on CheckpointInterval alone), on cancellation
// and when Run returns.
func (t *Trainer) EnableCheckpoints(path string, every int) {
	t.checkpointPath = path
	t.checkpointEvery = every
}

// SaveCheckpoint writes a snapshot of the trainer state to the provided path.
func (t *Trainer) SaveCheckpoint(path string) error {
	snap, err := t.buildCheckpoint()
	if err != nil {
		return err
	}
	err = fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode checkpoint: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("persist checkpoint: %w", err)
	}
	t.lastCheckpoint = t.clock.Now()
	t.logger.Debug("Checkpoint saved", "path", path, "iteration", t.iteration)
	return nil
}

// LoadTrainerFromCheckpoint restores a trainer from a previously saved
// checkpoint. Options apply as for NewTrainer.
func LoadTrainerFromCheckpoint(path string, opts ...Option) (*Trainer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	snap, err := decodeCheckpoint(f)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", path, err)
	}

	trainer, err := NewTrainer(snap.Training, opts...)
	if err != nil {
		return nil, err
	}
	if err := trainer.src.UnmarshalBinary(snap.RNGState); err != nil {
		return nil, fmt.Errorf("restore rng state: %w", err)
	}
	trainer.iteration = snap.Iteration
	trainer.converged = snap.Converged
	trainer.metrics = snap.Metrics
	trainer.stats = snap.Stats

	for keyStr, ns := range snap.Nodes {
		key, err := ParseInfoSetKey(keyStr)
		if err != nil {
			return nil, err
		}
		node, err := restoreNode(ns)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", keyStr, err)
		}
		trainer.regrets.nodes[key] = node
	}
	for handStr, n := range snap.Visits {
		dice, err := parseInts(handStr)
		if err != nil {
			return nil, fmt.Errorf("hand visits %q: %w", handStr, err)
		}
		hand, ok := TryNewHand(dice)
		if !ok {
			return nil, fmt.Errorf("hand visits %q: hand cannot be encoded", handStr)
		}
		trainer.dealer.visits[hand] = n
	}
	return trainer, nil
}

func (t *Trainer) buildCheckpoint() (*checkpointSnapshot, error) {
	rngState, err := t.src.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("snapshot rng: %w", err)
	}
	snap := &checkpointSnapshot{
		Version:   checkpointFileVersion,
		Iteration: t.iteration,
		Converged: t.converged,
		RNGState:  rngState,
		Training:  t.cfg,
		Nodes:     make(map[string]nodeSnapshot, t.regrets.Size()),
		Visits:    make(map[string]int64, len(t.dealer.visits)),
		Metrics:   t.metrics.clone(),
		Stats:     t.stats,
	}
	for key, node := range t.regrets.nodes {
		actions := make([]string, len(node.Actions))
		for i, a := range node.Actions {
			actions[i] = a.Key()
		}
		snap.Nodes[key.String()] = nodeSnapshot{
			Actions:     actions,
			RegretSum:   append([]float64(nil), node.RegretSum...),
			StrategySum: append([]float64(nil), node.StrategySum...),
			Visits:      node.Visits,
		}
	}
	for hand, n := range t.dealer.visits {
		snap.Visits[hand.String()] = n
	}
	return snap, nil
}

func decodeCheckpoint(r io.Reader) (*checkpointSnapshot, error) {
	var snap checkpointSnapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, err
	}
	if snap.Version != checkpointFileVersion {
		return nil, errors.New("unsupported checkpoint version")
	}
	if err := snap.Training.Validate(); err != nil {
		return nil, fmt.Errorf("checkpoint training invalid: %w", err)
	}
	return &snap, nil
}

func restoreNode(ns nodeSnapshot) (*Node, error) {
	if len(ns.RegretSum) != len(ns.Actions) || len(ns.StrategySum) != len(ns.Actions) {
		return nil, errors.New("action and sum lengths differ")
	}
	actions := make([]game.Action, len(ns.Actions))
	for i, s := range ns.Actions {
		a, err := game.ParseAction(s)
		if err != nil {
			return nil, err
		}
		actions[i] = a
	}
	return &Node{
		Actions:     actions,
		RegretSum:   append([]float64(nil), ns.RegretSum...),
		StrategySum: append([]float64(nil), ns.StrategySum...),
		Visits:      ns.Visits,
	}, nil
}

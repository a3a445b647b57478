package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/liarsdice/internal/config"
	"github.com/lox/liarsdice/internal/game"
	"github.com/lox/liarsdice/internal/randutil"
	"github.com/lox/liarsdice/sdk/solver"
)

func TestCLIParsesCommands(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"})
	require.NoError(t, err)

	ctx, err := parser.Parse([]string{"--debug", "train", "--max-dice", "3", "--faces", "1,2,3", "--sampling", "adaptive"})
	require.NoError(t, err)
	assert.Equal(t, "train", ctx.Command())
	assert.True(t, cli.Debug)
	assert.Equal(t, 3, cli.Train.MaxDice)
	assert.Equal(t, []int{1, 2, 3}, cli.Train.Faces)

	ctx, err = parser.Parse([]string{"tournament", "--agents", "uniform,mirror", "--games", "2"})
	require.NoError(t, err)
	assert.Equal(t, "tournament", ctx.Command())
	assert.Equal(t, []string{"uniform", "mirror"}, cli.Tournament.Agents)
}

func TestTrainFlagsOverrideConfig(t *testing.T) {
	cfg := config.Default()
	cmd := TrainCmd{MaxDice: 3, Faces: []int{1, 2, 3}, Iterations: 50, Sampling: "adaptive", Store: "out.msgp", CheckpointEvery: 10}
	cmd.apply(cfg)
	require.NoError(t, cfg.Validate())

	multi, err := cfg.MultiConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, multi.MaxDice)
	assert.Equal(t, []int{1, 2, 3}, multi.Base.Faces)
	assert.Equal(t, 50, multi.Base.Iterations)
	assert.Equal(t, solver.SamplingAdaptive, multi.Base.Sampling)
	assert.Equal(t, "out.msgp", multi.StorePath)
	assert.Equal(t, 10, multi.CheckpointEvery)
}

func TestNewRegistryPolicyAgent(t *testing.T) {
	logger := log.New(io.Discard)

	plain, err := newRegistry([]string{"uniform", "mirror"}, "", logger)
	require.NoError(t, err)
	assert.False(t, plain.Has(policyAgent))

	missing := filepath.Join(t.TempDir(), "none.msgp")
	reg, err := newRegistry([]string{"uniform", policyAgent}, missing, logger)
	require.NoError(t, err)
	require.True(t, reg.Has(policyAgent))

	agent, err := reg.New(policyAgent, randutil.New(1))
	require.NoError(t, err)
	eng := game.NewTestEngine(game.TestConfig(), []int{1, 2}, []int{3, 4})
	eng.StartRound()
	action := agent.ChooseAction(eng.View(0))
	require.NoError(t, eng.ApplyAction(0, action))
}

func TestWriteEvents(t *testing.T) {
	rec := game.NewRecorder(nil)
	eng, err := game.NewEngine(game.TestConfig(), game.WithSubscriber(rec), game.WithRoller(game.NewFixedDice([]int{2, 2}, []int{3, 4})))
	require.NoError(t, err)
	eng.StartRound()
	require.NoError(t, eng.ApplyAction(0, game.BidAction(2, 2)))
	require.NoError(t, eng.ApplyAction(1, game.CallLiar()))

	var buf bytes.Buffer
	writeEvents(&buf, rec.Records(), []string{"alice", "bob"})
	out := buf.String()
	assert.Contains(t, out, "== Round 1")
	assert.Contains(t, out, "alice bids 2x2")
	assert.Contains(t, out, "bob calls liar")
	assert.Contains(t, out, "bid was true (2 matching); bob loses a die")
}

func TestWritePolicyLimit(t *testing.T) {
	policy := solver.Policy{}
	for _, d := range []int{1, 2, 3} {
		policy[solver.NewInfoSetKey([]int{d}, nil)] = solver.Uniform([]game.Action{game.BidAction(1, 1), game.BidAction(1, 2)})
	}
	var buf bytes.Buffer
	writePolicy(&buf, policy, 2)
	assert.Contains(t, buf.String(), "... 1 more")
}

func TestParseCounts(t *testing.T) {
	counts, err := parseCounts("1, 2")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, counts)

	_, err = parseCounts("1")
	assert.Error(t, err)
	_, err = parseCounts("0,1")
	assert.Error(t, err)
}

func TestLoadStoreInfo(t *testing.T) {
	dir := t.TempDir()

	_, _, err := loadStoreInfo(filepath.Join(dir, "missing.msgp"))
	require.ErrorIs(t, err, solver.ErrUntrainedPolicy)

	_, _, err = loadStoreInfo(dir)
	require.Error(t, err)
	assert.NotErrorIs(t, err, solver.ErrUntrainedPolicy)

	garbage := filepath.Join(dir, "garbage.msgp")
	require.NoError(t, os.WriteFile(garbage, []byte("not a store"), 0o600))
	_, _, err = loadStoreInfo(garbage)
	require.Error(t, err)
	assert.NotErrorIs(t, err, solver.ErrUntrainedPolicy)

	path := filepath.Join(dir, "policy.msgp")
	saved := solver.NewPolicyStore()
	saved.Put(solver.NewConfigKey([]int{1, 1}, []int{1, 2}), solver.Policy{})
	require.NoError(t, solver.SaveStore(path, saved))
	store, size, err := loadStoreInfo(path)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), size)
}

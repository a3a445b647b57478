package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/liarsdice/internal/game"
	"github.com/lox/liarsdice/sdk/solver"
)

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "liarsdice.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, game.DefaultConfig(), cfg.GameConfig())
	assert.Equal(t, 2, cfg.Training.MaxDice)
	assert.Equal(t, "policy.msgp", cfg.Training.PolicyStore)
	assert.Equal(t, 10, cfg.Tournament.GamesPerPair)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"

rules {
  dice_distribution = [3, 2]
  faces             = [1, 2, 3, 4]
  ones_wild         = true
  max_turns         = 12
  seed              = 7
}

training {
  max_dice            = 3
  iterations          = 5000
  sampling            = "adaptive"
  traversal           = "merged"
  checkpoint_dir      = "ckpt"
  checkpoint_interval = "90s"
  track_regret        = true
}

tournament {
  agents         = ["uniform", "mirror"]
  games_per_pair = 4
  timeout        = "5s"
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, level)

	rules := cfg.GameConfig()
	assert.Equal(t, []int{3, 2}, rules.Distribution())
	assert.Equal(t, []int{1, 2, 3, 4}, rules.Faces)
	assert.True(t, rules.OnesWild)
	assert.Equal(t, 12, rules.MaxTurns)
	assert.Equal(t, int64(7), rules.RNGSeed)

	training, err := cfg.TrainingConfig()
	require.NoError(t, err)
	assert.Equal(t, solver.SamplingAdaptive, training.Sampling)
	assert.Equal(t, 5000, training.Iterations)
	assert.Equal(t, 90*time.Second, training.CheckpointInterval)
	assert.True(t, training.TrackRegret)
	assert.True(t, training.OnesWild)
	assert.Equal(t, []int{1, 2, 3, 4}, training.Faces)
	// Unset values fall back to solver defaults.
	assert.Equal(t, solver.DefaultTrainingConfig().MinIterations, training.MinIterations)

	multi, err := cfg.MultiConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, multi.MaxDice)
	assert.Equal(t, "ckpt", multi.CheckpointDir)
	assert.Len(t, multi.Configurations(), 9)

	assert.Equal(t, []string{"uniform", "mirror"}, cfg.Tournament.Agents)
	assert.Equal(t, 4, cfg.Tournament.GamesPerPair)
	assert.Equal(t, 3, cfg.Tournament.MaxIllegalMoves)
	timeout, err := cfg.TournamentTimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LIARSDICE_SEED", "4242")
	t.Setenv("LIARSDICE_LOG_LEVEL", "warn")
	t.Setenv("LIARSDICE_POLICY_STORE", "/tmp/other.msgp")

	path := writeConfig(t, `
log_level = "debug"
rules {
  seed = 1
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, int64(4242), cfg.Rules.Seed)
	assert.Equal(t, int64(4242), cfg.Training.Seed)
	assert.Equal(t, int64(4242), cfg.Tournament.Seed)
	assert.Equal(t, "/tmp/other.msgp", cfg.Training.PolicyStore)
}

func TestEnvRejectsBadSeed(t *testing.T) {
	t.Setenv("LIARSDICE_SEED", "lots")
	_, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.ErrorContains(t, err, "LIARSDICE_SEED")
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`rules {`), "broken.hcl")
	assert.ErrorContains(t, err, "failed to parse HCL file")

	_, err = Parse([]byte(`colour = "red"`), "unknown.hcl")
	assert.ErrorContains(t, err, "failed to decode HCL")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		errMsg string
	}{
		{"bad log level", `log_level = "shouty"`, "log_level"},
		{"duplicate face", "rules {\n faces = [2, 2]\n}", "rules"},
		{"too many dice", "training {\n max_dice = 11\n}", "max_dice"},
		{"bad sampling", "training {\n sampling = \"lucky\"\n}", "sampling"},
		{"tree too large", "rules {\n faces = [1, 2, 3, 4, 5, 6, 7, 8, 9]\n}\ntraining {\n traversal = \"tree\"\n}", "tree traversal"},
		{"bad interval", "training {\n checkpoint_interval = \"soon\"\n}", "checkpoint_interval"},
		{"one agent", "tournament {\n agents = [\"uniform\"]\n}", "two agents"},
		{"bad timeout", "tournament {\n timeout = \"never\"\n}", "timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.src), "test.hcl")
			require.NoError(t, err)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

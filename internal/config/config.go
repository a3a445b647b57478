// Package config loads liarsdice settings from an HCL file with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/lox/liarsdice/internal/game"
	"github.com/lox/liarsdice/sdk/solver"
)

// Config represents the complete configuration file
type Config struct {
	LogLevel   string              `hcl:"log_level,optional"`
	Rules      *RulesConfig        `hcl:"rules,block"`
	Training   *TrainingSettings   `hcl:"training,block"`
	Tournament *TournamentSettings `hcl:"tournament,block"`
}

// RulesConfig describes the game rules.
type RulesConfig struct {
	DicePerPlayer    int   `hcl:"dice_per_player,optional"`
	DiceDistribution []int `hcl:"dice_distribution,optional"`
	Faces            []int `hcl:"faces,optional"`
	OnesWild         bool  `hcl:"ones_wild,optional"`
	MaxTurns         int   `hcl:"max_turns,optional"`
	Seed             int64 `hcl:"seed,optional"`
}

// TrainingSettings configures multi-configuration CFR training.
type TrainingSettings struct {
	MaxDice              int     `hcl:"max_dice,optional"`
	Iterations           int     `hcl:"iterations,optional"`
	Sampling             string  `hcl:"sampling,optional"`
	Traversal            string  `hcl:"traversal,optional"`
	ExplorationBonus     float64 `hcl:"exploration_bonus,optional"`
	AdaptiveCandidates   int     `hcl:"adaptive_candidates,optional"`
	MaxDepth             int     `hcl:"max_depth,optional"`
	ConvergenceThreshold float64 `hcl:"convergence_threshold,optional"`
	ConvergenceEvery     int     `hcl:"convergence_every,optional"`
	MinIterations        int     `hcl:"min_iterations,optional"`
	CheckpointDir        string  `hcl:"checkpoint_dir,optional"`
	CheckpointEvery      int     `hcl:"checkpoint_every,optional"`
	CheckpointInterval   string  `hcl:"checkpoint_interval,optional"`
	PolicyStore          string  `hcl:"policy_store,optional"`
	TrackRegret          bool    `hcl:"track_regret,optional"`
	Seed                 int64   `hcl:"seed,optional"`
}

// TournamentSettings configures round-robin tournaments.
type TournamentSettings struct {
	Agents          []string `hcl:"agents,optional"`
	GamesPerPair    int      `hcl:"games_per_pair,optional"`
	Parallel        int      `hcl:"parallel,optional"`
	MaxIllegalMoves int      `hcl:"max_illegal_moves,optional"`
	MaxRounds       int      `hcl:"max_rounds,optional"`
	Timeout         string   `hcl:"timeout,optional"`
	Seed            int64    `hcl:"seed,optional"`
}

// envOverrides are read from the environment after the file.
type envOverrides struct {
	Seed        string `env:"LIARSDICE_SEED"`
	LogLevel    string `env:"LIARSDICE_LOG_LEVEL"`
	PolicyStore string `env:"LIARSDICE_POLICY_STORE"`
}

const (
	defaultLogLevel    = "info"
	defaultPolicyStore = "policy.msgp"
	defaultCheckpoints = "checkpoints"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from an HCL file. A missing file yields defaults.
// Environment overrides are applied in both cases.
func Load(filename string) (*Config, error) {
	var cfg *Config
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		cfg = Default()
	} else {
		src, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if cfg, err = Parse(src, filename); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes HCL source and fills in defaults for missing values.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}

	if c.Rules == nil {
		c.Rules = &RulesConfig{}
	}
	rules := game.DefaultConfig()
	if c.Rules.DicePerPlayer == 0 && len(c.Rules.DiceDistribution) == 0 {
		c.Rules.DicePerPlayer = rules.DicePerPlayer
	}
	if len(c.Rules.Faces) == 0 {
		c.Rules.Faces = slices.Clone(rules.Faces)
	}
	if c.Rules.MaxTurns == 0 {
		c.Rules.MaxTurns = rules.MaxTurns
	}
	if c.Rules.Seed == 0 {
		c.Rules.Seed = rules.RNGSeed
	}

	if c.Training == nil {
		c.Training = &TrainingSettings{}
	}
	training := solver.DefaultTrainingConfig()
	t := c.Training
	if t.MaxDice == 0 {
		t.MaxDice = 2
	}
	if t.Iterations == 0 {
		t.Iterations = training.Iterations
	}
	if t.Sampling == "" {
		t.Sampling = training.Sampling.String()
	}
	if t.Traversal == "" {
		t.Traversal = training.Traversal.String()
	}
	if t.ExplorationBonus == 0 {
		t.ExplorationBonus = training.ExplorationBonus
	}
	if t.AdaptiveCandidates == 0 {
		t.AdaptiveCandidates = training.AdaptiveCandidates
	}
	if t.ConvergenceThreshold == 0 {
		t.ConvergenceThreshold = training.ConvergenceThreshold
	}
	if t.ConvergenceEvery == 0 {
		t.ConvergenceEvery = training.ConvergenceEvery
	}
	if t.MinIterations == 0 {
		t.MinIterations = training.MinIterations
	}
	if t.CheckpointDir == "" {
		t.CheckpointDir = defaultCheckpoints
	}
	if t.CheckpointInterval == "" {
		t.CheckpointInterval = training.CheckpointInterval.String()
	}
	if t.PolicyStore == "" {
		t.PolicyStore = defaultPolicyStore
	}
	if t.Seed == 0 {
		t.Seed = training.Seed
	}

	if c.Tournament == nil {
		c.Tournament = &TournamentSettings{}
	}
	tour := c.Tournament
	if len(tour.Agents) == 0 {
		tour.Agents = []string{"conservative", "aggressive", "probability_minraise", "random"}
	}
	if tour.GamesPerPair == 0 {
		tour.GamesPerPair = 10
	}
	if tour.Parallel == 0 {
		tour.Parallel = 4
	}
	if tour.MaxIllegalMoves == 0 {
		tour.MaxIllegalMoves = 3
	}
	if tour.MaxRounds == 0 {
		tour.MaxRounds = 1000
	}
	if tour.Timeout == "" {
		tour.Timeout = "30s"
	}
}

// ApplyEnv overrides file values with LIARSDICE_* environment variables.
// LIARSDICE_SEED applies to rules, training and tournaments alike.
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := cleanenv.ReadEnv(&env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	if env.Seed != "" {
		seed, err := strconv.ParseInt(env.Seed, 10, 64)
		if err != nil {
			return fmt.Errorf("LIARSDICE_SEED: %w", err)
		}
		c.Rules.Seed = seed
		c.Training.Seed = seed
		c.Tournament.Seed = seed
	}
	if env.LogLevel != "" {
		c.LogLevel = env.LogLevel
	}
	if env.PolicyStore != "" {
		c.Training.PolicyStore = env.PolicyStore
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if err := c.GameConfig().Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if c.Training.MaxDice < 1 || c.Training.MaxDice > solver.MaxDicePerPlayer {
		return fmt.Errorf("training: max_dice must be between 1 and %d", solver.MaxDicePerPlayer)
	}
	if _, err := c.TrainingConfig(); err != nil {
		return fmt.Errorf("training: %w", err)
	}
	if len(c.Tournament.Agents) < 2 {
		return fmt.Errorf("tournament: at least two agents must be configured")
	}
	if c.Tournament.GamesPerPair < 1 {
		return fmt.Errorf("tournament: games_per_pair must be positive")
	}
	if _, err := c.TournamentTimeout(); err != nil {
		return fmt.Errorf("tournament: %w", err)
	}
	return nil
}

// Level parses the configured log level.
func (c *Config) Level() (log.Level, error) {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// GameConfig converts the rules block to engine rules.
func (c *Config) GameConfig() game.Config {
	cfg := game.DefaultConfig()
	cfg.DicePerPlayer = c.Rules.DicePerPlayer
	cfg.DiceDistribution = slices.Clone(c.Rules.DiceDistribution)
	cfg.Faces = slices.Clone(c.Rules.Faces)
	cfg.OnesWild = c.Rules.OnesWild
	cfg.MaxTurns = c.Rules.MaxTurns
	cfg.RNGSeed = c.Rules.Seed
	return cfg
}

// TrainingConfig converts the training block into the solver's base
// configuration. Dice counts are left at one each; multi-config training
// replaces them.
func (c *Config) TrainingConfig() (solver.TrainingConfig, error) {
	t := c.Training
	cfg := solver.DefaultTrainingConfig()

	sampling, err := solver.ParseSamplingMode(t.Sampling)
	if err != nil {
		return cfg, err
	}
	traversal, err := solver.ParseTraversalMode(t.Traversal)
	if err != nil {
		return cfg, err
	}
	interval, err := time.ParseDuration(t.CheckpointInterval)
	if err != nil {
		return cfg, fmt.Errorf("checkpoint_interval: %w", err)
	}

	cfg.Faces = slices.Clone(c.Rules.Faces)
	cfg.OnesWild = c.Rules.OnesWild
	cfg.Iterations = t.Iterations
	cfg.Seed = t.Seed
	cfg.Sampling = sampling
	cfg.Traversal = traversal
	cfg.ExplorationBonus = t.ExplorationBonus
	cfg.AdaptiveCandidates = t.AdaptiveCandidates
	cfg.MaxDepth = t.MaxDepth
	cfg.ConvergenceThreshold = t.ConvergenceThreshold
	cfg.ConvergenceEvery = t.ConvergenceEvery
	cfg.MinIterations = t.MinIterations
	cfg.CheckpointInterval = interval
	cfg.TrackRegret = t.TrackRegret
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// MultiConfig builds the multi-configuration training job. Logger, clock and
// progress reporting are left for the caller.
func (c *Config) MultiConfig() (solver.MultiConfig, error) {
	base, err := c.TrainingConfig()
	if err != nil {
		return solver.MultiConfig{}, err
	}
	return solver.MultiConfig{
		MaxDice:         c.Training.MaxDice,
		Base:            base,
		StorePath:       c.Training.PolicyStore,
		CheckpointDir:   c.Training.CheckpointDir,
		CheckpointEvery: c.Training.CheckpointEvery,
	}, nil
}

// TournamentTimeout parses the per-match timeout.
func (c *Config) TournamentTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Tournament.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout: %w", err)
	}
	return d, nil
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/lox/liarsdice/internal/bot"
	"github.com/lox/liarsdice/internal/simulator"
	"github.com/lox/liarsdice/internal/statistics"
)

// TournamentCmd plays every ordered pair of agents and prints a leaderboard.
type TournamentCmd struct {
	Agents   []string `help:"Agents to enter, comma separated (see --list)"`
	Games    int      `help:"Matches per ordered pair"`
	Parallel int      `help:"Matches played concurrently"`
	Seed     int64    `help:"Tournament seed (0 keeps the configured seed)"`
	Dice     int      `help:"Dice per player (0 keeps the configured rules)"`
	Policy   string   `help:"Policy store for the 'policy' agent (defaults to the configured store)"`
	List     bool     `help:"List the available agents and exit"`
}

func (c *TournamentCmd) Run(g *Globals) error {
	if c.List {
		for _, name := range bot.Names() {
			fmt.Println(name)
		}
		fmt.Println(policyAgent)
		return nil
	}

	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	t := cfg.Tournament
	agents := t.Agents
	if len(c.Agents) > 0 {
		agents = c.Agents
	}
	games := t.GamesPerPair
	if c.Games > 0 {
		games = c.Games
	}
	parallel := t.Parallel
	if c.Parallel > 0 {
		parallel = c.Parallel
	}
	seed := t.Seed
	if c.Seed != 0 {
		seed = c.Seed
	}
	rules := cfg.GameConfig()
	if c.Dice > 0 {
		rules.DicePerPlayer = c.Dice
		rules.DiceDistribution = nil
	}
	store := cfg.Training.PolicyStore
	if c.Policy != "" {
		store = c.Policy
	}

	registry, err := newRegistry(agents, store, logger)
	if err != nil {
		return err
	}
	timeout, err := cfg.TournamentTimeout()
	if err != nil {
		return err
	}
	sim := simulator.New(simulator.Config{
		Rules:           rules,
		MaxIllegalMoves: t.MaxIllegalMoves,
		MaxRounds:       t.MaxRounds,
		Timeout:         timeout,
		Logger:          logger,
	})

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	matches := len(agents) * (len(agents) - 1) * games
	logger.Info("Starting tournament",
		"agents", agents,
		"matches", humanize.Comma(int64(matches)),
		"parallel", parallel,
		"dice", rules.Distribution())

	start := time.Now()
	table, err := sim.RunTournament(ctx, simulator.TournamentConfig{
		Agents:       agents,
		GamesPerPair: games,
		Parallel:     parallel,
		Seed:         seed,
		Registry:     registry,
	})
	if err != nil {
		return err
	}
	if err := table.Validate(); err != nil {
		return fmt.Errorf("tournament statistics: %w", err)
	}

	logger.Info("Tournament complete", "duration", time.Since(start).Round(time.Millisecond))
	fmt.Fprint(os.Stdout, table.Summary())

	board := table.Leaderboard()
	if len(board) < 2 {
		return nil
	}
	first, _ := table.Get(board[0].Agent)
	second, _ := table.Get(board[1].Agent)
	cmp := statistics.Compare(first, second)
	fmt.Fprintf(os.Stdout, "\n%s vs %s: %+.1f%% win rate (p=%.4f, %s; effect %s)\n",
		board[0].Agent, board[1].Agent, cmp.Difference*100, cmp.PValue,
		statistics.InterpretPValue(cmp.PValue, 0.05), statistics.InterpretEffectSize(cmp.EffectSize))
	return nil
}

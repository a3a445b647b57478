package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lox/liarsdice/internal/game"
	"github.com/lox/liarsdice/internal/randutil"
	"github.com/lox/liarsdice/internal/simulator"
)

// PlayCmd plays one match and prints its event log.
type PlayCmd struct {
	Agent0 string `default:"probability_minraise" help:"Agent in seat 0 (opens every round)"`
	Agent1 string `default:"conservative" help:"Agent in seat 1"`
	Dice   int    `help:"Dice per player (0 keeps the configured rules)"`
	Seed   int64  `help:"Match seed (0 keeps the configured seed)"`
	Policy string `help:"Policy store for the 'policy' agent (defaults to the configured store)"`
	Quiet  bool   `help:"Only print the result"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	rules := cfg.GameConfig()
	if c.Dice > 0 {
		rules.DicePerPlayer = c.Dice
		rules.DiceDistribution = nil
	}
	seed := rules.RNGSeed
	if c.Seed != 0 {
		seed = c.Seed
	}
	seed = randutil.Resolve(seed)

	store := cfg.Training.PolicyStore
	if c.Policy != "" {
		store = c.Policy
	}
	names := []string{c.Agent0, c.Agent1}
	registry, err := newRegistry(names, store, logger)
	if err != nil {
		return err
	}
	var agents [2]game.Agent
	for seat, name := range names {
		agent, err := registry.New(name, randutil.New(randutil.Derive(seed, seat+1)))
		if err != nil {
			return err
		}
		agents[seat] = agent
	}

	timeout, err := cfg.TournamentTimeout()
	if err != nil {
		return err
	}
	sim := simulator.New(simulator.Config{
		Rules:           rules,
		MaxIllegalMoves: cfg.Tournament.MaxIllegalMoves,
		MaxRounds:       cfg.Tournament.MaxRounds,
		Timeout:         timeout,
		Logger:          logger,
	})

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	logger.Info("Starting match", "seat0", c.Agent0, "seat1", c.Agent1, "dice", rules.Distribution(), "seed", seed)
	res, err := sim.PlayMatch(ctx, agents, seed)
	if err != nil {
		return err
	}

	if !c.Quiet {
		writeEvents(os.Stdout, res.Events, names)
	}
	fmt.Fprintf(os.Stdout, "\n%s wins after %d rounds (%s), dice left %d-%d\n",
		names[res.Winner], res.Rounds, res.EndReason, res.DiceLeft[0], res.DiceLeft[1])
	return nil
}

// writeEvents renders a match transcript, one line per event.
func writeEvents(w io.Writer, records []game.Record, names []string) {
	for _, rec := range records {
		switch ev := rec.Event.(type) {
		case game.RoundStarted:
			fmt.Fprintf(w, "\n== Round %d (dice %v)\n", ev.RoundIndex+1, ev.DiceCounts)
		case game.DiceRolled:
			for p, dice := range ev.Dice {
				fmt.Fprintf(w, "   %s rolls %v\n", names[p], dice)
			}
		case game.BidPlaced:
			fmt.Fprintf(w, "   %s bids %s\n", names[ev.Player], ev.Bid)
		case game.LiarCalled:
			fmt.Fprintf(w, "   %s calls liar on %s\n", names[ev.Caller], ev.Bid)
		case game.DiceRevealed:
			// Dice were already shown when rolled.
		case game.RoundEnded:
			verdict := "false"
			if ev.WasTrue {
				verdict = "true"
			}
			fmt.Fprintf(w, "   bid was %s (%d matching); %s loses a die\n", verdict, ev.MatchCount, names[ev.Loser])
		}
	}
}

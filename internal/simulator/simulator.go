package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lox/liarsdice/internal/bot"
	"github.com/lox/liarsdice/internal/game"
	"github.com/lox/liarsdice/internal/randutil"
	"github.com/lox/liarsdice/internal/statistics"
)

// Config holds configuration for running matches
type Config struct {
	Rules game.Config
	// MaxIllegalMoves is how many rejected actions a player may submit in a
	// single turn before the simulator plays a forced move for them.
	MaxIllegalMoves int
	// MaxRounds caps a match; the player with more dice left wins.
	MaxRounds int
	// Timeout bounds a single match. Zero means no limit.
	Timeout time.Duration
	Logger  *log.Logger
	Clock   quartz.Clock
}

const (
	defaultMaxIllegalMoves = 3
	defaultMaxRounds       = 1000
)

// Simulator plays rounds, matches and tournaments between agents.
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.MaxIllegalMoves <= 0 {
		config.MaxIllegalMoves = defaultMaxIllegalMoves
	}
	if config.MaxRounds <= 0 {
		config.MaxRounds = defaultMaxRounds
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	return &Simulator{config: config}
}

// RoundResult summarises one round.
type RoundResult struct {
	Round      int
	Winner     int
	Loser      int
	Caller     int
	Bid        game.Bid
	WasTrue    bool
	MatchCount int
	Bids       [2]int
	// IllegalMoves counts rejected actions per player.
	IllegalMoves [2]int
	// Forced is set when a forced move was substituted for either player.
	Forced bool
}

// PlayRound starts a round on eng and drives it to the end. Rejected actions
// are retried; after MaxIllegalMoves rejections in one turn the player is made
// to call liar, or to open with the minimum bid when there is nothing to
// challenge.
func (s *Simulator) PlayRound(ctx context.Context, eng *game.Engine, agents [2]game.Agent) (RoundResult, error) {
	eng.StartRound()
	var result RoundResult
	rejected := 0

	for !eng.IsTerminal() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		pub := eng.Public()
		player := pub.CurrentPlayer
		action := agents[player].ChooseAction(eng.View(player))

		err := eng.ApplyAction(player, action)
		if err == nil {
			rejected = 0
			continue
		}
		if !errors.Is(err, game.ErrIllegalMove) && !errors.Is(err, game.ErrValidation) {
			return result, fmt.Errorf("round %d: %w", pub.RoundIndex, err)
		}

		result.IllegalMoves[player]++
		rejected++
		s.config.Logger.Debug("Rejected action", "round", pub.RoundIndex, "player", player, "action", action, "error", err)
		if rejected < s.config.MaxIllegalMoves {
			continue
		}

		forced := forcedAction(eng.View(player))
		s.config.Logger.Warn("Forcing move after repeated illegal actions",
			"round", pub.RoundIndex,
			"player", player,
			"attempts", rejected,
			"forced", forced)
		if err := eng.ApplyAction(player, forced); err != nil {
			return result, fmt.Errorf("round %d: forced %s rejected: %w", pub.RoundIndex, forced, err)
		}
		result.Forced = true
		rejected = 0
	}

	for _, ev := range eng.PopEvents() {
		switch ev := ev.(type) {
		case game.BidPlaced:
			result.Bids[ev.Player]++
		case game.LiarCalled:
			result.Caller = ev.Caller
		case game.RoundEnded:
			result.Round = ev.RoundIndex
			result.Winner = ev.Winner
			result.Loser = ev.Loser
			result.Bid = ev.Bid
			result.WasTrue = ev.WasTrue
			result.MatchCount = ev.MatchCount
		}
	}
	return result, nil
}

func forcedAction(view game.View) game.Action {
	if view.LastBid() != nil {
		return game.CallLiar()
	}
	return game.BidAction(1, view.Config.Faces[0])
}

// EndReason explains why a match stopped.
type EndReason string

const (
	EndEliminated EndReason = "eliminated"
	EndMaxRounds  EndReason = "max_rounds"
)

// MatchResult summarises a match.
type MatchResult struct {
	MatchID      uuid.UUID
	Seed         int64
	Winner       int
	Rounds       int
	Bids         [2]int
	Calls        [2]int
	CaughtBluffs [2]int
	IllegalMoves [2]int
	DiceLeft     [2]int
	EndReason    EndReason
	Events       []game.Record
}

// PlayMatch plays rounds until a player runs out of dice. The loser of each
// round loses one die.
func (s *Simulator) PlayMatch(ctx context.Context, agents [2]game.Agent, seed int64) (MatchResult, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	rules := s.config.Rules.Clone()
	rules.RNGSeed = seed
	recorder := game.NewRecorder(s.config.Clock)
	eng, err := game.NewEngine(rules,
		game.WithLogger(s.config.Logger),
		game.WithSubscriber(recorder))
	if err != nil {
		return MatchResult{}, err
	}

	result := MatchResult{MatchID: recorder.MatchID(), Seed: seed, Winner: game.NoPlayer}
	lastWinner := game.NoPlayer
	for result.Rounds < s.config.MaxRounds {
		round, err := s.PlayRound(ctx, eng, agents)
		if err != nil {
			return result, fmt.Errorf("match %s: %w", result.MatchID, err)
		}
		result.Rounds++
		lastWinner = round.Winner
		for p := range 2 {
			result.Bids[p] += round.Bids[p]
			result.IllegalMoves[p] += round.IllegalMoves[p]
		}
		result.Calls[round.Caller]++
		if !round.WasTrue {
			result.CaughtBluffs[round.Caller]++
		}

		counts := eng.Public().DiceCounts
		counts[round.Loser]--
		if counts[round.Loser] == 0 {
			result.Winner = round.Winner
			result.EndReason = EndEliminated
			copy(result.DiceLeft[:], counts)
			break
		}
		if err := eng.SetDiceCounts(counts); err != nil {
			return result, err
		}
	}

	if result.EndReason == "" {
		copy(result.DiceLeft[:], eng.Public().DiceCounts)
		result.EndReason = EndMaxRounds
		switch {
		case result.DiceLeft[0] > result.DiceLeft[1]:
			result.Winner = 0
		case result.DiceLeft[1] > result.DiceLeft[0]:
			result.Winner = 1
		default:
			result.Winner = lastWinner
		}
	}
	result.Events = recorder.Records()

	s.config.Logger.Debug("Match finished",
		"match", result.MatchID,
		"winner", result.Winner,
		"rounds", result.Rounds,
		"reason", result.EndReason)
	return result, nil
}

// TournamentConfig describes a round-robin tournament.
type TournamentConfig struct {
	Agents []string
	// GamesPerPair is the number of matches for every ordered pair, so each
	// pairing is played from both seats.
	GamesPerPair int
	// Parallel bounds concurrently running matches; zero means one.
	Parallel int
	Seed     int64
	// Registry resolves agent names; nil uses the built-in agents.
	Registry *bot.Registry
}

type pairing struct {
	seats [2]string
	seed  int64
}

// RunTournament plays every ordered pair of distinct agents and aggregates
// the results. Each match owns its engine and agents.
func (s *Simulator) RunTournament(ctx context.Context, tc TournamentConfig) (*statistics.Table, error) {
	if len(tc.Agents) < 2 {
		return nil, errors.New("tournament needs at least two agents")
	}
	if tc.GamesPerPair < 1 {
		return nil, errors.New("games per pair must be >= 1")
	}
	registry := tc.Registry
	if registry == nil {
		registry = bot.NewRegistry(nil)
	}
	for _, name := range tc.Agents {
		if !registry.Has(name) {
			return nil, fmt.Errorf("unknown agent %q", name)
		}
	}
	seed := randutil.Resolve(tc.Seed)

	var matches []pairing
	for i, a := range tc.Agents {
		for j, b := range tc.Agents {
			if i == j {
				continue
			}
			for range tc.GamesPerPair {
				matches = append(matches, pairing{
					seats: [2]string{a, b},
					seed:  randutil.Derive(seed, len(matches)),
				})
			}
		}
	}

	results := make([]MatchResult, len(matches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(tc.Parallel, 1))
	for i, m := range matches {
		g.Go(func() error {
			var agents [2]game.Agent
			for seat, name := range m.seats {
				agent, err := registry.New(name, randutil.New(randutil.Derive(m.seed, seat+1)))
				if err != nil {
					return err
				}
				agents[seat] = agent
			}
			res, err := s.PlayMatch(gctx, agents, m.seed)
			if err != nil {
				return fmt.Errorf("%s vs %s: %w", m.seats[0], m.seats[1], err)
			}
			res.Events = nil
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table := statistics.NewTable()
	for i, m := range matches {
		res := results[i]
		for seat := range 2 {
			table.Add(statistics.MatchResult{
				Agent:        m.seats[seat],
				Opponent:     m.seats[1-seat],
				Seat:         seat,
				Seed:         res.Seed,
				Won:          res.Winner == seat,
				Rounds:       res.Rounds,
				Bids:         res.Bids[seat],
				Calls:        res.Calls[seat],
				CaughtBluffs: res.CaughtBluffs[seat],
				IllegalMoves: res.IllegalMoves[seat],
				DiceLeft:     res.DiceLeft[seat],
			})
		}
	}
	s.config.Logger.Info("Tournament finished",
		"agents", slices.Clone(tc.Agents),
		"matches", len(matches))
	return table, nil
}

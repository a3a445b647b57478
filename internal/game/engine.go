package game

import (
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
)

// Snapshot records the state after one transition.
type Snapshot struct {
	// Actor is NoPlayer for round starts.
	Actor  int
	Action *Action
	Public PublicState
}

// Engine runs Liar's Dice rounds for two players. It is not safe for
// concurrent use.
type Engine struct {
	cfg     Config
	state   GameState
	roller  DiceSource
	logger  *log.Logger
	bus     EventBus
	events  []Event
	pending int
	turnLog []Snapshot
}

// Option configures an Engine during creation.
type Option func(*Engine)

// WithLogger sets the logger; the default discards output.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithRoller replaces the seeded dice roller.
func WithRoller(r DiceSource) Option {
	return func(e *Engine) { e.roller = r }
}

// WithEventBus replaces the default in-memory bus.
func WithEventBus(bus EventBus) Option {
	return func(e *Engine) { e.bus = bus }
}

// WithSubscriber subscribes s to the engine's events.
func WithSubscriber(s EventSubscriber) Option {
	return func(e *Engine) { e.bus.Subscribe(s) }
}

// WithDiceCounts overrides the configured distribution for the first round.
func WithDiceCounts(counts []int) Option {
	return func(e *Engine) {
		e.state.Public.DiceCounts = slices.Clone(counts)
		for i := range e.state.Players {
			if i < len(counts) {
				e.state.Players[i].NumDice = counts[i]
			}
		}
	}
}

// WithAgentIDs labels the seats, for logs only.
func WithAgentIDs(ids ...string) Option {
	return func(e *Engine) {
		for i := range e.state.Players {
			if i < len(ids) {
				e.state.Players[i].AgentID = ids[i]
			}
		}
	}
}

// NewEngine validates cfg and creates an engine in StatusNotStarted.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Clone()
	if cfg.BidOrdering == "" {
		cfg.BidOrdering = OrderQuantityThenFace
	}

	counts := cfg.Distribution()
	players := make([]PlayerState, cfg.NumPlayers)
	for i := range players {
		players[i] = PlayerState{PlayerID: i, NumDice: counts[i]}
	}

	e := &Engine{
		cfg: cfg,
		state: GameState{
			Config:  cfg,
			Players: players,
			Public: PublicState{
				DiceCounts: counts,
				Status:     StatusNotStarted,
				Winner:     NoPlayer,
				Loser:      NoPlayer,
			},
		},
		logger: log.New(io.Discard),
		bus:    NewEventBus(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.roller == nil {
		e.roller = NewRoller(cfg.RNGSeed, cfg.Faces)
	}
	return e, nil
}

// Config returns the engine's rules with the current dice counts.
func (e *Engine) Config() Config {
	return e.cfg.WithDiceCounts(e.state.Public.DiceCounts)
}

// SetDiceCounts changes per-player dice counts between rounds.
func (e *Engine) SetDiceCounts(counts []int) error {
	if e.state.Public.Status == StatusBidding {
		return fmt.Errorf("%w: cannot change dice counts mid-round", ErrIllegalMove)
	}
	if len(counts) != len(e.state.Players) {
		return fmt.Errorf("%w: expected %d dice counts, got %d", ErrInvalidConfig, len(e.state.Players), len(counts))
	}
	for i, n := range counts {
		if n < 1 {
			return &ValidationError{Field: fmt.Sprintf("dice count for player %d", i), Value: n, Min: 1, Max: MaxDiceCount}
		}
	}
	e.state.Public.DiceCounts = slices.Clone(counts)
	for i := range e.state.Players {
		e.state.Players[i].NumDice = counts[i]
	}
	return nil
}

// MaxDiceCount bounds per-player dice counts accepted by SetDiceCounts.
const MaxDiceCount = 1 << 16

// StartRound rolls fresh dice and opens bidding with player 0. It is valid
// in any state.
func (e *Engine) StartRound() {
	pub := &e.state.Public
	pub.RoundIndex++
	pub.TurnIndex = 0
	pub.CurrentPlayer = 0
	pub.LastBid = nil
	pub.BidHistory = nil
	pub.Status = StatusBidding
	pub.Winner = NoPlayer
	pub.Loser = NoPlayer

	for i := range e.state.Players {
		e.state.Players[i].PrivateDice = e.roller.RollN(e.state.Players[i].NumDice)
	}

	e.logger.Debug("Starting round", "round", pub.RoundIndex, "dice", pub.DiceCounts)
	e.emit(RoundStarted{RoundIndex: pub.RoundIndex, DiceCounts: slices.Clone(pub.DiceCounts)})
	e.emit(DiceRolled{RoundIndex: pub.RoundIndex, Dice: e.state.AllDice()})
	e.snapshot(NoPlayer, nil)
}

// ApplyAction applies player's action. Errors are returned before any state
// changes: *IllegalMoveError for moves the current state forbids and
// *ValidationError for malformed bids.
func (e *Engine) ApplyAction(player int, action Action) error {
	pub := &e.state.Public
	if pub.Status != StatusBidding {
		return &IllegalMoveError{Player: player, Action: action, Reason: ReasonNotBidding, Detail: "round is " + pub.Status.String()}
	}
	if player != pub.CurrentPlayer {
		return &IllegalMoveError{Player: player, Action: action, Reason: ReasonWrongTurn, Detail: fmt.Sprintf("player %d to act", pub.CurrentPlayer)}
	}

	switch action.Kind {
	case ActionBid:
		return e.placeBid(player, action)
	case ActionCallLiar:
		return e.callLiar(player, action)
	default:
		return &IllegalMoveError{Player: player, Action: action, Reason: ReasonUnknownAction}
	}
}

func (e *Engine) placeBid(player int, action Action) error {
	pub := &e.state.Public
	bid := action.Bid
	if err := bid.Validate(e.Config()); err != nil {
		return fmt.Errorf("player %d bid %s: %w", player, bid, err)
	}
	if !bid.IsHigherThan(pub.LastBid) {
		return &IllegalMoveError{Player: player, Action: action, Reason: ReasonNotHigher, Detail: fmt.Sprintf("%s does not beat %s", bid, *pub.LastBid)}
	}
	if e.cfg.MaxTurns > 0 && pub.TurnIndex+1 > e.cfg.MaxTurns {
		return &IllegalMoveError{Player: player, Action: action, Reason: ReasonTurnLimit, Detail: fmt.Sprintf("turn limit %d reached", e.cfg.MaxTurns)}
	}

	b := bid
	pub.LastBid = &b
	pub.BidHistory = append(pub.BidHistory, bid)
	pub.TurnIndex++
	pub.CurrentPlayer = e.nextPlayer(player)

	e.logger.Debug("Bid placed", "round", pub.RoundIndex, "player", player, "bid", bid)
	e.emit(BidPlaced{RoundIndex: pub.RoundIndex, TurnIndex: pub.TurnIndex, Player: player, Bid: bid})
	e.snapshot(player, &action)
	return nil
}

func (e *Engine) callLiar(player int, action Action) error {
	pub := &e.state.Public
	if pub.LastBid == nil {
		return &IllegalMoveError{Player: player, Action: action, Reason: ReasonNoBid, Detail: "no bid to challenge"}
	}
	bid := *pub.LastBid
	e.emit(LiarCalled{RoundIndex: pub.RoundIndex, Caller: player, Bid: bid})

	dice := e.state.AllDice()
	e.emit(DiceRevealed{RoundIndex: pub.RoundIndex, Dice: dice})

	matches, wasTrue := Resolve(dice, bid, e.cfg.OnesWild)
	other := e.nextPlayer(player)
	if wasTrue {
		pub.Winner, pub.Loser = other, player
	} else {
		pub.Winner, pub.Loser = player, other
	}
	pub.Status = StatusEnded

	e.logger.Debug("Liar called",
		"round", pub.RoundIndex,
		"caller", player,
		"bid", bid,
		"matches", matches,
		"was_true", wasTrue,
		"winner", pub.Winner)
	e.emit(RoundEnded{
		RoundIndex: pub.RoundIndex,
		Winner:     pub.Winner,
		Loser:      pub.Loser,
		Bid:        bid,
		MatchCount: matches,
		WasTrue:    wasTrue,
	})
	e.snapshot(player, &action)
	return nil
}

func (e *Engine) nextPlayer(p int) int {
	return (p + 1) % len(e.state.Players)
}

func (e *Engine) emit(ev Event) {
	e.events = append(e.events, ev)
	e.bus.Publish(ev)
}

func (e *Engine) snapshot(actor int, action *Action) {
	var a *Action
	if action != nil {
		c := *action
		a = &c
	}
	e.turnLog = append(e.turnLog, Snapshot{Actor: actor, Action: a, Public: e.state.Public.Clone()})
}

// View returns what player may observe.
func (e *Engine) View(player int) View {
	var dice []int
	if player >= 0 && player < len(e.state.Players) {
		dice = slices.Clone(e.state.Players[player].PrivateDice)
	}
	return View{
		PlayerID: player,
		Public:   e.state.Public.Clone(),
		MyDice:   dice,
		Config:   e.Config(),
	}
}

// Public returns a copy of the public state.
func (e *Engine) Public() PublicState { return e.state.Public.Clone() }

// State returns a deep copy of the full state, including private dice.
func (e *Engine) State() GameState { return e.state.Clone() }

// IsTerminal reports whether the current round has ended.
func (e *Engine) IsTerminal() bool { return e.state.Public.Status == StatusEnded }

// Events returns every event emitted so far.
func (e *Engine) Events() []Event { return slices.Clone(e.events) }

// PopEvents returns events emitted since the previous call.
func (e *Engine) PopEvents() []Event {
	out := slices.Clone(e.events[e.pending:])
	e.pending = len(e.events)
	return out
}

// TurnLog returns a snapshot per transition across all rounds.
func (e *Engine) TurnLog() []Snapshot { return slices.Clone(e.turnLog) }

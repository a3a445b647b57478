// Package game implements the two-player Liar's Dice round engine.
//
// The main type is Engine, a strict finite-state machine that owns the dice,
// enforces bid and challenge legality, resolves a called bid against the
// revealed dice and emits an ordered stream of events.
//
// # Basic Usage
//
//	eng, err := game.NewEngine(game.DefaultConfig(), game.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	eng.StartRound()
//	_ = eng.ApplyAction(0, game.BidAction(2, 5))
//	_ = eng.ApplyAction(1, game.CallLiar())
//	winner, loser := eng.Public().Winner, eng.Public().Loser
//
// # Deterministic Testing
//
// Dice come from a Roller seeded by Config.RNGSeed. Inject a Roller with
// WithRoller to control dice directly, and subscribe to events with
// WithSubscriber to observe transitions.
//
// # Architecture
//
// The engine performs no I/O and never retries or substitutes moves. Agents
// see the game only through a View that hides the opponent's dice. Orchestration
// across rounds (dice loss, illegal-move handling, tournaments) lives in
// internal/simulator.
package game

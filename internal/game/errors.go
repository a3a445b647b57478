package game

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation error")
	// ErrOutOfRange matches validation errors for values outside their allowed range.
	ErrOutOfRange = errors.New("value out of range")
	// ErrIllegalMove matches every *IllegalMoveError.
	ErrIllegalMove = errors.New("illegal move")
	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("invalid config")
)

// ValidationError reports a value outside its permitted range.
type ValidationError struct {
	Field string
	Value int
	Min   int
	Max   int
	// Allowed is set when the value must be one of a discrete set (bid faces).
	Allowed []int
}

func (e *ValidationError) Error() string {
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("%s %d not in %v", e.Field, e.Value, e.Allowed)
	}
	return fmt.Sprintf("%s %d outside [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

// Is lets errors.Is match ErrValidation and ErrOutOfRange.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || target == ErrOutOfRange
}

// Reason classifies why a move was rejected.
type Reason uint8

const (
	ReasonNotBidding Reason = iota + 1
	ReasonWrongTurn
	ReasonNotHigher
	ReasonNoBid
	ReasonTurnLimit
	ReasonUnknownAction
)

func (r Reason) String() string {
	switch r {
	case ReasonNotBidding:
		return "not_bidding"
	case ReasonWrongTurn:
		return "wrong_turn"
	case ReasonNotHigher:
		return "not_higher"
	case ReasonNoBid:
		return "no_bid"
	case ReasonTurnLimit:
		return "turn_limit"
	case ReasonUnknownAction:
		return "unknown_action"
	default:
		return "unknown"
	}
}

// IllegalMoveError reports an action that is well-formed but not allowed in
// the current state.
type IllegalMoveError struct {
	Player int
	Action Action
	Reason Reason
	Detail string
}

func (e *IllegalMoveError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("illegal move by player %d (%s): %s", e.Player, e.Reason, e.Detail)
	}
	return fmt.Sprintf("illegal move by player %d (%s)", e.Player, e.Reason)
}

// Is lets errors.Is match ErrIllegalMove.
func (e *IllegalMoveError) Is(target error) bool {
	return target == ErrIllegalMove
}

// Package engine owns the per-room game state machine: the phase handlers,
// the transition table, and the serial action-processing unit that makes each
// room's traffic strictly ordered.
package engine

import (
	"errors"

	"liap/internal/domain"
)

// ActionType identifies the kind of input a caller submits.
type ActionType string

const (
	ActionJoin           ActionType = "join"
	ActionLeave          ActionType = "leave"
	ActionConnect        ActionType = "connect"
	ActionDisconnect     ActionType = "disconnect"
	ActionStartGame      ActionType = "start_game"
	ActionRedealDecision ActionType = "redeal_decision"
	ActionDeclare        ActionType = "declare"
	ActionPlayPieces     ActionType = "play_pieces"
)

// GameAction is the unit of input. Bot actions travel the same path as human
// ones; IsBot exists for audit only.
type GameAction struct {
	Type     ActionType
	PlayerID string
	Payload  any
	IsBot    bool
}

// RedealDecisionPayload carries a weak-hand holder's accept/decline choice.
type RedealDecisionPayload struct {
	Accept bool
}

// DeclarePayload carries a declared pile count.
type DeclarePayload struct {
	Value int
}

// PlayPiecesPayload carries the pieces submitted for the current turn.
type PlayPiecesPayload struct {
	Pieces []domain.Piece
}

// ActionResult reports whether an action was accepted. A rejected action has
// caused no mutation and emitted no events.
type ActionResult struct {
	Accepted bool
	Err      error
}

var (
	// ErrActionNotAllowed rejects an action type the current phase does not
	// permit. Non-fatal; returned to the sender.
	ErrActionNotAllowed = errors.New("action not allowed in current phase")
	// ErrInvalidTransition marks an internal inconsistency in the phase
	// linkage table. Logged as critical; no transition is applied.
	ErrInvalidTransition = errors.New("invalid phase transition")
	// ErrValidation rejects an action whose payload breaks a game rule.
	// Resubmission is allowed.
	ErrValidation = errors.New("validation failed")
	// ErrRoomClosed rejects submissions to a room whose processing unit has
	// shut down.
	ErrRoomClosed = errors.New("room closed")
)

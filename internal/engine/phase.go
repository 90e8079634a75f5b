package engine

import "liap/internal/domain"

// transition is a phase handler's request to move the machine to a new phase.
// Transitions are evaluated synchronously in the same action cycle, never on
// a timer.
type transition struct {
	to domain.Phase
}

func transitionTo(p domain.Phase) *transition { return &transition{to: p} }

// phaseHandler is the shared contract for the seven phase behaviors. onEnter
// may itself request a follow-up transition, which the machine applies within
// the same cycle (the Turn <-> TurnResults loop relies on this). Handlers are
// stateless; all game state lives on the machine's Game.
type phaseHandler interface {
	phase() domain.Phase
	onEnter(m *Machine) *transition
	onAction(m *Machine, a GameAction) (*transition, error)
	onExit(m *Machine)
}

// legalTransitions is the adjacency map of the phase graph. A handler
// requesting an edge outside this map is an internal fault
// (ErrInvalidTransition), not a player error.
var legalTransitions = map[domain.Phase][]domain.Phase{
	domain.PhaseWaiting:     {domain.PhasePreparation},
	domain.PhasePreparation: {domain.PhaseDeclaration},
	domain.PhaseDeclaration: {domain.PhaseTurn},
	domain.PhaseTurn:        {domain.PhaseTurnResults},
	domain.PhaseTurnResults: {domain.PhaseTurn, domain.PhaseScoring},
	domain.PhaseScoring:     {domain.PhasePreparation, domain.PhaseGameOver},
	domain.PhaseGameOver:    {},
}

// allowedActions is the per-phase allow-list checked before dispatch.
// Connection changes are permitted in every phase and handled by the machine
// directly.
var allowedActions = map[domain.Phase]map[ActionType]bool{
	domain.PhaseWaiting: {
		ActionJoin:      true,
		ActionLeave:     true,
		ActionStartGame: true,
	},
	domain.PhasePreparation: {
		ActionRedealDecision: true,
	},
	domain.PhaseDeclaration: {
		ActionDeclare: true,
	},
	domain.PhaseTurn: {
		ActionPlayPieces: true,
	},
	domain.PhaseTurnResults: {},
	domain.PhaseScoring:     {},
	domain.PhaseGameOver:    {},
}

func transitionLegal(from, to domain.Phase) bool {
	for _, p := range legalTransitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

package engine

import (
	"fmt"

	"liap/internal/domain"
	"liap/internal/event"
)

// declarationHandler collects pile declarations in fixed seat order from the
// round starter. The final declarer loses whichever value would bring the
// table sum to the forbidden total.
type declarationHandler struct{}

func (declarationHandler) phase() domain.Phase { return domain.PhaseDeclaration }

func (declarationHandler) onEnter(m *Machine) *transition {
	g := m.game
	g.DeclareOrder = g.SeatOrderFrom(g.Round.StarterID)
	g.DeclareIndex = 0
	return nil
}

func (declarationHandler) onExit(m *Machine) {}

func (declarationHandler) onAction(m *Machine, a GameAction) (*transition, error) {
	g := m.game
	payload, ok := a.Payload.(DeclarePayload)
	if !ok {
		return nil, fmt.Errorf("%w: declare requires a value payload", ErrValidation)
	}
	if g.DeclareIndex >= len(g.DeclareOrder) || g.DeclareOrder[g.DeclareIndex] != a.PlayerID {
		return nil, fmt.Errorf("%w: not %s's turn to declare", ErrValidation, a.PlayerID)
	}

	p := g.Players[a.PlayerID]
	final := g.DeclareIndex == len(g.DeclareOrder)-1
	if !domain.DeclarationAllowed(payload.Value, g.DeclaredSum(), final, p.ZeroStreak) {
		return nil, fmt.Errorf("%w: declaration %d not allowed for %s", ErrValidation, payload.Value, a.PlayerID)
	}

	p.Declared = payload.Value
	if payload.Value == 0 {
		p.ZeroStreak++
	} else {
		p.ZeroStreak = 0
	}
	g.DeclareIndex++

	next := ""
	if g.DeclareIndex < len(g.DeclareOrder) {
		next = g.DeclareOrder[g.DeclareIndex]
	}
	m.emit(event.TypeDeclarationMade, event.DeclarationMadePayload{
		PlayerID:     a.PlayerID,
		Value:        payload.Value,
		NextPlayerID: next,
	}, nil, nil)

	if next == "" {
		return transitionTo(domain.PhaseTurn), nil
	}
	return nil, nil
}

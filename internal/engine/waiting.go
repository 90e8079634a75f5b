package engine

import (
	"fmt"

	"liap/internal/domain"
	"liap/internal/event"
)

// waitingHandler accumulates players until the table is full and the game is
// started.
type waitingHandler struct{}

func (waitingHandler) phase() domain.Phase { return domain.PhaseWaiting }

func (waitingHandler) onEnter(m *Machine) *transition { return nil }

func (waitingHandler) onExit(m *Machine) {}

func (waitingHandler) onAction(m *Machine, a GameAction) (*transition, error) {
	g := m.game
	switch a.Type {
	case ActionJoin:
		if _, ok := g.Players[a.PlayerID]; ok {
			return nil, fmt.Errorf("%w: player %s already seated", ErrValidation, a.PlayerID)
		}
		seat := -1
		for i, id := range g.Seats {
			if id == "" {
				seat = i
				break
			}
		}
		if seat < 0 {
			return nil, fmt.Errorf("%w: no open seats", ErrValidation)
		}
		g.Seats[seat] = a.PlayerID
		g.Players[a.PlayerID] = &domain.Player{
			ID:        a.PlayerID,
			Seat:      seat,
			Declared:  domain.DeclaredUnset,
			IsBot:     a.IsBot,
			Connected: true,
		}
		m.emit(event.TypePlayerJoined, event.PlayerJoinedPayload{
			PlayerID: a.PlayerID,
			Seat:     seat,
			IsBot:    a.IsBot,
		}, nil, nil)
		return nil, nil

	case ActionLeave:
		p, ok := g.Players[a.PlayerID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown player %s", ErrValidation, a.PlayerID)
		}
		g.Seats[p.Seat] = ""
		delete(g.Players, a.PlayerID)
		m.emit(event.TypePlayerLeft, event.PlayerLeftPayload{PlayerID: a.PlayerID, Seat: p.Seat}, nil, nil)
		return nil, nil

	case ActionStartGame:
		if _, ok := g.Players[a.PlayerID]; !ok {
			return nil, fmt.Errorf("%w: unknown player %s", ErrValidation, a.PlayerID)
		}
		if g.SeatedCount() != domain.PlayerCount {
			return nil, fmt.Errorf("%w: need %d seated players, have %d", ErrValidation, domain.PlayerCount, g.SeatedCount())
		}
		seats := make([]string, 0, domain.PlayerCount)
		for _, id := range g.Seats {
			seats = append(seats, id)
		}
		m.emit(event.TypeGameStarted, event.GameStartedPayload{Seats: seats}, nil, nil)
		return transitionTo(domain.PhasePreparation), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrActionNotAllowed, a.Type)
}

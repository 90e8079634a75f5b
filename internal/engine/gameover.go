package engine

import (
	"fmt"

	"liap/internal/domain"
	"liap/internal/event"
)

// gameOverHandler is terminal: it records the winner set (ties permitted) and
// accepts no further actions.
type gameOverHandler struct{}

func (gameOverHandler) phase() domain.Phase { return domain.PhaseGameOver }

func (gameOverHandler) onEnter(m *Machine) *transition {
	g := m.game
	totals := make(map[string]int, len(g.Players))
	for id, p := range g.Players {
		totals[id] = p.TotalScore
	}
	m.emit(event.TypeGameOver, event.GameOverPayload{
		WinnerIDs: append([]string(nil), g.WinnerIDs...),
		Totals:    totals,
	}, &event.DisplayHint{SuggestedMS: 6000, Skippable: false}, nil)
	return nil
}

func (gameOverHandler) onExit(m *Machine) {}

func (gameOverHandler) onAction(m *Machine, a GameAction) (*transition, error) {
	return nil, fmt.Errorf("%w: game is over", ErrActionNotAllowed)
}

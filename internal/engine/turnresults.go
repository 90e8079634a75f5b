package engine

import (
	"fmt"

	"liap/internal/domain"
	"liap/internal/event"
)

// turnResultsHandler is a purely informational transient phase: it exists to
// carry the resolved turn's outcome payload and immediately requests the next
// phase in the same action cycle. Human-facing pacing is display_hint
// metadata only; the core never waits here.
type turnResultsHandler struct{}

func (turnResultsHandler) phase() domain.Phase { return domain.PhaseTurnResults }

func (turnResultsHandler) onEnter(m *Machine) *transition {
	g := m.game
	piles := make(map[string]int, len(g.Players))
	for id, p := range g.Players {
		piles[id] = p.CapturedCount
	}
	m.emit(event.TypeTurnResolved, event.TurnResolvedPayload{
		TurnNumber: g.Turn.Number,
		WinnerID:   g.Turn.WinnerID,
		Captured:   g.Turn.RequiredCount,
		PileCounts: piles,
	}, &event.DisplayHint{SuggestedMS: 2500, Skippable: true}, nil)

	if g.AllHandsEmpty() {
		return transitionTo(domain.PhaseScoring)
	}
	return transitionTo(domain.PhaseTurn)
}

func (turnResultsHandler) onExit(m *Machine) {}

func (turnResultsHandler) onAction(m *Machine, a GameAction) (*transition, error) {
	return nil, fmt.Errorf("%w: turn results accept no actions", ErrActionNotAllowed)
}

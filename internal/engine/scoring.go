package engine

import (
	"fmt"

	"liap/internal/domain"
	"liap/internal/event"
)

// scoringHandler converts the round's declarations and captures into score
// deltas, applies the redeal multiplier, and decides continuation.
type scoringHandler struct{}

func (scoringHandler) phase() domain.Phase { return domain.PhaseScoring }

func (scoringHandler) onEnter(m *Machine) *transition {
	g := m.game
	entries := make([]event.ScoreEntry, 0, len(g.Players))
	for _, id := range g.SeatOrderFrom(g.Round.StarterID) {
		p := g.Players[id]
		delta := domain.RoundScore(p.Declared, p.CapturedCount, g.Round.RedealMultiplier)
		p.TotalScore += delta
		entries = append(entries, event.ScoreEntry{
			PlayerID: id,
			Declared: p.Declared,
			Captured: p.CapturedCount,
			Delta:    delta,
			Total:    p.TotalScore,
		})
	}
	m.emit(event.TypeRoundScored, event.RoundScoredPayload{
		RoundNumber: g.Round.Number,
		Multiplier:  g.Round.RedealMultiplier,
		Entries:     entries,
	}, &event.DisplayHint{SuggestedMS: 4000, Skippable: true}, nil)

	best := 0
	for _, p := range g.Players {
		if p.TotalScore > best {
			best = p.TotalScore
		}
	}
	if best >= m.cfg.WinScore {
		g.WinnerIDs = nil
		for _, id := range g.SeatOrderFrom(g.Seats[0]) {
			if g.Players[id].TotalScore == best {
				g.WinnerIDs = append(g.WinnerIDs, id)
			}
		}
		return transitionTo(domain.PhaseGameOver)
	}
	return transitionTo(domain.PhasePreparation)
}

func (scoringHandler) onExit(m *Machine) {}

func (scoringHandler) onAction(m *Machine, a GameAction) (*transition, error) {
	return nil, fmt.Errorf("%w: scoring accepts no actions", ErrActionNotAllowed)
}

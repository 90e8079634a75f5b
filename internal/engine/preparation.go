package engine

import (
	"fmt"

	"liap/internal/domain"
	"liap/internal/event"
)

// preparationHandler deals hands and runs the strictly sequential redeal
// decision protocol: one weak-hand holder decides at a time; acceptance
// re-deals everything and restarts the check, a decline advances the queue.
type preparationHandler struct{}

func (preparationHandler) phase() domain.Phase { return domain.PhasePreparation }

func (h preparationHandler) onEnter(m *Machine) *transition {
	g := m.game

	number := 1
	if g.Round != nil {
		number = g.Round.Number + 1
	}
	starter := g.Seats[0]
	if g.LastTurnWinnerID != "" {
		if _, ok := g.Players[g.LastTurnWinnerID]; ok {
			starter = g.LastTurnWinnerID
		}
	}
	g.Round = &domain.Round{Number: number, StarterID: starter, RedealMultiplier: 1}
	g.Turn = nil
	g.RedealQueue = nil
	g.DeclareOrder = nil
	g.DeclareIndex = 0
	for _, p := range g.Players {
		p.Declared = domain.DeclaredUnset
		p.CapturedCount = 0
	}
	m.emit(event.TypeRoundStarted, event.RoundStartedPayload{
		Number:     number,
		StarterID:  starter,
		Multiplier: 1,
	}, nil, nil)

	h.deal(m)
	return h.offerOrAdvance(m, true)
}

func (preparationHandler) onExit(m *Machine) {}

func (h preparationHandler) onAction(m *Machine, a GameAction) (*transition, error) {
	g := m.game
	payload, ok := a.Payload.(RedealDecisionPayload)
	if !ok {
		return nil, fmt.Errorf("%w: redeal decision requires a decision payload", ErrValidation)
	}
	if len(g.RedealQueue) == 0 || g.RedealQueue[0] != a.PlayerID {
		return nil, fmt.Errorf("%w: no pending redeal decision for player %s", ErrValidation, a.PlayerID)
	}

	if payload.Accept {
		g.Round.RedealMultiplier++
		g.RedealQueue = nil
		m.emit(event.TypeRedealAccepted, event.RedealAcceptedPayload{
			PlayerID:   a.PlayerID,
			Multiplier: g.Round.RedealMultiplier,
		}, nil, nil)
		h.deal(m)
		return h.offerOrAdvance(m, true), nil
	}

	g.RedealQueue = g.RedealQueue[1:]
	m.emit(event.TypeRedealDeclined, event.RedealDeclinedPayload{PlayerID: a.PlayerID}, nil, nil)
	return h.offerOrAdvance(m, false), nil
}

// deal reshuffles the full set and deals a fresh hand to every seated player.
// Hands travel on targeted hand_dealt events so the log alone can rebuild
// them.
func (preparationHandler) deal(m *Machine) {
	g := m.game
	deck := domain.ShuffleDeck(m.rng, domain.NewDeck())
	idx := 0
	for _, id := range g.SeatOrderFrom(g.Round.StarterID) {
		p := g.Players[id]
		hand := append([]domain.Piece(nil), deck[idx:idx+domain.HandSize]...)
		domain.SortHand(hand)
		p.Hand = hand
		idx += domain.HandSize
		m.emit(event.TypeHandDealt, event.HandDealtPayload{PlayerID: id, Hand: hand}, nil, []string{id})
	}
}

// offerOrAdvance emits the next redeal offer or requests Declaration. After
// a deal (fresh or accepted redeal) the weak-hand queue is recomputed unless
// the acceptance cap is exhausted; after a decline the existing queue simply
// advances. The multiplier strictly increases per acceptance and the cap
// bounds acceptances, so the protocol terminates.
func (preparationHandler) offerOrAdvance(m *Machine, recompute bool) *transition {
	g := m.game
	if recompute {
		g.RedealQueue = nil
		redeals := g.Round.RedealMultiplier - 1
		if redeals < m.cfg.MaxRedeals {
			g.RedealQueue = domain.WeakPlayers(g, m.cfg.WeakHandThreshold)
		}
	}
	if len(g.RedealQueue) == 0 {
		return transitionTo(domain.PhaseDeclaration)
	}
	m.emit(event.TypeRedealOffered, event.RedealOfferedPayload{
		PlayerID: g.RedealQueue[0],
		Pending:  append([]string(nil), g.RedealQueue...),
	}, nil, nil)
	return nil
}

package engine

import (
	"fmt"

	"liap/internal/domain"
	"liap/internal/event"
)

// turnHandler runs trick play. The opener fixes the piece count and play
// type; every other seat follows with exactly that count. Follower
// submissions need not form valid combinations; invalid plays simply cannot
// win. Resolution happens immediately after the last expected play.
type turnHandler struct{}

func (turnHandler) phase() domain.Phase { return domain.PhaseTurn }

func (turnHandler) onEnter(m *Machine) *transition { return nil }

func (turnHandler) onExit(m *Machine) {}

func (turnHandler) onAction(m *Machine, a GameAction) (*transition, error) {
	g := m.game
	payload, ok := a.Payload.(PlayPiecesPayload)
	if !ok {
		return nil, fmt.Errorf("%w: play requires a pieces payload", ErrValidation)
	}
	expected := g.PendingActorID()
	if expected == "" || expected != a.PlayerID {
		return nil, fmt.Errorf("%w: not %s's turn to play", ErrValidation, a.PlayerID)
	}

	p := g.Players[a.PlayerID]
	pieces := payload.Pieces
	opener := g.Turn == nil || g.Turn.Resolved()
	playType := domain.ClassifyPlay(pieces)

	if opener {
		if len(pieces) < 1 || len(pieces) > domain.MaxPlaySize || len(pieces) > len(p.Hand) {
			return nil, fmt.Errorf("%w: opening play must use 1-%d pieces from hand", ErrValidation, domain.MaxPlaySize)
		}
		if playType == domain.PlayInvalid {
			return nil, fmt.Errorf("%w: opening play must be a valid combination", ErrValidation)
		}
	} else if len(pieces) != g.Turn.RequiredCount {
		return nil, fmt.Errorf("%w: turn requires exactly %d pieces", ErrValidation, g.Turn.RequiredCount)
	}
	hand, held := domain.RemovePieces(p.Hand, pieces)
	if !held {
		return nil, fmt.Errorf("%w: pieces not in hand", ErrValidation)
	}

	if opener {
		number := 1
		if g.Turn != nil {
			number = g.Turn.Number + 1
		}
		g.Turn = &domain.Turn{
			Number:        number,
			OpenerID:      a.PlayerID,
			RequiredCount: len(pieces),
			OpenerType:    playType,
		}
	}
	p.Hand = hand
	g.Turn.Plays = append(g.Turn.Plays, domain.TurnPlay{
		PlayerID: a.PlayerID,
		Pieces:   append([]domain.Piece(nil), pieces...),
		Valid:    playType != domain.PlayInvalid,
		Type:     playType,
	})

	m.emit(event.TypePiecesPlayed, event.PiecesPlayedPayload{
		PlayerID:      a.PlayerID,
		TurnNumber:    g.Turn.Number,
		Pieces:        pieces,
		Type:          playType,
		Valid:         playType != domain.PlayInvalid,
		Opener:        opener,
		RequiredCount: g.Turn.RequiredCount,
		NextPlayerID:  g.PendingActorID(),
	}, nil, nil)

	if len(g.Turn.Plays) == len(g.SeatOrderFrom(g.Turn.OpenerID)) {
		winnerID := domain.ResolveTurn(g.Turn)
		g.Turn.WinnerID = winnerID
		g.LastTurnWinnerID = winnerID
		g.Players[winnerID].CapturedCount += g.Turn.RequiredCount
		return transitionTo(domain.PhaseTurnResults), nil
	}
	return nil, nil
}

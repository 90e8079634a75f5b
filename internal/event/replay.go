package event

import (
	"liap/internal/domain"
)

// Replay folds a room's event log into game state. It is a pure,
// deterministic function of the log: replaying the same events always yields
// the same state, and the result matches the live state captured at the last
// sequence. Returns a RecoveryError when the log is not contiguous or a
// payload cannot be decoded.
func Replay(roomID string, events []Event) (*domain.Game, uint64, error) {
	g := domain.NewGame()
	var last uint64
	for _, ev := range events {
		if ev.Seq != last+1 {
			return nil, 0, &RecoveryError{RoomID: roomID, Reason: "sequence gap"}
		}
		last = ev.Seq
		if err := apply(roomID, g, ev); err != nil {
			return nil, 0, err
		}
	}
	return g, last, nil
}

func apply(roomID string, g *domain.Game, ev Event) error {
	fail := func(reason string, err error) error {
		return &RecoveryError{RoomID: roomID, Reason: reason, Err: err}
	}

	switch ev.Type {
	case TypePlayerJoined:
		var p PlayerJoinedPayload
		if err := ev.Decode(&p); err != nil {
			return fail("decode player_joined", err)
		}
		g.Players[p.PlayerID] = &domain.Player{
			ID:        p.PlayerID,
			Seat:      p.Seat,
			Declared:  domain.DeclaredUnset,
			IsBot:     p.IsBot,
			Connected: true,
		}
		g.Seats[p.Seat] = p.PlayerID

	case TypePlayerLeft:
		var p PlayerLeftPayload
		if err := ev.Decode(&p); err != nil {
			return fail("decode player_left", err)
		}
		delete(g.Players, p.PlayerID)
		g.Seats[p.Seat] = ""

	case TypePlayerConnected, TypePlayerDisconnected:
		var p ConnectionPayload
		if err := ev.Decode(&p); err != nil {
			return fail("decode connection change", err)
		}
		if pl, ok := g.Players[p.PlayerID]; ok {
			pl.Connected = ev.Type == TypePlayerConnected
		}

	case TypeGameStarted:
		// Informational; the phase_changed event drives state.

	case TypePhaseChanged:
		var p PhaseChangedPayload
		if err := ev.Decode(&p); err != nil {
			return fail("decode phase_changed", err)
		}
		g.Phase = p.To
		if p.To == domain.PhaseDeclaration && g.Round != nil {
			g.DeclareOrder = g.SeatOrderFrom(g.Round.StarterID)
			g.DeclareIndex = 0
		}

	case TypeRoundStarted:
		var p RoundStartedPayload
		if err := ev.Decode(&p); err != nil {
			return fail("decode round_started", err)
		}
		g.Round = &domain.Round{Number: p.Number, StarterID: p.StarterID, RedealMultiplier: p.Multiplier}
		g.Turn = nil
		g.RedealQueue = nil
		g.DeclareOrder = nil
		g.DeclareIndex = 0
		for _, pl := range g.Players {
			pl.Declared = domain.DeclaredUnset
			pl.CapturedCount = 0
		}

	case TypeHandDealt:
		var p HandDealtPayload
		if err := ev.Decode(&p); err != nil {
			return fail("decode hand_dealt", err)
		}
		pl, ok := g.Players[p.PlayerID]
		if !ok {
			return fail("hand dealt to unknown player "+p.PlayerID, nil)
		}
		pl.Hand = append([]domain.Piece(nil), p.Hand...)

	case TypeRedealOffered:
		var p RedealOfferedPayload
		if err := ev.Decode(&p); err != nil {
			return fail("decode redeal_offered", err)
		}
		g.RedealQueue = append([]string(nil), p.Pending...)

	case TypeRedealAccepted:
		var p RedealAcceptedPayload
		if err := ev.Decode(&p); err != nil {
			return fail("decode redeal_accepted", err)
		}
		if g.Round != nil {
			g.Round.RedealMultiplier = p.Multiplier
		}
		g.RedealQueue = nil

	case TypeRedealDeclined:
		var p RedealDeclinedPayload
		if err := ev.Decode(&p); err != nil {
			return fail("decode redeal_declined", err)
		}
		if len(g.RedealQueue) > 0 && g.RedealQueue[0] == p.PlayerID {
			g.RedealQueue = g.RedealQueue[1:]
		}

	case TypeDeclarationMade:
		var p DeclarationMadePayload
		if err := ev.Decode(&p); err != nil {
			return fail("decode declaration_made", err)
		}
		pl, ok := g.Players[p.PlayerID]
		if !ok {
			return fail("declaration by unknown player "+p.PlayerID, nil)
		}
		pl.Declared = p.Value
		if p.Value == 0 {
			pl.ZeroStreak++
		} else {
			pl.ZeroStreak = 0
		}
		g.DeclareIndex++

	case TypePiecesPlayed:
		var p PiecesPlayedPayload
		if err := ev.Decode(&p); err != nil {
			return fail("decode pieces_played", err)
		}
		pl, ok := g.Players[p.PlayerID]
		if !ok {
			return fail("play by unknown player "+p.PlayerID, nil)
		}
		if p.Opener {
			g.Turn = &domain.Turn{
				Number:        p.TurnNumber,
				OpenerID:      p.PlayerID,
				RequiredCount: p.RequiredCount,
				OpenerType:    p.Type,
			}
		}
		if g.Turn == nil {
			return fail("follower play with no open turn", nil)
		}
		hand, ok := domain.RemovePieces(pl.Hand, p.Pieces)
		if !ok {
			return fail("played pieces missing from hand", nil)
		}
		pl.Hand = hand
		g.Turn.Plays = append(g.Turn.Plays, domain.TurnPlay{
			PlayerID: p.PlayerID,
			Pieces:   append([]domain.Piece(nil), p.Pieces...),
			Valid:    p.Valid,
			Type:     p.Type,
		})

	case TypeTurnResolved:
		var p TurnResolvedPayload
		if err := ev.Decode(&p); err != nil {
			return fail("decode turn_resolved", err)
		}
		if g.Turn == nil {
			return fail("turn_resolved with no open turn", nil)
		}
		g.Turn.WinnerID = p.WinnerID
		g.LastTurnWinnerID = p.WinnerID
		if pl, ok := g.Players[p.WinnerID]; ok {
			pl.CapturedCount += p.Captured
		}

	case TypeRoundScored:
		var p RoundScoredPayload
		if err := ev.Decode(&p); err != nil {
			return fail("decode round_scored", err)
		}
		for _, entry := range p.Entries {
			if pl, ok := g.Players[entry.PlayerID]; ok {
				pl.TotalScore = entry.Total
			}
		}

	case TypeGameOver:
		var p GameOverPayload
		if err := ev.Decode(&p); err != nil {
			return fail("decode game_over", err)
		}
		g.WinnerIDs = append([]string(nil), p.WinnerIDs...)

	default:
		return fail("unknown event type "+string(ev.Type), nil)
	}
	return nil
}

package nakama

import (
	"fmt"

	"liap/internal/domain"
	"liap/internal/event"
)

// PieceWire is the client-facing piece encoding. Point values are
// server-assigned, never trusted from the wire.
type PieceWire struct {
	Kind  string `json:"kind"`
	Color string `json:"color"`
}

// RedealDecisionRequest carries a weak-hand holder's choice.
type RedealDecisionRequest struct {
	Accept bool `json:"accept"`
}

// DeclareRequest carries a declared pile count.
type DeclareRequest struct {
	Value int `json:"value"`
}

// PlayPiecesRequest carries a turn submission.
type PlayPiecesRequest struct {
	Pieces []PieceWire `json:"pieces"`
}

// ResyncRequest asks for all events after the client's last applied sequence.
type ResyncRequest struct {
	SinceSeq uint64 `json:"since_seq"`
}

// ErrorMessage is returned to a sender whose action was rejected.
type ErrorMessage struct {
	Message string `json:"message"`
}

func piecesFromWire(wire []PieceWire) ([]domain.Piece, error) {
	out := make([]domain.Piece, 0, len(wire))
	for _, w := range wire {
		color := domain.Color(w.Color)
		if color != domain.ColorRed && color != domain.ColorBlack {
			return nil, fmt.Errorf("unknown piece color %q", w.Color)
		}
		p := domain.NewPiece(domain.Kind(w.Kind), color)
		if p.Points == 0 {
			return nil, fmt.Errorf("unknown piece kind %q", w.Kind)
		}
		out = append(out, p)
	}
	return out, nil
}

// eventOpCode maps core event types to outbound opcodes. Events are sent as
// their full JSON envelope so clients can track sequence numbers for resync.
func eventOpCode(t event.Type) int64 {
	switch t {
	case event.TypePlayerJoined:
		return OpPlayerJoined
	case event.TypePlayerLeft:
		return OpPlayerLeft
	case event.TypePlayerConnected:
		return OpPlayerConnected
	case event.TypePlayerDisconnected:
		return OpPlayerDisconnected
	case event.TypeGameStarted:
		return OpGameStarted
	case event.TypeRoundStarted:
		return OpRoundStarted
	case event.TypeHandDealt:
		return OpHandDealt
	case event.TypeRedealOffered:
		return OpRedealOffered
	case event.TypeRedealAccepted:
		return OpRedealAccepted
	case event.TypeRedealDeclined:
		return OpRedealDeclined
	case event.TypeDeclarationMade:
		return OpDeclarationMade
	case event.TypePiecesPlayed:
		return OpPiecesPlayed
	case event.TypeTurnResolved:
		return OpTurnResolved
	case event.TypeRoundScored:
		return OpRoundScored
	case event.TypeGameOver:
		return OpGameOver
	case event.TypePhaseChanged:
		return OpPhaseChanged
	}
	return 0
}

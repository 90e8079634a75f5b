package nakama

import (
	"testing"

	"liap/internal/domain"
	"liap/internal/event"
)

func TestPiecesFromWire(t *testing.T) {
	pieces, err := piecesFromWire([]PieceWire{
		{Kind: "general", Color: "red"},
		{Kind: "soldier", Color: "black"},
	})
	if err != nil {
		t.Fatalf("piecesFromWire() error: %v", err)
	}
	if len(pieces) != 2 {
		t.Fatalf("len(pieces) = %d, want 2", len(pieces))
	}
	if pieces[0] != domain.NewPiece(domain.KindGeneral, domain.ColorRed) {
		t.Fatalf("pieces[0] = %+v", pieces[0])
	}
	if pieces[1].Points != 1 {
		t.Fatalf("black soldier points = %d, want 1", pieces[1].Points)
	}
}

func TestPiecesFromWireRejectsUnknownPiece(t *testing.T) {
	if _, err := piecesFromWire([]PieceWire{{Kind: "queen", Color: "red"}}); err == nil {
		t.Fatal("piecesFromWire() accepted an unknown kind")
	}
	if _, err := piecesFromWire([]PieceWire{{Kind: "general", Color: "green"}}); err == nil {
		t.Fatal("piecesFromWire() accepted an unknown color")
	}
}

func TestPiecesFromWireIgnoresClientPoints(t *testing.T) {
	// Wire pieces carry no points field at all; values are always assigned
	// server-side.
	pieces, err := piecesFromWire([]PieceWire{{Kind: "horse", Color: "red"}})
	if err != nil {
		t.Fatal(err)
	}
	if pieces[0].Points != 6 {
		t.Fatalf("red horse points = %d, want 6", pieces[0].Points)
	}
}

func TestEventOpCodeCoversAllEventTypes(t *testing.T) {
	types := []event.Type{
		event.TypePlayerJoined,
		event.TypePlayerLeft,
		event.TypePlayerConnected,
		event.TypePlayerDisconnected,
		event.TypeGameStarted,
		event.TypeRoundStarted,
		event.TypeHandDealt,
		event.TypeRedealOffered,
		event.TypeRedealAccepted,
		event.TypeRedealDeclined,
		event.TypeDeclarationMade,
		event.TypePiecesPlayed,
		event.TypeTurnResolved,
		event.TypeRoundScored,
		event.TypeGameOver,
		event.TypePhaseChanged,
	}

	seen := make(map[int64]event.Type)
	for _, typ := range types {
		op := eventOpCode(typ)
		if op == 0 {
			t.Errorf("eventOpCode(%s) = 0", typ)
			continue
		}
		if prev, dup := seen[op]; dup {
			t.Errorf("%s and %s share opcode %d", prev, typ, op)
		}
		seen[op] = typ
	}

	if got := eventOpCode(event.Type("mystery")); got != 0 {
		t.Fatalf("eventOpCode(unknown) = %d, want 0", got)
	}
}

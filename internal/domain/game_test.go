package domain

import "testing"

func seatedGame() *Game {
	g := NewGame()
	for i, id := range []string{"a", "b", "c", "d"} {
		g.Seats[i] = id
		g.Players[id] = &Player{ID: id, Seat: i, Declared: DeclaredUnset, Connected: true}
	}
	return g
}

func TestSeatOrderFromWraps(t *testing.T) {
	g := seatedGame()
	got := g.SeatOrderFrom("c")
	want := []string{"c", "d", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("SeatOrderFrom() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SeatOrderFrom() = %v, want %v", got, want)
		}
	}
	if g.SeatOrderFrom("nobody") != nil {
		t.Fatal("SeatOrderFrom(unknown) should be nil")
	}
}

func TestPendingActorID(t *testing.T) {
	t.Run("WaitingHasNoPendingActor", func(t *testing.T) {
		g := seatedGame()
		if got := g.PendingActorID(); got != "" {
			t.Fatalf("PendingActorID() = %q, want empty", got)
		}
	})

	t.Run("PreparationWaitsOnQueueHead", func(t *testing.T) {
		g := seatedGame()
		g.Phase = PhasePreparation
		g.RedealQueue = []string{"b", "d"}
		if got := g.PendingActorID(); got != "b" {
			t.Fatalf("PendingActorID() = %q, want b", got)
		}
	})

	t.Run("DeclarationWalksOrder", func(t *testing.T) {
		g := seatedGame()
		g.Phase = PhaseDeclaration
		g.DeclareOrder = []string{"a", "b", "c", "d"}
		g.DeclareIndex = 2
		if got := g.PendingActorID(); got != "c" {
			t.Fatalf("PendingActorID() = %q, want c", got)
		}
	})

	t.Run("TurnOpensWithRoundStarter", func(t *testing.T) {
		g := seatedGame()
		g.Phase = PhaseTurn
		g.Round = &Round{Number: 1, StarterID: "b", RedealMultiplier: 1}
		if got := g.PendingActorID(); got != "b" {
			t.Fatalf("PendingActorID() = %q, want b", got)
		}
	})

	t.Run("TurnFollowsSeatOrderFromOpener", func(t *testing.T) {
		g := seatedGame()
		g.Phase = PhaseTurn
		g.Round = &Round{Number: 1, StarterID: "b", RedealMultiplier: 1}
		g.Turn = &Turn{
			Number:   1,
			OpenerID: "b",
			Plays:    []TurnPlay{{PlayerID: "b"}, {PlayerID: "c"}},
		}
		if got := g.PendingActorID(); got != "d" {
			t.Fatalf("PendingActorID() = %q, want d", got)
		}
	})

	t.Run("ResolvedTurnWaitsOnWinnerToOpen", func(t *testing.T) {
		g := seatedGame()
		g.Phase = PhaseTurn
		g.Round = &Round{Number: 1, StarterID: "b", RedealMultiplier: 1}
		g.Turn = &Turn{Number: 1, OpenerID: "b", WinnerID: "d"}
		if got := g.PendingActorID(); got != "d" {
			t.Fatalf("PendingActorID() = %q, want winner d", got)
		}
	})
}

func TestCloneIsDeep(t *testing.T) {
	g := seatedGame()
	g.Phase = PhaseTurn
	g.Round = &Round{Number: 2, StarterID: "a", RedealMultiplier: 1}
	g.Players["a"].Hand = []Piece{p(KindGeneral, ColorRed)}
	g.Turn = &Turn{
		Number:        1,
		OpenerID:      "a",
		RequiredCount: 1,
		OpenerType:    PlaySingle,
		Plays:         []TurnPlay{{PlayerID: "a", Pieces: []Piece{p(KindGeneral, ColorRed)}, Valid: true, Type: PlaySingle}},
	}
	g.DeclareOrder = []string{"a", "b", "c", "d"}

	clone := g.Clone()
	clone.Players["a"].Hand[0] = p(KindSoldier, ColorBlack)
	clone.Players["a"].TotalScore = 99
	clone.Turn.Plays[0].PlayerID = "z"
	clone.Round.Number = 9
	clone.DeclareOrder[0] = "z"

	if g.Players["a"].Hand[0] != p(KindGeneral, ColorRed) {
		t.Error("clone shares hand storage with the original")
	}
	if g.Players["a"].TotalScore != 0 {
		t.Error("clone shares player structs with the original")
	}
	if g.Turn.Plays[0].PlayerID != "a" {
		t.Error("clone shares turn plays with the original")
	}
	if g.Round.Number != 2 {
		t.Error("clone shares round struct with the original")
	}
	if g.DeclareOrder[0] != "a" {
		t.Error("clone shares declare order with the original")
	}
}

func TestDeclaredSumIgnoresUnset(t *testing.T) {
	g := seatedGame()
	g.Players["a"].Declared = 3
	g.Players["b"].Declared = 0
	if got := g.DeclaredSum(); got != 3 {
		t.Fatalf("DeclaredSum() = %d, want 3", got)
	}
}

func TestAllHandsEmpty(t *testing.T) {
	g := seatedGame()
	if !g.AllHandsEmpty() {
		t.Fatal("AllHandsEmpty() = false with no pieces dealt")
	}
	g.Players["c"].Hand = []Piece{p(KindSoldier, ColorRed)}
	if g.AllHandsEmpty() {
		t.Fatal("AllHandsEmpty() = true with a piece in hand")
	}
	if NewGame().AllHandsEmpty() {
		t.Fatal("AllHandsEmpty() = true with no players")
	}
}

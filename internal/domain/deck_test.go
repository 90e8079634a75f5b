package domain

import (
	"math/rand"
	"testing"
)

func TestNewDeckComposition(t *testing.T) {
	deck := NewDeck()
	if len(deck) != DeckSize {
		t.Fatalf("len(deck) = %d, want %d", len(deck), DeckSize)
	}

	counts := make(map[Piece]int)
	for _, piece := range deck {
		counts[piece]++
	}

	wantPerColor := map[Kind]int{
		KindGeneral:  1,
		KindAdvisor:  2,
		KindElephant: 2,
		KindChariot:  2,
		KindHorse:    2,
		KindCannon:   2,
		KindSoldier:  5,
	}
	for _, color := range []Color{ColorRed, ColorBlack} {
		for kind, want := range wantPerColor {
			if got := counts[NewPiece(kind, color)]; got != want {
				t.Errorf("count(%s %s) = %d, want %d", color, kind, got, want)
			}
		}
	}
}

func TestPointValuesUniquePerKindColor(t *testing.T) {
	seen := make(map[int]Piece)
	for _, color := range []Color{ColorRed, ColorBlack} {
		for kind := range redPoints {
			piece := NewPiece(kind, color)
			if piece.Points <= 0 {
				t.Fatalf("%s has no point value", piece)
			}
			if prev, dup := seen[piece.Points]; dup {
				t.Fatalf("%s and %s share point value %d", prev, piece, piece.Points)
			}
			seen[piece.Points] = piece
		}
	}
}

func TestShuffleDeckPreservesMultiset(t *testing.T) {
	deck := NewDeck()
	shuffled := ShuffleDeck(rand.New(rand.NewSource(7)), deck)

	if len(shuffled) != len(deck) {
		t.Fatalf("len(shuffled) = %d, want %d", len(shuffled), len(deck))
	}
	counts := make(map[Piece]int)
	for _, piece := range shuffled {
		counts[piece]++
	}
	for _, piece := range deck {
		counts[piece]--
	}
	for piece, n := range counts {
		if n != 0 {
			t.Fatalf("shuffle changed multiplicity of %s by %d", piece, n)
		}
	}
}

func TestSortHandDescending(t *testing.T) {
	hand := []Piece{
		p(KindSoldier, ColorBlack),
		p(KindGeneral, ColorRed),
		p(KindHorse, ColorBlack),
	}
	SortHand(hand)
	for i := 1; i < len(hand); i++ {
		if hand[i].Points > hand[i-1].Points {
			t.Fatalf("hand not sorted descending: %v", hand)
		}
	}
	if hand[0] != p(KindGeneral, ColorRed) {
		t.Fatalf("hand[0] = %s, want red general", hand[0])
	}
}

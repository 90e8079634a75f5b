package domain

import (
	"math/rand"
	"sort"
)

const (
	// PlayerCount is the fixed number of seats in a Liap game.
	PlayerCount = 4
	// HandSize is the number of pieces dealt to each player per round.
	HandSize = 8
	// DeckSize is the total number of pieces in the set.
	DeckSize = PlayerCount * HandSize
	// ForbiddenDeclarationSum is the declaration total the table may never
	// reach: the per-player piece count for the round.
	ForbiddenDeclarationSum = HandSize
	// MaxPlaySize is the largest piece count a turn opener may fix.
	MaxPlaySize = 6
)

var kindCounts = []struct {
	kind  Kind
	count int
}{
	{KindGeneral, 1},
	{KindAdvisor, 2},
	{KindElephant, 2},
	{KindChariot, 2},
	{KindHorse, 2},
	{KindCannon, 2},
	{KindSoldier, 5},
}

// NewDeck returns the full ordered 32-piece Liap set.
func NewDeck() []Piece {
	deck := make([]Piece, 0, DeckSize)
	for _, color := range []Color{ColorRed, ColorBlack} {
		for _, kc := range kindCounts {
			for i := 0; i < kc.count; i++ {
				deck = append(deck, NewPiece(kc.kind, color))
			}
		}
	}
	return deck
}

// ShuffleDeck returns a shuffled copy of the given deck using the provided rng.
func ShuffleDeck(rng *rand.Rand, deck []Piece) []Piece {
	out := make([]Piece, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// SortHand orders a hand by descending point value.
func SortHand(hand []Piece) {
	sort.Slice(hand, func(i, j int) bool {
		return hand[i].Points > hand[j].Points
	})
}

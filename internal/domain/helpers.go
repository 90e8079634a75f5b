package domain

// RemovePieces removes the played pieces from a hand, multiset-wise. The
// second return value is false when the hand does not contain every played
// piece, in which case the hand is returned unchanged.
func RemovePieces(hand []Piece, played []Piece) ([]Piece, bool) {
	if len(played) == 0 {
		return hand, true
	}
	remove := make(map[Piece]int, len(played))
	for _, p := range played {
		remove[p]++
	}

	updated := make([]Piece, 0, len(hand))
	for _, p := range hand {
		if remove[p] > 0 {
			remove[p]--
			continue
		}
		updated = append(updated, p)
	}
	for _, n := range remove {
		if n > 0 {
			return hand, false
		}
	}
	return updated, true
}

// HandContains reports whether the hand holds every piece of the play,
// multiset-wise.
func HandContains(hand []Piece, play []Piece) bool {
	_, ok := RemovePieces(hand, play)
	return ok
}

// IsWeakHand reports whether no piece in the hand exceeds the point threshold.
func IsWeakHand(hand []Piece, threshold int) bool {
	for _, p := range hand {
		if p.Points > threshold {
			return false
		}
	}
	return len(hand) > 0
}

// WeakPlayers returns the ids of players holding weak hands, in seat order
// starting from the round starter.
func WeakPlayers(g *Game, threshold int) []string {
	if g.Round == nil {
		return nil
	}
	var out []string
	for _, id := range g.SeatOrderFrom(g.Round.StarterID) {
		if IsWeakHand(g.Players[id].Hand, threshold) {
			out = append(out, id)
		}
	}
	return out
}

// DeclarationOptions returns the legal declaration values for the player whose
// turn it is to declare. sumSoFar is the total already declared this round,
// final marks the last declarer (whose option set loses the value that would
// bring the table sum to the forbidden total), and zeroStreak is the player's
// run of consecutive zero declarations.
func DeclarationOptions(sumSoFar int, final bool, zeroStreak int) []int {
	out := make([]int, 0, HandSize+1)
	for v := 0; v <= HandSize; v++ {
		if v == 0 && zeroStreak >= 2 {
			continue
		}
		if final && sumSoFar+v == ForbiddenDeclarationSum {
			continue
		}
		out = append(out, v)
	}
	return out
}

// DeclarationAllowed reports whether a single declaration value is legal under
// the same rules as DeclarationOptions.
func DeclarationAllowed(value, sumSoFar int, final bool, zeroStreak int) bool {
	if value < 0 || value > HandSize {
		return false
	}
	if value == 0 && zeroStreak >= 2 {
		return false
	}
	if final && sumSoFar+value == ForbiddenDeclarationSum {
		return false
	}
	return true
}

package domain

// PlayType is the shape classification of a submitted piece set.
type PlayType string

const (
	PlayInvalid          PlayType = "invalid"
	PlaySingle           PlayType = "single"
	PlayPair             PlayType = "pair"
	PlayThreeOfAKind     PlayType = "three_of_a_kind"
	PlayStraight         PlayType = "straight"
	PlayFourOfAKind      PlayType = "four_of_a_kind"
	PlayExtendedStraight PlayType = "extended_straight"
	PlayFiveOfAKind      PlayType = "five_of_a_kind"
	PlayDoubleStraight   PlayType = "double_straight"
)

// The two disjoint straight groups. DOUBLE_STRAIGHT is only reachable with
// the chariot group because it is the only group holding two copies of every
// member per color.
var (
	straightGroupHigh = map[Kind]bool{KindGeneral: true, KindAdvisor: true, KindElephant: true}
	straightGroupLow  = map[Kind]bool{KindChariot: true, KindHorse: true, KindCannon: true}
)

// ClassifyPlay determines the play type of a piece set. PlayInvalid means the
// set forms no legal combination; such plays may still be submitted by
// followers but can never win a turn.
func ClassifyPlay(pieces []Piece) PlayType {
	switch len(pieces) {
	case 1:
		return PlaySingle
	case 2:
		if allSamePoints(pieces) {
			return PlayPair
		}
	case 3:
		if allSamePoints(pieces) {
			return PlayThreeOfAKind
		}
		if isStraight(pieces, 1, 1) {
			return PlayStraight
		}
	case 4:
		if allSamePoints(pieces) {
			return PlayFourOfAKind
		}
		if isStraight(pieces, 1, 2) {
			return PlayExtendedStraight
		}
	case 5:
		if allSamePoints(pieces) {
			return PlayFiveOfAKind
		}
		if isStraight(pieces, 1, 2) {
			return PlayExtendedStraight
		}
	case 6:
		if isDoubleStraight(pieces) {
			return PlayDoubleStraight
		}
	}
	return PlayInvalid
}

// PlaySum returns the summed point value of a play.
func PlaySum(pieces []Piece) int {
	sum := 0
	for _, p := range pieces {
		sum += p.Points
	}
	return sum
}

// ResolveTurn picks the turn winner: among valid plays whose type exactly
// matches the opener's, the highest summed point value wins. Exact-sum ties
// go to the earliest submission. With no matching follower the opener wins by
// default. The plays slice must be in submission order with the opener first.
func ResolveTurn(t *Turn) string {
	if len(t.Plays) == 0 {
		return ""
	}
	winner := t.Plays[0]
	best := PlaySum(winner.Pieces)
	for _, play := range t.Plays[1:] {
		if !play.Valid || play.Type != t.OpenerType {
			continue
		}
		if sum := PlaySum(play.Pieces); sum > best {
			winner = play
			best = sum
		}
	}
	return winner.PlayerID
}

func allSamePoints(pieces []Piece) bool {
	for _, p := range pieces[1:] {
		if p.Points != pieces[0].Points {
			return false
		}
	}
	return true
}

// isStraight checks that the pieces are one color, their kinds cover an entire
// straight group, and every per-kind multiplicity lies within [minDup, maxDup].
// (1,1) is a plain straight; (1,2) covers the extended forms where one or two
// members are duplicated.
func isStraight(pieces []Piece, minDup, maxDup int) bool {
	group := groupOf(pieces)
	if group == nil {
		return false
	}
	counts := make(map[Kind]int, 3)
	for _, p := range pieces {
		counts[p.Kind]++
	}
	if len(counts) != 3 {
		return false
	}
	for _, c := range counts {
		if c < minDup || c > maxDup {
			return false
		}
	}
	return true
}

// isDoubleStraight checks for the chariot group with every member present
// exactly twice, one color.
func isDoubleStraight(pieces []Piece) bool {
	counts := make(map[Kind]int, 3)
	for _, p := range pieces {
		if p.Color != pieces[0].Color || !straightGroupLow[p.Kind] {
			return false
		}
		counts[p.Kind]++
	}
	return counts[KindChariot] == 2 && counts[KindHorse] == 2 && counts[KindCannon] == 2
}

// groupOf returns the straight group containing every piece, or nil. All
// pieces must share one color.
func groupOf(pieces []Piece) map[Kind]bool {
	color := pieces[0].Color
	for _, group := range []map[Kind]bool{straightGroupHigh, straightGroupLow} {
		ok := true
		for _, p := range pieces {
			if p.Color != color || !group[p.Kind] {
				ok = false
				break
			}
		}
		if ok {
			return group
		}
	}
	return nil
}

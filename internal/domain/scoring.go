package domain

// ScoreDelta computes a player's pre-multiplier round delta from their
// declared and captured pile counts.
//
//	declared 0, captured 0      -> +3
//	declared 0, captured > 0    -> -captured
//	declared == captured > 0    -> declared + 5
//	otherwise                   -> -|declared - captured|
func ScoreDelta(declared, captured int) int {
	switch {
	case declared == 0 && captured == 0:
		return 3
	case declared == 0:
		return -captured
	case declared == captured:
		return declared + 5
	default:
		d := declared - captured
		if d < 0 {
			d = -d
		}
		return -d
	}
}

// RoundScore applies the round's redeal multiplier to the base delta.
func RoundScore(declared, captured, multiplier int) int {
	return ScoreDelta(declared, captured) * multiplier
}

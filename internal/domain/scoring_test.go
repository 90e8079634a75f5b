package domain

import "testing"

func TestScoreDelta(t *testing.T) {
	tests := []struct {
		name     string
		declared int
		captured int
		want     int
	}{
		{name: "ExactMatchGetsBonus", declared: 3, captured: 3, want: 8},
		{name: "ZeroDeclaredZeroCaptured", declared: 0, captured: 0, want: 3},
		{name: "ZeroDeclaredButCaptured", declared: 0, captured: 2, want: -2},
		{name: "Overshoot", declared: 2, captured: 5, want: -3},
		{name: "Undershoot", declared: 5, captured: 2, want: -3},
		{name: "FullHandDeclaredAndTaken", declared: 8, captured: 8, want: 13},
		{name: "OneDeclaredOneCaptured", declared: 1, captured: 1, want: 6},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := ScoreDelta(test.declared, test.captured); got != test.want {
				t.Fatalf("ScoreDelta(%d, %d) = %d, want %d", test.declared, test.captured, got, test.want)
			}
		})
	}
}

func TestRoundScoreAppliesMultiplier(t *testing.T) {
	if got := RoundScore(3, 3, 2); got != 16 {
		t.Fatalf("RoundScore(3, 3, 2) = %d, want 16", got)
	}
	if got := RoundScore(0, 2, 3); got != -6 {
		t.Fatalf("RoundScore(0, 2, 3) = %d, want -6", got)
	}
	if got := RoundScore(0, 0, 1); got != 3 {
		t.Fatalf("RoundScore(0, 0, 1) = %d, want 3", got)
	}
}

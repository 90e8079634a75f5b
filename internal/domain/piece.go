package domain

import "fmt"

// Color identifies which half of the Liap set a piece belongs to.
type Color string

const (
	ColorRed   Color = "red"
	ColorBlack Color = "black"
)

// Kind is the named rank of a Liap piece.
type Kind string

const (
	KindGeneral  Kind = "general"
	KindAdvisor  Kind = "advisor"
	KindElephant Kind = "elephant"
	KindChariot  Kind = "chariot"
	KindHorse    Kind = "horse"
	KindCannon   Kind = "cannon"
	KindSoldier  Kind = "soldier"
)

// Piece is a single Liap piece. Pieces are immutable values: classification
// compares kind+color, scoring and ranking compare point values. Point values
// are unique per (kind, color), so point equality implies piece equality.
type Piece struct {
	Kind   Kind  `json:"kind"`
	Color  Color `json:"color"`
	Points int   `json:"points"`
}

var redPoints = map[Kind]int{
	KindGeneral:  14,
	KindAdvisor:  12,
	KindElephant: 10,
	KindChariot:  8,
	KindHorse:    6,
	KindCannon:   4,
	KindSoldier:  2,
}

var blackPoints = map[Kind]int{
	KindGeneral:  13,
	KindAdvisor:  11,
	KindElephant: 9,
	KindChariot:  7,
	KindHorse:    5,
	KindCannon:   3,
	KindSoldier:  1,
}

// NewPiece builds a piece with its canonical point value.
func NewPiece(kind Kind, color Color) Piece {
	pts := redPoints[kind]
	if color == ColorBlack {
		pts = blackPoints[kind]
	}
	return Piece{Kind: kind, Color: color, Points: pts}
}

func (p Piece) String() string {
	return fmt.Sprintf("%s_%s", p.Color, p.Kind)
}

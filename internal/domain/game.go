package domain

// Phase represents the lifecycle stage of a Liap game.
type Phase string

const (
	// PhaseWaiting is the pre-game state where players take seats.
	PhaseWaiting Phase = "waiting"
	// PhasePreparation deals hands and runs the redeal decision protocol.
	PhasePreparation Phase = "preparation"
	// PhaseDeclaration collects pile declarations in seat order.
	PhaseDeclaration Phase = "declaration"
	// PhaseTurn is the active trick-play state.
	PhaseTurn Phase = "turn"
	// PhaseTurnResults carries a resolved turn's outcome; it never persists
	// across action cycles.
	PhaseTurnResults Phase = "turn_results"
	// PhaseScoring applies round deltas and decides continuation.
	PhaseScoring Phase = "scoring"
	// PhaseGameOver is the terminal state.
	PhaseGameOver Phase = "game_over"
)

// DeclaredUnset marks a player who has not declared this round.
const DeclaredUnset = -1

// Player holds per-seat state. Players are owned exclusively by the game's
// processing unit and mutated only by the active phase handler.
type Player struct {
	ID            string  `json:"id"`
	Seat          int     `json:"seat"` // 0-based seat index
	Hand          []Piece `json:"hand"`
	Declared      int     `json:"declared"` // DeclaredUnset until declared
	CapturedCount int     `json:"captured_count"`
	TotalScore    int     `json:"total_score"`
	ZeroStreak    int     `json:"zero_streak"` // consecutive zero declarations
	IsBot         bool    `json:"is_bot"`
	Connected     bool    `json:"connected"`
}

// Round tracks the state created on each transition into Preparation.
type Round struct {
	Number           int    `json:"number"`
	StarterID        string `json:"starter_id"`
	RedealMultiplier int    `json:"redeal_multiplier"` // >= 1, non-decreasing within a round
}

// TurnPlay is one player's submission within a turn.
type TurnPlay struct {
	PlayerID string   `json:"player_id"`
	Pieces   []Piece  `json:"pieces"`
	Valid    bool     `json:"valid"`
	Type     PlayType `json:"type"`
}

// Turn is a single trick: the opener fixes the required piece count and play
// type, every other seat follows with exactly that many pieces.
type Turn struct {
	Number        int        `json:"number"`
	OpenerID      string     `json:"opener_id"`
	RequiredCount int        `json:"required_count"`
	OpenerType    PlayType   `json:"opener_type"`
	Plays         []TurnPlay `json:"plays"`
	WinnerID      string     `json:"winner_id"` // empty until resolved
}

// Resolved reports whether the turn has a winner.
func (t *Turn) Resolved() bool { return t.WinnerID != "" }

// Game is the authoritative state for one room. Everything a phase handler
// works with lives here so the event log can rebuild it in full.
type Game struct {
	Phase   Phase               `json:"phase"`
	Players map[string]*Player  `json:"players"`
	Seats   [PlayerCount]string `json:"seats"` // seat index -> player id, "" when empty

	Round *Round `json:"round,omitempty"`
	Turn  *Turn  `json:"turn,omitempty"`

	// Preparation working state: pending weak-hand deciders, head first.
	RedealQueue []string `json:"redeal_queue,omitempty"`

	// Declaration working state.
	DeclareOrder []string `json:"declare_order,omitempty"`
	DeclareIndex int      `json:"declare_index"`

	// LastTurnWinnerID opens the next turn and starts the next round.
	LastTurnWinnerID string `json:"last_turn_winner_id,omitempty"`

	// WinnerIDs is the final winner set; ties are permitted.
	WinnerIDs []string `json:"winner_ids,omitempty"`
}

// NewGame returns an empty game in the Waiting phase.
func NewGame() *Game {
	return &Game{
		Phase:        PhaseWaiting,
		Players:      make(map[string]*Player),
		DeclareIndex: 0,
	}
}

// SeatedCount returns the number of occupied seats.
func (g *Game) SeatedCount() int {
	n := 0
	for _, id := range g.Seats {
		if id != "" {
			n++
		}
	}
	return n
}

// SeatOf returns the seat index for a player id, or -1.
func (g *Game) SeatOf(playerID string) int {
	for i, id := range g.Seats {
		if id == playerID {
			return i
		}
	}
	return -1
}

// SeatOrderFrom returns all seated player ids beginning at the given player
// and proceeding in seat order.
func (g *Game) SeatOrderFrom(playerID string) []string {
	start := g.SeatOf(playerID)
	if start < 0 {
		return nil
	}
	out := make([]string, 0, PlayerCount)
	for i := 0; i < PlayerCount; i++ {
		id := g.Seats[(start+i)%PlayerCount]
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// DeclaredSum returns the sum of all declarations made so far this round.
func (g *Game) DeclaredSum() int {
	sum := 0
	for _, p := range g.Players {
		if p.Declared != DeclaredUnset {
			sum += p.Declared
		}
	}
	return sum
}

// AllHandsEmpty reports whether every seated player has played out their hand.
func (g *Game) AllHandsEmpty() bool {
	for _, p := range g.Players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return len(g.Players) > 0
}

// PendingActorID returns the player the current phase is waiting on, or ""
// when the phase is not resident on a single player's action. The result is
// fully derived from game state so it holds for live and replayed games alike.
func (g *Game) PendingActorID() string {
	switch g.Phase {
	case PhasePreparation:
		if len(g.RedealQueue) > 0 {
			return g.RedealQueue[0]
		}
	case PhaseDeclaration:
		if g.DeclareIndex < len(g.DeclareOrder) {
			return g.DeclareOrder[g.DeclareIndex]
		}
	case PhaseTurn:
		if g.Round == nil {
			return ""
		}
		if g.Turn == nil {
			return g.Round.StarterID
		}
		if g.Turn.Resolved() {
			return g.Turn.WinnerID
		}
		order := g.SeatOrderFrom(g.Turn.OpenerID)
		if len(g.Turn.Plays) < len(order) {
			return order[len(g.Turn.Plays)]
		}
	}
	return ""
}

// Clone returns a deep copy safe to hand to external readers.
func (g *Game) Clone() *Game {
	out := *g
	out.Players = make(map[string]*Player, len(g.Players))
	for id, p := range g.Players {
		cp := *p
		cp.Hand = append([]Piece(nil), p.Hand...)
		out.Players[id] = &cp
	}
	if g.Round != nil {
		r := *g.Round
		out.Round = &r
	}
	if g.Turn != nil {
		t := *g.Turn
		t.Plays = make([]TurnPlay, len(g.Turn.Plays))
		for i, pl := range g.Turn.Plays {
			cp := pl
			cp.Pieces = append([]Piece(nil), pl.Pieces...)
			t.Plays[i] = cp
		}
		out.Turn = &t
	}
	out.RedealQueue = append([]string(nil), g.RedealQueue...)
	out.DeclareOrder = append([]string(nil), g.DeclareOrder...)
	out.WinnerIDs = append([]string(nil), g.WinnerIDs...)
	return &out
}

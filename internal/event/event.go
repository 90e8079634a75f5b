// Package event defines the per-room append-only event log: the unit of
// output emitted by the game core, the stores that persist it, and the pure
// replay function that rebuilds game state from it.
package event

import (
	"encoding/json"
	"time"

	"liap/internal/domain"
)

// Type identifies an emitted game event.
type Type string

const (
	TypePlayerJoined       Type = "player_joined"
	TypePlayerLeft         Type = "player_left"
	TypePlayerConnected    Type = "player_connected"
	TypePlayerDisconnected Type = "player_disconnected"
	TypeGameStarted        Type = "game_started"
	TypeRoundStarted       Type = "round_started"
	TypeHandDealt          Type = "hand_dealt"
	TypeRedealOffered      Type = "redeal_offered"
	TypeRedealAccepted     Type = "redeal_accepted"
	TypeRedealDeclined     Type = "redeal_declined"
	TypeDeclarationMade    Type = "declaration_made"
	TypePiecesPlayed       Type = "pieces_played"
	TypeTurnResolved       Type = "turn_resolved"
	TypeRoundScored        Type = "round_scored"
	TypeGameOver           Type = "game_over"
	TypePhaseChanged       Type = "phase_changed"
)

// DisplayHint is opaque pacing metadata for presentation layers. The core
// attaches it and never waits on it.
type DisplayHint struct {
	SuggestedMS int  `json:"suggested_ms"`
	Skippable   bool `json:"skippable"`
}

// Event is the unit of output. Seq is monotonic and contiguous per room.
// Recipients limits targeted delivery (private hands); empty means broadcast.
type Event struct {
	Seq        uint64          `json:"seq"`
	Type       Type            `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Display    *DisplayHint    `json:"display,omitempty"`
	Recipients []string        `json:"recipients,omitempty"`
	At         time.Time       `json:"at"`
}

// Decode unmarshals the event payload into out.
func (e Event) Decode(out any) error {
	return json.Unmarshal(e.Payload, out)
}

type PlayerJoinedPayload struct {
	PlayerID string `json:"player_id"`
	Seat     int    `json:"seat"`
	IsBot    bool   `json:"is_bot"`
}

type PlayerLeftPayload struct {
	PlayerID string `json:"player_id"`
	Seat     int    `json:"seat"`
}

type ConnectionPayload struct {
	PlayerID string `json:"player_id"`
}

type GameStartedPayload struct {
	Seats []string `json:"seats"`
}

type RoundStartedPayload struct {
	Number     int    `json:"number"`
	StarterID  string `json:"starter_id"`
	Multiplier int    `json:"multiplier"`
}

type HandDealtPayload struct {
	PlayerID string         `json:"player_id"`
	Hand     []domain.Piece `json:"hand"`
}

type RedealOfferedPayload struct {
	PlayerID string   `json:"player_id"`
	Pending  []string `json:"pending"` // decision queue, head first
}

type RedealAcceptedPayload struct {
	PlayerID   string `json:"player_id"`
	Multiplier int    `json:"multiplier"`
}

type RedealDeclinedPayload struct {
	PlayerID string `json:"player_id"`
}

type DeclarationMadePayload struct {
	PlayerID     string `json:"player_id"`
	Value        int    `json:"value"`
	NextPlayerID string `json:"next_player_id,omitempty"` // empty when declarations close
}

type PiecesPlayedPayload struct {
	PlayerID      string          `json:"player_id"`
	TurnNumber    int             `json:"turn_number"`
	Pieces        []domain.Piece  `json:"pieces"`
	Type          domain.PlayType `json:"play_type"`
	Valid         bool            `json:"valid"`
	Opener        bool            `json:"opener"`
	RequiredCount int             `json:"required_count"`
	NextPlayerID  string          `json:"next_player_id,omitempty"`
}

type TurnResolvedPayload struct {
	TurnNumber int            `json:"turn_number"`
	WinnerID   string         `json:"winner_id"`
	Captured   int            `json:"captured"` // pile pieces credited to the winner
	PileCounts map[string]int `json:"pile_counts"`
}

type ScoreEntry struct {
	PlayerID string `json:"player_id"`
	Declared int    `json:"declared"`
	Captured int    `json:"captured"`
	Delta    int    `json:"delta"`
	Total    int    `json:"total"`
}

type RoundScoredPayload struct {
	RoundNumber int          `json:"round_number"`
	Multiplier  int          `json:"multiplier"`
	Entries     []ScoreEntry `json:"entries"`
}

type GameOverPayload struct {
	WinnerIDs []string       `json:"winner_ids"`
	Totals    map[string]int `json:"totals"`
}

type PhaseChangedPayload struct {
	From domain.Phase `json:"from"`
	To   domain.Phase `json:"to"`
}

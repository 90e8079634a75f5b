// Package bot provides baseline agents that play Liap through the same
// action path as humans. Strategy quality is deliberately modest: the
// contract is legality, not strength.
package bot

import (
	"liap/internal/domain"
	"liap/internal/engine"
)

// Brain is the interface all bot strategies implement. Decide inspects a
// snapshot of game state and returns the agent's next action, or nil when
// the game is not waiting on this player.
type Brain interface {
	Decide(g *domain.Game, playerID string) *engine.GameAction
}

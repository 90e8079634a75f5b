package bot

import (
	"strings"

	"liap/internal/domain"
	"liap/internal/engine"
)

// BotIDPrefix marks seats held by bot agents.
const BotIDPrefix = "bot:"

// IsBot reports whether the given player id represents a bot seat.
func IsBot(playerID string) bool {
	return strings.HasPrefix(playerID, BotIDPrefix)
}

var botNames = []string{"chariot", "cannon", "advisor", "horse"}

// BotID returns the deterministic bot id for a seat index.
func BotID(seat int) string {
	return BotIDPrefix + botNames[seat%len(botNames)]
}

// Agent is an autonomous player bound to one strategy.
type Agent struct {
	ID       string
	Strategy Brain
}

// NewAgent constructs an agent with the baseline strategy.
func NewAgent(id string, strategy Brain) *Agent {
	return &Agent{ID: id, Strategy: strategy}
}

// Decide returns the agent's next action for the given snapshot, with the
// bot audit flag set, or nil when it is not this agent's move.
func (a *Agent) Decide(g *domain.Game) *engine.GameAction {
	action := a.Strategy.Decide(g, a.ID)
	if action == nil {
		return nil
	}
	action.PlayerID = a.ID
	action.IsBot = true
	return action
}

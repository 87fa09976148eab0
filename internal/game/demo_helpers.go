package game

import (
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/core"
)

// endTurnBias is the chance a random agent ends its turn when it could still act.
const endTurnBias = 0.25

// GenerateRandomAction picks one legal action for the player who must act next.
// It is a baseline agent for demos, simulations and soak tests. The second
// return value is false when nobody can act (game over, locked or not started).
func GenerateRandomAction(g *Engine, rng *rand.Rand) (core.Action, bool) {
	playerID := g.CurrentPlayerID()
	if playerID == "" {
		return core.Action{}, false
	}
	valid := g.GetValidActions(playerID)
	if len(valid) == 0 {
		return core.Action{}, false
	}

	var chosen core.Action
	last := valid[len(valid)-1]
	if last.Kind == core.ActionEndTurn && (len(valid) == 1 || rng.Float64() < endTurnBias) {
		chosen = last
	} else {
		chosen = valid[rng.Intn(len(valid))]
	}

	g.logger.Debug().
		Str("player_id", playerID).
		Str("action", chosen.Describe()).
		Int("options", len(valid)).
		Msg("Generated random action")
	return chosen, true
}

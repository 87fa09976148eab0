package game

// This file contains the per-player counters the engine keeps for reporting.

// PlayerStats are cumulative counters. They never feed back into the rules.
type PlayerStats struct {
	BattlesWon       int `json:"battles_won"`
	BattlesLost      int `json:"battles_lost"`
	HoldingsCaptured int `json:"holdings_captured"`
	HoldingsLost     int `json:"holdings_lost"`
	CardsDrawn       int `json:"cards_drawn"`
	CardsPlayed      int `json:"cards_played"`
	GoldSpent        int `json:"gold_spent"`
	SoldiersLost     int `json:"soldiers_lost"`
}

// Standing is one line of the final or current ranking.
type Standing struct {
	Rank        int         `json:"rank"`
	PlayerID    string      `json:"player_id"`
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	Prestige    int         `json:"prestige"`
	Territories int         `json:"territories"`
	Gold        int         `json:"gold"`
	Soldiers    int         `json:"soldiers"`
	Stats       PlayerStats `json:"stats"`
}

// Standings ranks the players the way the winner is chosen: prestige, then
// territories held, then seat order.
func (e *Engine) Standings() []Standing {
	ranked := e.scheduler.Standings()
	out := make([]Standing, len(ranked))
	for i, p := range ranked {
		out[i] = Standing{
			Rank:        i + 1,
			PlayerID:    p.ID,
			Name:        p.Name,
			Title:       string(p.Title),
			Prestige:    p.Prestige,
			Territories: len(e.gs.ownedHoldings(p.ID)),
			Gold:        p.Gold,
			Soldiers:    p.Soldiers,
			Stats:       p.Stats,
		}
	}
	e.logger.Debug().Int("players", len(out)).Msg("Standings computed")
	return out
}

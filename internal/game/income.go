package game

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events"
)

// IncomeManager pays every player at the start of a round
type IncomeManager struct {
	events   events.Publisher
	gameID   string
	rules    Rules
	logger   zerolog.Logger
}

// NewIncomeManager creates a new income manager
func NewIncomeManager(publisher events.Publisher, gameID string, rules Rules, logger zerolog.Logger) *IncomeManager {
	return &IncomeManager{
		events:   publisher,
		gameID:   gameID,
		rules:    rules,
		logger:   logger.With().Str("component", "IncomeManager").Logger(),
	}
}

// Calculate returns what p would collect from its holdings, fortifications
// and title stipends. It does not modify the state.
func (im *IncomeManager) Calculate(gs *GameState, p *Player) events.Income {
	var inc events.Income

	for _, id := range gs.ownedTowns(p.ID) {
		h := gs.Board.Holding(id)
		inc.Gold += h.Gold
		inc.Soldiers += h.Soldiers

		switch forts := gs.Territories[id].FortCount(); {
		case forts >= 2:
			inc.Gold += im.rules.FortIncomeFirst + im.rules.FortIncomeSecond
		case forts == 1:
			inc.Gold += im.rules.FortIncomeFirst
		}
	}

	inc.Gold += im.rules.CountStipend * len(p.Counties)
	inc.Gold += im.rules.DukeStipend * len(p.Duchies)
	if p.IsKing {
		inc.Gold += im.rules.KingStipend
	}
	return inc
}

// Apply pays the round's income to every player. Soldiers may exceed the army
// cap until upkeep.
func (im *IncomeManager) Apply(gs *GameState) map[string]events.Income {
	paid := make(map[string]events.Income, len(gs.Players))
	totalGold, totalSoldiers := 0, 0

	for _, p := range gs.Players {
		inc := im.Calculate(gs, p)
		p.Gold += inc.Gold
		p.Soldiers += inc.Soldiers
		p.LastIncomeGold = inc.Gold
		paid[p.ID] = inc

		totalGold += inc.Gold
		totalSoldiers += inc.Soldiers
	}

	im.events.Publish(events.NewIncomeAppliedEvent(im.gameID, gs.Round, paid))

	im.logger.Debug().
		Int("round", gs.Round).
		Int("total_gold", totalGold).
		Int("total_soldiers", totalSoldiers).
		Msg("Round income applied")

	return paid
}

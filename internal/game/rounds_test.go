package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/cards"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/core"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/states"
)

func TestIncomeCalculation(t *testing.T) {
	f := newFixture(t)
	f.own("p1", "xandoria", "xythera", "x_castle")
	p1 := f.player("p1")

	inc := f.e.incomeManager.Calculate(f.e.gs, p1)
	assert.Equal(t, 5+1+3+2, inc.Gold)
	assert.Equal(t, 200+400+300, inc.Soldiers)

	// Fortifications pay for the town whoever built them
	f.e.gs.Territories["xelphane"].Forts["p1"] = 1
	f.e.gs.Territories["xelphane"].Forts["p2"] = 1
	f.e.gs.Territories["xandoria"].Forts["p1"] = 1
	inc = f.e.incomeManager.Calculate(f.e.gs, p1)
	assert.Equal(t, 11+7+2, inc.Gold)

	f.own("p1", "uldorwyn", "xu_castle")
	inc = f.e.incomeManager.Calculate(f.e.gs, p1)
	assert.Equal(t, 20+4+4, inc.Gold)
}

func TestRoundIncomeAndUpkeep(t *testing.T) {
	f := newFixture(t)
	p1, p2 := f.player("p1"), f.player("p2")
	p1.Soldiers = 900
	p2.Soldiers = 900
	p2.BigWar = true

	f.endRound()

	assert.Equal(t, 2, f.e.Round())
	assert.Equal(t, "p1", f.e.CurrentPlayerID())
	assert.Equal(t, states.PhasePlayerTurn, f.e.Phase())
	assert.Equal(t, 500+200, p1.Soldiers, "capped at upkeep, then paid")
	assert.Equal(t, 900+200, p2.Soldiers, "big war doubles the cap")
	assert.Equal(t, 10, p1.Gold)
	assert.Equal(t, 5, p1.LastIncomeGold)
	assert.Len(t, f.eventsOfType(events.TypeRoundStarted), 2)
}

func TestTurnOrder(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		assert.Equal(t, id, f.e.CurrentPlayerID())
		assert.Equal(t, 1, f.e.Round())
		f.mustApply(core.EndTurn(id))
	}
	assert.Equal(t, "p1", f.e.CurrentPlayerID())
	assert.Equal(t, 2, f.e.Round())
}

func TestTurnFlagsResetEachTurn(t *testing.T) {
	f := newFixture(t, withDeck(cards.Counts{cards.Gold5: 4}))
	f.mustApply(core.DrawCard("p1"))
	f.mustApply(core.Attack("p1", "xelphane", "xandoria", 200))
	f.mustApply(core.EndTurn("p1"))

	assert.False(t, f.e.gs.CardDrawn)
	assert.False(t, f.e.gs.WarFought)
	assert.Zero(t, f.e.gs.ActionsThisTurn)
	assert.Contains(t, f.e.GetValidActions("p2"), core.DrawCard("p2"))
}

func TestAutoDraw(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.Rules.AutoDraw = true })

	assert.True(t, f.e.gs.CardDrawn)
	assert.Equal(t, 1, f.player("p1").Stats.CardsDrawn)
	f.mustApply(core.EndTurn("p1"))
	assert.Equal(t, 1, f.player("p2").Stats.CardsDrawn)
}

func TestGameEndsAtRoundLimit(t *testing.T) {
	f := newFixture(t)
	f.own("p3", "valoria")

	for i := 0; i < 10; i++ {
		require.False(t, f.e.IsGameOver(), "round %d", f.e.Round())
		f.endRound()
	}

	require.True(t, f.e.IsGameOver())
	assert.Equal(t, "p3", f.e.WinnerID())
	assert.Equal(t, "p3", f.e.Snapshot().WinnerID)
	assert.Empty(t, f.e.CurrentPlayerID())
	assert.Nil(t, f.e.GetValidActions("p1"))

	ended := f.eventsOfType(events.TypeGameEnded)
	require.Len(t, ended, 1)
	ev := ended[0].(*events.GameEndedEvent)
	assert.Equal(t, 10, ev.FinalRound)
	assert.Equal(t, "p3", ev.WinnerID)
	assert.Equal(t, "round limit 10 reached", ev.Reason)

	res := f.apply(core.EndTurn("p1"))
	assert.ErrorIs(t, res.Error, core.ErrGameOver)
}

func TestGameEndsAtVictoryThreshold(t *testing.T) {
	f := newFixture(t)
	f.player("p2").KingRounds = 9

	f.endRound()

	require.True(t, f.e.IsGameOver())
	assert.Equal(t, "p2", f.e.WinnerID())
	assert.Equal(t, 19, f.player("p2").Prestige)

	ev := f.eventsOfType(events.TypeGameEnded)[0].(*events.GameEndedEvent)
	assert.Equal(t, 1, ev.FinalRound)
	assert.Contains(t, ev.Reason, "prestige")
	assert.Equal(t, 19, ev.Prestige["p2"])
}

func TestKingEarnsPrestigeEachRound(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.Rules.VictoryThreshold = 100 })
	f.own("p1", "xandoria", "uldorwyn", "valoria", "velthar",
		"x_castle", "xu_castle", "v_castle", "king_castle")
	p1 := f.player("p1")
	require.True(t, p1.IsKing)
	require.Equal(t, 5+4+4+6, p1.Prestige)

	f.endRound()
	assert.Equal(t, 1, p1.KingRounds)
	assert.Equal(t, 21, p1.Prestige)

	// The crown's rounds stay after it is lost
	f.own("p2", "velthar")
	assert.False(t, p1.IsKing)
	assert.Equal(t, 1, p1.KingRounds)
	assert.Equal(t, 4+2+4+2, p1.Prestige)
}

func TestStandingsTiebreaks(t *testing.T) {
	f := newFixture(t)
	f.own("p2", "uldorwyn", "u_castle")
	f.own("p3", "valoria", "velthar", "quindara")

	standings := f.e.Standings()
	require.Len(t, standings, 4)

	var order []string
	for i, s := range standings {
		assert.Equal(t, i+1, s.Rank)
		order = append(order, s.PlayerID)
	}
	// p2 and p3 both have 4 prestige; p3 holds four holdings to p2's three
	assert.Equal(t, []string{"p3", "p2", "p1", "p4"}, order)
	assert.Equal(t, 4, standings[0].Prestige)
	assert.Equal(t, 4, standings[0].Territories)
	assert.Equal(t, "count", standings[1].Title)
}

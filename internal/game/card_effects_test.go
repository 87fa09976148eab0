package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/cards"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/core"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events"
)

func TestDrawCard(t *testing.T) {
	f := newFixture(t, withDeck(cards.Counts{cards.Gold25: 3}))
	p1 := f.player("p1")

	res := f.mustApply(core.DrawCard("p1"))
	require.NotNil(t, res.DrawnCard)
	assert.Equal(t, cards.Gold25, res.DrawnCard.Effect)
	assert.Equal(t, 30, p1.Gold)
	assert.Empty(t, p1.Hand, "events resolve immediately")
	assert.Equal(t, 1, f.e.gs.Deck.DiscardLen())
	assert.Equal(t, 1, p1.Stats.CardsDrawn)

	res = f.apply(core.DrawCard("p1"))
	assert.ErrorIs(t, res.Error, core.ErrAlreadyDrawn)

	drawn := f.eventsOfType(events.TypeCardDrawn)
	require.Len(t, drawn, 1)
	assert.True(t, drawn[0].(*events.CardDrawnEvent).Instant)
}

func TestDrawEligibility(t *testing.T) {
	f := newFixture(t)
	f.own("p1", "xandoria", "xythera", "uldorwyn")

	assert.NoError(t, f.e.canDraw(f.player("p1")), "four towns may still draw")

	f.own("p1", "umbrith")
	res := f.apply(core.DrawCard("p1"))
	assert.ErrorIs(t, res.Error, core.ErrDrawNotEligible)
	assert.NotContains(t, f.e.GetValidActions("p1"), core.DrawCard("p1"))
}

func TestHandLimitDiscardsOldestCard(t *testing.T) {
	f := newFixture(t, withDeck(cards.Counts{cards.Excalibur: 10}))
	p1 := f.player("p1")

	first := f.draw("p1")
	for i := 0; i < 7; i++ {
		f.draw("p1")
	}

	assert.Len(t, p1.Hand, 7)
	assert.NotContains(t, p1.Hand, first.ID)
	assert.Equal(t, 2, f.e.gs.Deck.Len())
	assert.Equal(t, []string{first.ID}, f.e.gs.Deck.DiscardPile())

	drawn := f.eventsOfType(events.TypeCardDrawn)
	require.Len(t, drawn, 8)
	assert.Equal(t, first.ID, drawn[7].(*events.CardDrawnEvent).DiscardedID)
	require.NoError(t, f.e.checkInvariants())
}

func TestExhaustedDeckReshufflesDiscards(t *testing.T) {
	f := newFixture(t, withDeck(cards.Counts{cards.Gold5: 1}))

	f.draw("p1")
	assert.Equal(t, 0, f.e.gs.Deck.Len())
	card := f.draw("p1")
	assert.Equal(t, cards.Gold5, card.Effect)

	// Every copy sits in a hand: nothing left to draw
	f2 := newFixture(t, withDeck(cards.Counts{cards.BigWar: 1}))
	f2.draw("p1")
	f2.e.gs.CardDrawn = false
	res := f2.apply(core.DrawCard("p1"))
	assert.ErrorIs(t, res.Error, core.ErrDeckExhausted)
}

func TestInstantCards(t *testing.T) {
	tests := []struct {
		name   string
		effect cards.Effect
		setup  func(f *fixture)
		check  func(t *testing.T, f *fixture)
	}{
		{
			name:   "volunteers stop at the army cap",
			effect: cards.Soldiers300,
			setup:  func(f *fixture) { f.player("p1").Soldiers = 400 },
			check: func(t *testing.T, f *fixture) {
				assert.Equal(t, 500, f.player("p1").Soldiers)
			},
		},
		{
			name:   "volunteers never disband",
			effect: cards.Soldiers100,
			setup:  func(f *fixture) { f.player("p1").Soldiers = 700 },
			check: func(t *testing.T, f *fixture) {
				assert.Equal(t, 700, f.player("p1").Soldiers)
			},
		},
		{
			name:   "raiders take the last income",
			effect: cards.Raiders,
			setup:  func(f *fixture) { f.player("p1").Gold = 12 },
			check: func(t *testing.T, f *fixture) {
				p1 := f.player("p1")
				assert.Equal(t, 7, p1.Gold)
				assert.Zero(t, p1.LastIncomeGold)
			},
		},
		{
			name:   "raiders cannot take more than the purse",
			effect: cards.Raiders,
			setup:  func(f *fixture) { f.player("p1").Gold = 3 },
			check: func(t *testing.T, f *fixture) {
				p1 := f.player("p1")
				assert.Zero(t, p1.Gold)
				assert.Zero(t, p1.LastIncomeGold)
			},
		},
		{
			name:   "crusade halves everyone",
			effect: cards.Crusade,
			setup:  func(f *fixture) { f.player("p2").Gold = 9 },
			check: func(t *testing.T, f *fixture) {
				assert.Equal(t, 2, f.player("p1").Gold)
				assert.Equal(t, 100, f.player("p1").Soldiers)
				assert.Equal(t, 4, f.player("p2").Gold)
				assert.Equal(t, 100, f.player("p4").Soldiers)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, withDeck(cards.Counts{tt.effect: 2}))
			tt.setup(f)
			f.mustApply(core.DrawCard("p1"))
			tt.check(t, f)
			assert.Empty(t, f.player("p1").Hand)
		})
	}
}

func TestBonusCards(t *testing.T) {
	t.Run("big war doubles the army cap", func(t *testing.T) {
		f := newFixture(t, withDeck(cards.Counts{cards.BigWar: 2}))
		p1 := f.player("p1")
		p1.Gold = 100
		card := f.draw("p1")

		res := f.apply(core.Recruit("p1", 400))
		assert.ErrorIs(t, res.Error, core.ErrArmyCap)

		f.mustApply(core.PlayCard("p1", card.ID, ""))
		f.mustApply(core.Recruit("p1", 400))
		assert.Equal(t, 600, p1.Soldiers)
		assert.Equal(t, 1000, f.e.Snapshot().Players[0].ArmyCap)

		f.mustApply(core.Attack("p1", "xelphane", "xandoria", 200))
		assert.False(t, p1.BigWar, "big war ends with the next attack")
	})

	t.Run("adventurer ignores the cap", func(t *testing.T) {
		f := newFixture(t, withDeck(cards.Counts{cards.Adventurer: 2}))
		p1 := f.player("p1")
		card := f.draw("p1")

		res := f.apply(core.PlayCard("p1", card.ID, ""))
		assert.ErrorIs(t, res.Error, core.ErrInsufficientGold)

		p1.Gold = 30
		f.mustApply(core.PlayCard("p1", card.ID, ""))
		assert.Equal(t, 700, p1.Soldiers)
		assert.Equal(t, 5, p1.Gold)
		assert.Equal(t, 1, p1.Stats.CardsPlayed)
	})

	t.Run("forbid mercenaries and enforce peace last the round", func(t *testing.T) {
		f := newFixture(t, withDeck(cards.Counts{cards.ForbidMercenaries: 1, cards.EnforcePeace: 1}))
		f.draw("p1")
		f.draw("p1")
		for _, id := range append([]string(nil), f.player("p1").Hand...) {
			f.mustApply(core.PlayCard("p1", id, ""))
		}
		assert.True(t, f.e.gs.ForbidMercenaries)
		assert.True(t, f.e.gs.EnforcePeace)

		f.mustApply(core.EndTurn("p1"))
		res := f.apply(core.Recruit("p2", 100))
		assert.ErrorIs(t, res.Error, core.ErrMercenariesForbidden)
		res = f.apply(core.Attack("p2", "ulverin", "uldorwyn", 200))
		assert.ErrorIs(t, res.Error, core.ErrPeaceEnforced)

		f.endRound()
		assert.False(t, f.e.gs.ForbidMercenaries)
		assert.False(t, f.e.gs.EnforcePeace)
	})

	t.Run("spy peeks without drawing", func(t *testing.T) {
		f := newFixture(t, withDeck(cards.Counts{cards.Spy: 1, cards.Gold5: 5}))
		for f.player("p1").handIndex("card-006") < 0 {
			f.draw("p1")
		}
		if f.e.gs.Deck.Len() == 0 {
			f.draw("p1")
		}
		before := f.e.gs.Deck.Len()

		res := f.mustApply(core.PlayCard("p1", "card-006", ""))
		assert.Contains(t, res.Message, "The spy reveals")
		assert.Equal(t, before, f.e.gs.Deck.Len())
	})
}

func TestClaimCards(t *testing.T) {
	f := newFixture(t, withDeck(cards.Counts{cards.ClaimU: 2, cards.DuchyClaim: 2}))
	p1 := f.player("p1")
	var claimU, duchy *cards.Card
	for claimU == nil || duchy == nil {
		c := f.draw("p1")
		if c.Effect == cards.ClaimU {
			claimU = c
		} else {
			duchy = c
		}
	}

	tests := []struct {
		card   *cards.Card
		target string
		err    error
	}{
		{claimU, "xandoria", core.ErrClaimScope},
		{claimU, "ulverin", core.ErrTargetOwned},
		{claimU, "u_castle", core.ErrNotATown},
		{claimU, "nowhere", core.ErrUnknownHolding},
		{duchy, "velthar", core.ErrClaimScope},
	}
	for _, tt := range tests {
		res := f.apply(core.PlayCard("p1", tt.card.ID, tt.target))
		assert.ErrorIs(t, res.Error, tt.err, "%s on %s", tt.card.Effect, tt.target)
	}

	f.mustApply(core.PlayCard("p1", claimU.ID, "umbrith"))
	assert.True(t, p1.Claims["umbrith"])

	res := f.apply(core.PlayCard("p1", duchy.ID, "umbrith"))
	assert.ErrorIs(t, res.Error, core.ErrAlreadyClaimed)
	f.mustApply(core.PlayCard("p1", duchy.ID, "uldorwyn"))

	p1.Gold = 20
	f.mustApply(core.ClaimTown("p1", "umbrith"))
	f.mustApply(core.ClaimTown("p1", "uldorwyn"))
	assert.Equal(t, []string{"xelphane", "uldorwyn", "umbrith"}, f.e.gs.ownedTowns("p1"))
	assert.Empty(t, p1.Claims)
}

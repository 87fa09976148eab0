package game

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/cards"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/core"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events"
	"github.com/mitchelldurbincs/KingdomEngine/internal/testutil"
)

// fixture is a started four-player game with scripted dice. Seats p1..p4
// start on xelphane, ulverin, vardhelm and quorwyn with 5 gold and 200
// soldiers each after the first income.
type fixture struct {
	t      *testing.T
	e      *Engine
	dice   *testutil.FixedDice
	events []events.Event
}

func testConfig(players int) Config {
	specs := make([]PlayerSpec, players)
	for i := range specs {
		specs[i] = PlayerSpec{ID: fmt.Sprintf("p%d", i+1), Name: testutil.PlayerNames[i]}
	}
	return Config{
		GameID:  "test-game",
		Players: specs,
		Rules:   DefaultRules(),
		Seed:    42,
		Logger:  testutil.NopLogger(),
	}
}

func newFixture(t *testing.T, opts ...func(*Config)) *fixture {
	t.Helper()

	f := &fixture{t: t, dice: testutil.NewFixedDice(7)}
	cfg := testConfig(4)
	cfg.Dice = f.dice
	bus := events.NewEventBus(zerolog.Nop())
	cfg.Events = bus
	for _, opt := range opts {
		opt(&cfg)
	}
	if d, ok := cfg.Dice.(*testutil.FixedDice); ok {
		f.dice = d
	}
	for _, typ := range []string{
		events.TypeGameStarted, events.TypeGameEnded, events.TypeRoundStarted,
		events.TypeCombatResolved, events.TypeTitleChanged, events.TypeHoldingCaptured,
		events.TypeActionRejected, events.TypeGameLocked, events.TypeCardDrawn,
	} {
		bus.On(typ, func(ev events.Event) {
			f.events = append(f.events, ev)
		})
	}

	e, err := NewEngine(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, e.Start())
	f.e = e
	return f
}

func withDice(rolls ...int) func(*Config) {
	return func(c *Config) { c.Dice = testutil.NewFixedDice(rolls...) }
}

func withDeck(counts cards.Counts) func(*Config) {
	return func(c *Config) { c.Rules.Deck = counts }
}

func withHuman(playerID string) func(*Config) {
	return func(c *Config) {
		for i := range c.Players {
			if c.Players[i].ID == playerID {
				c.Players[i].Human = true
			}
		}
	}
}

func (f *fixture) player(id string) *Player {
	p := f.e.gs.player(id)
	require.NotNil(f.t, p, "unknown player %s", id)
	return p
}

// own hands towns to a player and re-derives titles, as a capture would.
func (f *fixture) own(playerID string, towns ...string) {
	for _, id := range towns {
		f.e.gs.Territories[id].OwnerID = playerID
	}
	f.e.recomputeDerived()
}

func (f *fixture) apply(a core.Action) *ActionResult {
	f.t.Helper()
	return f.e.Apply(a)
}

func (f *fixture) mustApply(a core.Action) *ActionResult {
	f.t.Helper()
	res := f.e.Apply(a)
	require.True(f.t, res.Success, "%s rejected: %s", a, res.Message)
	return res
}

// endRound ends the turn of every remaining seat.
func (f *fixture) endRound() {
	f.t.Helper()
	round := f.e.Round()
	for f.e.Round() == round && !f.e.IsGameOver() {
		f.mustApply(core.EndTurn(f.e.CurrentPlayerID()))
	}
}

// draw gives p one card from the deck as if it were their draw for the turn.
func (f *fixture) draw(playerID string) *cards.Card {
	f.t.Helper()
	f.e.gs.CardDrawn = false
	card, _, err := f.e.drawCard(f.player(playerID))
	require.NoError(f.t, err)
	return card
}

func (f *fixture) eventsOfType(typ string) []events.Event {
	var out []events.Event
	for _, ev := range f.events {
		if ev.Type() == typ {
			out = append(out, ev)
		}
	}
	return out
}

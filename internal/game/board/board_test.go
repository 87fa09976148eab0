package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardBoardShape(t *testing.T) {
	b := Standard()

	assert.Len(t, b.IDs(), 19)
	assert.Len(t, b.Towns(), 12)
	assert.Equal(t, []string{"X", "U", "Q", "V"}, b.Counties())
	assert.Equal(t, []string{"XU", "QV"}, b.Duchies())
	assert.Same(t, b, Standard(), "board is shared")

	for _, c := range b.Counties() {
		assert.Len(t, b.TownsInCounty(c), 3, "county %s", c)
		capital := b.CapitalOf(c)
		require.NotEmpty(t, capital)
		assert.True(t, b.Holding(capital).Capital)
	}
}

func TestCountyAndDuchyLookups(t *testing.T) {
	b := Standard()

	assert.Equal(t, "XU", b.DuchyOf("U"))
	assert.Equal(t, "U", b.OtherCounty("X"))
	assert.Equal(t, "Q", b.OtherCounty("V"))
	assert.Equal(t, "QV", b.OtherDuchy("XU"))
	assert.ElementsMatch(t, []string{"Q", "V"}, b.CountiesInDuchy("QV"))
	assert.Equal(t, "x_castle", b.CountySeatOf("X"))
	assert.Equal(t, "qv_castle", b.DuchySeatOf("QV"))
	assert.Equal(t, "umbrith", b.CapitalOf("U"))
}

func TestAdjacency(t *testing.T) {
	b := Standard()

	tests := []struct {
		a, c string
		want bool
	}{
		{"xandoria", "xelphane", true},
		{"xandoria", "x_castle", true},
		{"x_castle", "xu_castle", true},
		{"xu_castle", KingdomSeatID, true},
		{"qv_castle", KingdomSeatID, true},
		{"xandoria", "ulverin", false},
		{"x_castle", "u_castle", false},
		{"xandoria", KingdomSeatID, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.Adjacent(tt.a, tt.c), "%s-%s", tt.a, tt.c)
		assert.Equal(t, tt.want, b.Adjacent(tt.c, tt.a), "%s-%s", tt.c, tt.a)
	}

	assert.Equal(t, []string{"xandoria", "xelphane", "xythera", "xu_castle"}, b.Neighbors("x_castle"))
}

func TestHoldingConstants(t *testing.T) {
	b := Standard()

	q := b.Holding("quindara")
	assert.Equal(t, 10, q.Gold)
	assert.Equal(t, 100, q.Soldiers)
	assert.Equal(t, -2, q.DefenseMod)
	assert.Equal(t, "QV", q.Duchy)

	u := b.Holding("umbrith")
	assert.Equal(t, 1, u.AttackMod)

	seat := b.Holding(KingdomSeatID)
	assert.Equal(t, KingdomSeat, seat.Type)
	assert.Equal(t, 4, seat.Type.BaseDefense())
	assert.Zero(t, seat.Gold)
	assert.True(t, seat.Type.IsSeat())
	assert.False(t, Town.IsSeat())
}

func TestHoldingPanicsOnUnknownID(t *testing.T) {
	b := Standard()

	_, ok := b.Lookup("atlantis")
	assert.False(t, ok)
	assert.Panics(t, func() { b.Holding("atlantis") })
}

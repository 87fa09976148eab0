package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIDs(n int) []string {
	cat, _ := NewCatalogue(Counts{Gold5: n})
	return cat.IDs()
}

func TestShuffleIsDeterministic(t *testing.T) {
	ids := testIDs(20)

	a := NewDeck(ids, 42)
	b := NewDeck(ids, 42)
	c := NewDeck(ids, 43)

	assert.Equal(t, a.DrawPile(), b.DrawPile())
	assert.NotEqual(t, a.DrawPile(), c.DrawPile())
	assert.ElementsMatch(t, ids, a.DrawPile())
}

func TestDrawRemovesTopCard(t *testing.T) {
	d := NewDeck(testIDs(5), 1)
	top := d.Peek(1)[0]

	got, err := d.Draw()
	require.NoError(t, err)
	assert.Equal(t, top, got)
	assert.Equal(t, 4, d.Len())
	assert.NotContains(t, d.DrawPile(), got)
}

func TestDrawReshufflesDiscard(t *testing.T) {
	d := NewDeck(testIDs(3), 7)

	var drawn []string
	for i := 0; i < 3; i++ {
		id, err := d.Draw()
		require.NoError(t, err)
		drawn = append(drawn, id)
	}
	assert.Zero(t, d.Len())

	for _, id := range drawn {
		d.Discard(id)
	}
	assert.Equal(t, 3, d.DiscardLen())
	assert.True(t, d.CanDraw())

	id, err := d.Draw()
	require.NoError(t, err)
	assert.Contains(t, drawn, id)
	assert.Zero(t, d.DiscardLen())
	assert.Equal(t, 2, d.Len())
}

func TestDrawFailsWhenEverythingIsEmpty(t *testing.T) {
	d := NewDeck(nil, 1)

	assert.False(t, d.CanDraw())
	_, err := d.Draw()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestPeekDoesNotDraw(t *testing.T) {
	d := NewDeck(testIDs(5), 3)

	assert.Len(t, d.Peek(3), 3)
	assert.Len(t, d.Peek(10), 5)
	assert.Equal(t, 5, d.Len())
}

func TestCardConservation(t *testing.T) {
	d := NewDeck(testIDs(10), 9)
	var hand []string

	for i := 0; i < 25; i++ {
		id, err := d.Draw()
		require.NoError(t, err)
		if i%2 == 0 {
			d.Discard(id)
		} else {
			hand = append(hand, id)
			if len(hand) > 3 {
				d.Discard(hand[0])
				hand = hand[1:]
			}
		}
		assert.Equal(t, 10, d.Len()+d.DiscardLen()+len(hand))
	}
}

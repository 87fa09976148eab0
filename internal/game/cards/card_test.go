package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogue(t *testing.T) {
	cat, err := NewCatalogue(DefaultCounts())
	require.NoError(t, err)

	assert.Equal(t, 66, cat.Len())
	assert.Equal(t, DefaultCounts().Total(), cat.Len())

	first, ok := cat.Get("card-001")
	require.True(t, ok)
	assert.Equal(t, Gold5, first.Effect)
	assert.Equal(t, 5, first.Value)
	assert.True(t, first.IsInstant())

	byEffect := map[Effect]int{}
	for _, id := range cat.IDs() {
		c, ok := cat.Get(id)
		require.True(t, ok)
		byEffect[c.Effect]++
	}
	assert.Equal(t, 7, byEffect[ClaimQ])
	assert.Equal(t, 1, byEffect[Crusade])
	assert.Zero(t, byEffect[Spy])
}

func TestCatalogueIsStable(t *testing.T) {
	a, err := NewCatalogue(DefaultCounts())
	require.NoError(t, err)
	b, err := NewCatalogue(DefaultCounts())
	require.NoError(t, err)

	for _, id := range a.IDs() {
		ca, _ := a.Get(id)
		cb, _ := b.Get(id)
		assert.Equal(t, ca, cb)
	}
}

func TestCatalogueRejectsBadCounts(t *testing.T) {
	_, err := NewCatalogue(Counts{"teleport": 1})
	assert.Error(t, err)

	_, err = NewCatalogue(Counts{Gold5: -1})
	assert.Error(t, err)
}

func TestCardClassification(t *testing.T) {
	cat, err := NewCatalogue(Counts{Excalibur: 1, ClaimX: 1, Crusade: 1, BigWar: 1})
	require.NoError(t, err)

	for _, id := range cat.IDs() {
		c, _ := cat.Get(id)
		switch c.Effect {
		case Excalibur:
			assert.True(t, c.IsCombat())
			assert.Equal(t, Bonus, c.Type)
		case ClaimX:
			assert.Equal(t, Claim, c.Type)
			assert.Equal(t, "X", c.County)
			assert.False(t, c.IsInstant())
		case Crusade:
			assert.Equal(t, GlobalEvent, c.Type)
			assert.True(t, c.IsInstant())
		case BigWar:
			assert.False(t, c.IsCombat())
		}
	}
	assert.Len(t, Effects(), 25)
}

package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mitchelldurbincs/KingdomEngine/internal/testutil"
)

func TestFortificationBonusTiers(t *testing.T) {
	tests := []struct {
		forts, bonus int
	}{
		{0, 0},
		{1, 1},
		{2, 3},
		{3, 5},
		{4, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.bonus, FortificationBonus(tt.forts), "forts=%d", tt.forts)
	}
}

func TestUndefendedTownFallsWithoutDefenderLosses(t *testing.T) {
	dice := testutil.NewFixedDice(2, 12)
	res := Resolve(Battle{
		Target:   "xandoria",
		Attacker: Force{PlayerID: "p1", Soldiers: 200},
		Defender: Force{PlayerID: "p2", Terrain: 3, Fortifications: 3},
	}, dice)

	assert.Equal(t, 2, dice.Rolled(), "defender still rolls")
	assert.True(t, res.Undefended)
	assert.True(t, res.AttackerWon)
	assert.Equal(t, 2, res.Attacker.SoldierBonus)
	assert.Equal(t, 100, res.Attacker.Losses)
	assert.Zero(t, res.Defender.Losses)
	assert.Less(t, res.Attacker.Strength, res.Defender.Strength)
}

func TestTieGoesToDefender(t *testing.T) {
	res := Resolve(Battle{
		Attacker: Force{PlayerID: "p1", Soldiers: 300},
		Defender: Force{PlayerID: "p2", Soldiers: 200, Terrain: 1},
	}, testutil.NewFixedDice(7, 7))

	assert.Equal(t, 10, res.Attacker.Strength)
	assert.Equal(t, 10, res.Defender.Strength)
	assert.True(t, res.Tie)
	assert.False(t, res.AttackerWon)
	assert.Equal(t, 300, res.Attacker.Losses)
	assert.Equal(t, 100, res.Defender.Losses)
}

func TestStrengthBreakdown(t *testing.T) {
	res := Resolve(Battle{
		Attacker: Force{PlayerID: "p1", Soldiers: 450, Terrain: 1, TitleBonus: 1, CardBonus: 2},
		Defender: Force{PlayerID: "p2", Soldiers: 199, Terrain: 3, Fortifications: 2, TitleBonus: 1},
	}, testutil.NewFixedDice(8, 5))

	assert.Equal(t, 8+4+1+1+2, res.Attacker.Strength)
	assert.Equal(t, 5+1+3+3+1, res.Defender.Strength)
	assert.Equal(t, 3, res.Defender.FortBonus)
	assert.True(t, res.AttackerWon)
	assert.Equal(t, 225, res.Attacker.Losses)
	assert.Equal(t, 199, res.Defender.Losses)
}

func TestCardEffects(t *testing.T) {
	t.Run("excalibur keeps the higher roll", func(t *testing.T) {
		dice := testutil.NewFixedDice(3, 11, 6)
		res := Resolve(Battle{
			Attacker: Force{Soldiers: 200, Effects: Effects{Excalibur: true}},
			Defender: Force{Soldiers: 200},
		}, dice)
		assert.Equal(t, []int{3, 11}, res.Attacker.Rolls)
		assert.Equal(t, 11, res.Attacker.Dice)
		assert.Equal(t, 6, res.Defender.Dice)
		assert.Equal(t, []string{"excalibur"}, res.Attacker.Effects)
	})

	t.Run("poisoned arrows halve the opponent", func(t *testing.T) {
		res := Resolve(Battle{
			Attacker: Force{Soldiers: 200},
			Defender: Force{Soldiers: 200, Effects: Effects{PoisonedArrows: true}},
		}, testutil.NewFixedDice(9, 4))
		assert.Equal(t, 4, res.Attacker.Dice)
		assert.Equal(t, 4, res.Defender.Dice)
		assert.False(t, res.AttackerWon)
	})

	t.Run("talented commander wins without losses", func(t *testing.T) {
		res := Resolve(Battle{
			Attacker: Force{Soldiers: 400, Effects: Effects{TalentedCommander: true}},
			Defender: Force{Soldiers: 100},
		}, testutil.NewFixedDice(10, 2))
		assert.True(t, res.AttackerWon)
		assert.Zero(t, res.Attacker.Losses)
		assert.Equal(t, 100, res.Defender.Losses)
	})

	t.Run("duel ignores armies", func(t *testing.T) {
		res := Resolve(Battle{
			Attacker: Force{Soldiers: 1000, Effects: Effects{Duel: true}},
			Defender: Force{Soldiers: 100},
		}, testutil.NewFixedDice(6, 6))
		assert.False(t, res.Undefended)
		assert.Zero(t, res.Attacker.SoldierBonus)
		assert.False(t, res.AttackerWon)
		assert.Zero(t, res.Attacker.Losses)
		assert.Zero(t, res.Defender.Losses)
	})

	t.Run("duel does not hold an empty town", func(t *testing.T) {
		res := Resolve(Battle{
			Target:   "xandoria",
			Attacker: Force{PlayerID: "p1", Soldiers: 200, Effects: Effects{Duel: true}},
			Defender: Force{Terrain: 3},
		}, testutil.NewFixedDice(2, 12))
		assert.True(t, res.Undefended)
		assert.True(t, res.AttackerWon)
		assert.Less(t, res.Attacker.Strength, res.Defender.Strength)
		assert.Zero(t, res.Attacker.Losses)
		assert.Zero(t, res.Defender.Losses)
	})
}

func TestResolveIsDeterministicForASeed(t *testing.T) {
	battle := Battle{
		Target:   "velthar",
		Attacker: Force{PlayerID: "p1", Soldiers: 600, Terrain: 1},
		Defender: Force{PlayerID: "p3", Soldiers: 400, Terrain: 3, Fortifications: 1},
	}

	for seed := uint64(1); seed <= 20; seed++ {
		a := Resolve(battle, NewRandDice(seed))
		b := Resolve(battle, NewRandDice(seed))
		assert.Equal(t, a, b, "seed %d", seed)
	}
}

func TestRandDiceRange(t *testing.T) {
	d := NewRandDice(99)
	for i := 0; i < 500; i++ {
		r := d.Roll2d6()
		assert.GreaterOrEqual(t, r, 2)
		assert.LessOrEqual(t, r, 12)
	}
}

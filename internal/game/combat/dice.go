package combat

import "golang.org/x/exp/rand"

// Dice produces the sum of two six-sided dice.
type Dice interface {
	Roll2d6() int
}

// RandDice rolls from a seeded source, so a game replays identically from its seed.
type RandDice struct {
	rng *rand.Rand
}

// NewRandDice returns dice seeded with seed.
func NewRandDice(seed uint64) *RandDice {
	return &RandDice{rng: rand.New(rand.NewSource(seed))}
}

func (d *RandDice) Roll2d6() int {
	return d.rng.Intn(6) + 1 + d.rng.Intn(6) + 1
}

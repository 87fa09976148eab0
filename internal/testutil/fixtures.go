package testutil

import "sync"

// FixedDice returns scripted 2d6 totals in order and then repeats the last one.
// It satisfies combat.Dice.
type FixedDice struct {
	mu    sync.Mutex
	rolls []int
	next  int
}

// NewFixedDice scripts the rolls. With no rolls every roll is 7.
func NewFixedDice(rolls ...int) *FixedDice {
	if len(rolls) == 0 {
		rolls = []int{7}
	}
	return &FixedDice{rolls: rolls}
}

func (d *FixedDice) Roll2d6() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	r := d.rolls[len(d.rolls)-1]
	if d.next < len(d.rolls) {
		r = d.rolls[d.next]
	}
	d.next++
	return r
}

// Rolled is the number of rolls consumed so far.
func (d *FixedDice) Rolled() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.next
}

// PlayerNames are the default seat names used by fixtures.
var PlayerNames = []string{"Aldric", "Beatrix", "Cedric", "Dagny", "Edmund", "Freya"}

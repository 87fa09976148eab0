package cards

import (
	"errors"

	"golang.org/x/exp/rand"
)

// ErrEmpty is returned by Draw when both the draw and discard piles are empty.
var ErrEmpty = errors.New("deck and discard pile are empty")

// Deck orders card ids. It knows nothing about what the cards do.
type Deck struct {
	draw    []string
	discard []string
	rng     *rand.Rand
}

// NewDeck returns a deck holding ids, shuffled with seed.
func NewDeck(ids []string, seed uint64) *Deck {
	d := &Deck{draw: append([]string(nil), ids...)}
	d.Shuffle(seed)
	return d
}

// Shuffle reseeds the deck and shuffles the draw pile. The same seed and
// contents always give the same order.
func (d *Deck) Shuffle(seed uint64) {
	d.rng = rand.New(rand.NewSource(seed))
	d.shuffleDraw()
}

func (d *Deck) shuffleDraw() {
	d.rng.Shuffle(len(d.draw), func(i, j int) {
		d.draw[i], d.draw[j] = d.draw[j], d.draw[i]
	})
}

// Draw removes and returns the top card. An empty draw pile is refilled from
// the shuffled discard pile first.
func (d *Deck) Draw() (string, error) {
	if len(d.draw) == 0 {
		if len(d.discard) == 0 {
			return "", ErrEmpty
		}
		d.draw, d.discard = d.discard, nil
		d.shuffleDraw()
	}
	top := d.draw[0]
	d.draw = d.draw[1:]
	return top, nil
}

// Discard puts a card on the discard pile.
func (d *Deck) Discard(id string) {
	d.discard = append(d.discard, id)
}

// Peek returns up to n ids from the top of the draw pile without drawing them.
func (d *Deck) Peek(n int) []string {
	if n > len(d.draw) {
		n = len(d.draw)
	}
	return append([]string(nil), d.draw[:n]...)
}

// CanDraw reports whether Draw would succeed.
func (d *Deck) CanDraw() bool {
	return len(d.draw) > 0 || len(d.discard) > 0
}

// Len is the size of the draw pile.
func (d *Deck) Len() int {
	return len(d.draw)
}

// DiscardLen is the size of the discard pile.
func (d *Deck) DiscardLen() int {
	return len(d.discard)
}

// DrawPile returns a copy of the draw pile, top first.
func (d *Deck) DrawPile() []string {
	return append([]string(nil), d.draw...)
}

// DiscardPile returns a copy of the discard pile, oldest first.
func (d *Deck) DiscardPile() []string {
	return append([]string(nil), d.discard...)
}

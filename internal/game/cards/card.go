// Package cards defines the card catalogue and the draw/discard deck.
package cards

import "fmt"

// Type groups cards by when their effect happens.
type Type string

const (
	PersonalEvent Type = "personal_event"
	GlobalEvent   Type = "global_event"
	Bonus         Type = "bonus"
	Claim         Type = "claim"
)

// Effect identifies what a card does.
type Effect string

const (
	Gold5       Effect = "gold_5"
	Gold10      Effect = "gold_10"
	Gold15      Effect = "gold_15"
	Gold25      Effect = "gold_25"
	Soldiers100 Effect = "soldiers_100"
	Soldiers200 Effect = "soldiers_200"
	Soldiers300 Effect = "soldiers_300"
	Raiders     Effect = "raiders"

	Crusade Effect = "crusade"

	BigWar            Effect = "big_war"
	Adventurer        Effect = "adventurer"
	Excalibur         Effect = "excalibur"
	PoisonedArrows    Effect = "poisoned_arrows"
	ForbidMercenaries Effect = "forbid_mercenaries"
	TalentedCommander Effect = "talented_commander"
	VassalRevolt      Effect = "vassal_revolt"
	EnforcePeace      Effect = "enforce_peace"
	Duel              Effect = "duel"
	Spy               Effect = "spy"

	ClaimX        Effect = "claim_x"
	ClaimU        Effect = "claim_u"
	ClaimV        Effect = "claim_v"
	ClaimQ        Effect = "claim_q"
	DuchyClaim    Effect = "duchy_claim"
	UltimateClaim Effect = "ultimate_claim"
)

type effectSpec struct {
	effect      Effect
	name        string
	typ         Type
	value       int
	county      string
	description string
}

// Catalogue order. Card ids are assigned in this order so a given set of
// counts always produces the same ids.
var effectSpecs = []effectSpec{
	{Gold5, "Gold Chest", PersonalEvent, 5, "", "Gain 5 gold."},
	{Gold10, "Gold Chest", PersonalEvent, 10, "", "Gain 10 gold."},
	{Gold15, "Gold Chest", PersonalEvent, 15, "", "Gain 15 gold."},
	{Gold25, "Gold Chest", PersonalEvent, 25, "", "Gain 25 gold."},
	{Soldiers100, "Volunteers", PersonalEvent, 100, "", "Gain 100 soldiers up to the army cap."},
	{Soldiers200, "Volunteers", PersonalEvent, 200, "", "Gain 200 soldiers up to the army cap."},
	{Soldiers300, "Volunteers", PersonalEvent, 300, "", "Gain 300 soldiers up to the army cap."},
	{Raiders, "Raiders", PersonalEvent, 0, "", "Lose this round's gold income."},
	{Crusade, "Crusade", GlobalEvent, 0, "", "Every player loses half their gold and soldiers."},
	{BigWar, "Big War", Bonus, 0, "", "Army cap doubled until your next war."},
	{Adventurer, "Adventurer", Bonus, 500, "", "Pay 25 gold for 500 soldiers, ignoring the army cap."},
	{Excalibur, "Excalibur", Bonus, 0, "", "Roll twice in your next combat and keep the higher roll."},
	{PoisonedArrows, "Poisoned Arrows", Bonus, 0, "", "Halve your opponent's dice in your next combat."},
	{ForbidMercenaries, "Forbid Mercenaries", Bonus, 0, "", "Nobody may recruit for the rest of the round."},
	{TalentedCommander, "Talented Commander", Bonus, 0, "", "Lose no soldiers when you win your next combat."},
	{VassalRevolt, "Vassal Revolt", Bonus, 0, "", "Attack a vassal inside your own domain once."},
	{EnforcePeace, "Enforce Peace", Bonus, 0, "", "Nobody may attack for the rest of the round."},
	{Duel, "Duel", Bonus, 0, "", "Your next combat is fought without armies."},
	{Spy, "Spy", Bonus, 3, "", "Look at the next three cards of the deck."},
	{ClaimX, "Claim on X", Claim, 0, "X", "Claim a town in county X."},
	{ClaimU, "Claim on U", Claim, 0, "U", "Claim a town in county U."},
	{ClaimV, "Claim on V", Claim, 0, "V", "Claim a town in county V."},
	{ClaimQ, "Claim on Q", Claim, 0, "Q", "Claim a town in county Q."},
	{DuchyClaim, "Duchy Claim", Claim, 0, "", "Claim a town in a duchy where you already hold a town."},
	{UltimateClaim, "Ultimate Claim", Claim, 0, "", "Claim any town."},
}

// Effects returns every effect in catalogue order.
func Effects() []Effect {
	out := make([]Effect, len(effectSpecs))
	for i, s := range effectSpecs {
		out[i] = s.effect
	}
	return out
}

func specFor(e Effect) (effectSpec, bool) {
	for _, s := range effectSpecs {
		if s.effect == e {
			return s, true
		}
	}
	return effectSpec{}, false
}

// Card is immutable once the catalogue is built.
type Card struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        Type   `json:"type"`
	Effect      Effect `json:"effect"`
	Value       int    `json:"value,omitempty"`
	County      string `json:"county,omitempty"`
	Description string `json:"description"`
}

// IsInstant reports whether the card resolves as soon as it is drawn.
func (c *Card) IsInstant() bool {
	return c.Type == PersonalEvent || c.Type == GlobalEvent
}

// IsClaim reports whether the card grants a claim on a town.
func (c *Card) IsClaim() bool {
	return c.Type == Claim
}

// IsCombat reports whether the card modifies the holder's next combat.
func (c *Card) IsCombat() bool {
	switch c.Effect {
	case Excalibur, PoisonedArrows, TalentedCommander, Duel:
		return true
	}
	return false
}

// Counts is the number of copies of each effect in a deck.
type Counts map[Effect]int

// DefaultCounts is the standard deck composition.
func DefaultCounts() Counts {
	return Counts{
		Gold5:             4,
		Gold10:            4,
		Gold15:            3,
		Gold25:            3,
		Raiders:           3,
		Crusade:           1,
		BigWar:            3,
		Excalibur:         3,
		PoisonedArrows:    3,
		TalentedCommander: 4,
		VassalRevolt:      3,
		EnforcePeace:      3,
		Duel:              1,
		ClaimX:            7,
		ClaimU:            7,
		ClaimV:            7,
		ClaimQ:            7,
	}
}

// Total returns the number of cards the counts describe.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Catalogue is the full set of cards in one game, keyed by id.
type Catalogue struct {
	cards map[string]*Card
	order []string
}

// NewCatalogue creates one card per copy in counts. Ids are card-001, card-002, ...
func NewCatalogue(counts Counts) (*Catalogue, error) {
	for e, n := range counts {
		if _, ok := specFor(e); !ok {
			return nil, fmt.Errorf("unknown card effect %q", e)
		}
		if n < 0 {
			return nil, fmt.Errorf("negative count %d for card effect %q", n, e)
		}
	}

	cat := &Catalogue{cards: make(map[string]*Card, counts.Total())}
	for _, s := range effectSpecs {
		for i := 0; i < counts[s.effect]; i++ {
			id := fmt.Sprintf("card-%03d", len(cat.order)+1)
			cat.cards[id] = &Card{
				ID:          id,
				Name:        s.name,
				Type:        s.typ,
				Effect:      s.effect,
				Value:       s.value,
				County:      s.county,
				Description: s.description,
			}
			cat.order = append(cat.order, id)
		}
	}
	return cat, nil
}

// Get returns the card with the given id.
func (c *Catalogue) Get(id string) (*Card, bool) {
	card, ok := c.cards[id]
	return card, ok
}

// IDs returns every card id in catalogue order.
func (c *Catalogue) IDs() []string {
	return append([]string(nil), c.order...)
}

// Len is the number of cards in the game.
func (c *Catalogue) Len() int {
	return len(c.order)
}

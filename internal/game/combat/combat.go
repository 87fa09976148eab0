// Package combat resolves a single battle between an attacker and a defender.
//
// Resolve is a pure function of its inputs and the dice it is handed.
package combat

import "slices"

// Effects are the one-shot combat cards a side brings into a battle.
type Effects struct {
	Excalibur         bool `json:"excalibur,omitempty"`
	PoisonedArrows    bool `json:"poisoned_arrows,omitempty"`
	TalentedCommander bool `json:"talented_commander,omitempty"`
	Duel              bool `json:"duel,omitempty"`
}

// Names lists the active effects by card effect name.
func (e Effects) Names() []string {
	var out []string
	if e.Excalibur {
		out = append(out, "excalibur")
	}
	if e.PoisonedArrows {
		out = append(out, "poisoned_arrows")
	}
	if e.TalentedCommander {
		out = append(out, "talented_commander")
	}
	if e.Duel {
		out = append(out, "duel")
	}
	return out
}

// Force is one side of a battle.
type Force struct {
	PlayerID string
	Soldiers int
	// Terrain is the attack modifier of the source holding for the attacker,
	// and base defence plus defence modifier of the target for the defender.
	Terrain        int
	Fortifications int
	TitleBonus     int
	CardBonus      int
	Effects        Effects
}

// Battle is everything Resolve needs.
type Battle struct {
	Target   string
	Attacker Force
	Defender Force
}

// Breakdown is one side's strength, term by term.
type Breakdown struct {
	Rolls        []int    `json:"rolls"`
	Dice         int      `json:"dice"`
	SoldierBonus int      `json:"soldier_bonus"`
	TerrainBonus int      `json:"terrain_bonus"`
	FortBonus    int      `json:"fortification_bonus"`
	TitleBonus   int      `json:"title_bonus"`
	CardBonus    int      `json:"card_bonus"`
	Strength     int      `json:"strength"`
	Committed    int      `json:"committed"`
	Losses       int      `json:"losses"`
	Effects      []string `json:"effects,omitempty"`
}

// Result is the outcome of a battle.
type Result struct {
	Target      string    `json:"target"`
	AttackerID  string    `json:"attacker_id"`
	DefenderID  string    `json:"defender_id,omitempty"`
	Attacker    Breakdown `json:"attacker"`
	Defender    Breakdown `json:"defender"`
	AttackerWon bool      `json:"attacker_won"`
	Undefended  bool      `json:"undefended"`
	Tie         bool      `json:"tie"`
}

// Clone returns a copy of r that shares no slices with it.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	c := *r
	c.Attacker = r.Attacker.clone()
	c.Defender = r.Defender.clone()
	return &c
}

func (b Breakdown) clone() Breakdown {
	b.Rolls = slices.Clone(b.Rolls)
	b.Effects = slices.Clone(b.Effects)
	return b
}

// FortificationBonus is the cumulative defence of n fortifications: +1, +2, +2.
func FortificationBonus(n int) int {
	tiers := [...]int{1, 2, 2}
	bonus := 0
	for i := 0; i < n && i < len(tiers); i++ {
		bonus += tiers[i]
	}
	return bonus
}

func roll(d Dice, excalibur bool) []int {
	if excalibur {
		return []int{d.Roll2d6(), d.Roll2d6()}
	}
	return []int{d.Roll2d6()}
}

func best(rolls []int) int {
	m := rolls[0]
	for _, r := range rolls[1:] {
		if r > m {
			m = r
		}
	}
	return m
}

// Resolve fights a battle. The attacker rolls first. Ties go to the defender.
// A defender with no committed soldiers loses automatically and loses nothing;
// the dice are still rolled so the random stream does not depend on the outcome.
func Resolve(b Battle, dice Dice) Result {
	duel := b.Attacker.Effects.Duel || b.Defender.Effects.Duel
	attCommitted, defCommitted := b.Attacker.Soldiers, b.Defender.Soldiers
	if duel {
		attCommitted, defCommitted = 0, 0
	}

	att := Breakdown{Rolls: roll(dice, b.Attacker.Effects.Excalibur), Committed: attCommitted}
	def := Breakdown{Rolls: roll(dice, b.Defender.Effects.Excalibur), Committed: defCommitted}
	att.Dice, def.Dice = best(att.Rolls), best(def.Rolls)
	if b.Attacker.Effects.PoisonedArrows {
		def.Dice /= 2
	}
	if b.Defender.Effects.PoisonedArrows {
		att.Dice /= 2
	}

	att.SoldierBonus = attCommitted / 100
	att.TerrainBonus = b.Attacker.Terrain
	att.TitleBonus = b.Attacker.TitleBonus
	att.CardBonus = b.Attacker.CardBonus
	att.Strength = att.Dice + att.SoldierBonus + att.TerrainBonus + att.TitleBonus + att.CardBonus
	att.Effects = b.Attacker.Effects.Names()

	def.SoldierBonus = defCommitted / 100
	def.TerrainBonus = b.Defender.Terrain
	def.FortBonus = FortificationBonus(b.Defender.Fortifications)
	def.TitleBonus = b.Defender.TitleBonus
	def.CardBonus = b.Defender.CardBonus
	def.Strength = def.Dice + def.SoldierBonus + def.TerrainBonus + def.FortBonus + def.TitleBonus + def.CardBonus
	def.Effects = b.Defender.Effects.Names()

	res := Result{
		Target:     b.Target,
		AttackerID: b.Attacker.PlayerID,
		DefenderID: b.Defender.PlayerID,
		Undefended: b.Defender.Soldiers == 0,
		Tie:        att.Strength == def.Strength,
	}
	res.AttackerWon = res.Undefended || att.Strength > def.Strength

	if res.AttackerWon {
		if !b.Attacker.Effects.TalentedCommander {
			att.Losses = attCommitted / 2
		}
		def.Losses = defCommitted
	} else {
		att.Losses = attCommitted
		if !b.Defender.Effects.TalentedCommander {
			def.Losses = defCommitted / 2
		}
	}

	res.Attacker, res.Defender = att, def
	return res
}

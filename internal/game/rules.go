package game

import (
	"fmt"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/cards"
)

// Player count limits
const (
	MinPlayers = 4
	MaxPlayers = 6
)

// Rules holds every tunable constant of a game. A game keeps the Rules it was
// created with even if the configuration is reloaded later.
type Rules struct {
	VictoryThreshold int         `json:"victory_threshold"`
	MaxRounds        map[int]int `json:"max_rounds"`

	CountCost         int `json:"count_cost"`
	DukeCost          int `json:"duke_cost"`
	KingCost          int `json:"king_cost"`
	FakeClaimCost     int `json:"fake_claim_cost"`
	ClaimTownCost     int `json:"claim_town_cost"`
	FortificationCost int `json:"fortification_cost"`
	AdventurerCost    int `json:"adventurer_cost"`

	MinAttackSoldiers int `json:"min_attack_soldiers"`
	RecruitBlock      int `json:"recruit_block"`
	RecruitBlockCost  int `json:"recruit_block_cost"`

	DrawMaxTowns int  `json:"draw_max_towns"`
	HandLimit    int  `json:"hand_limit"`
	AutoDraw     bool `json:"auto_draw"`

	BaronArmyCap int `json:"baron_army_cap"`
	CountArmyCap int `json:"count_army_cap"`
	DukeArmyCap  int `json:"duke_army_cap"`
	KingArmyCap  int `json:"king_army_cap"`

	MaxFortsPerTown   int `json:"max_forts_per_town"`
	MaxFortsPerOwner  int `json:"max_forts_per_owner"`
	MaxFortsPerPlayer int `json:"max_forts_per_player"`
	FortIncomeFirst   int `json:"fort_income_first"`
	FortIncomeSecond  int `json:"fort_income_second"`

	CountStipend int `json:"count_stipend"`
	DukeStipend  int `json:"duke_stipend"`
	KingStipend  int `json:"king_stipend"`

	StartingGold        int  `json:"starting_gold"`
	StartingSoldiers    int  `json:"starting_soldiers"`
	RandomStartingTowns bool `json:"random_starting_towns"`

	HistoryLimit int          `json:"history_limit"`
	Deck         cards.Counts `json:"deck"`
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		VictoryThreshold:  18,
		MaxRounds:         map[int]int{4: 10, 5: 11, 6: 12},
		CountCost:         25,
		DukeCost:          50,
		KingCost:          75,
		FakeClaimCost:     35,
		ClaimTownCost:     10,
		FortificationCost: 10,
		AdventurerCost:    25,
		MinAttackSoldiers: 200,
		RecruitBlock:      100,
		RecruitBlockCost:  5,
		DrawMaxTowns:      4,
		HandLimit:         7,
		BaronArmyCap:      500,
		CountArmyCap:      800,
		DukeArmyCap:       1200,
		KingArmyCap:       2000,
		MaxFortsPerTown:   3,
		MaxFortsPerOwner:  2,
		MaxFortsPerPlayer: 4,
		FortIncomeFirst:   2,
		FortIncomeSecond:  5,
		CountStipend:      2,
		DukeStipend:       4,
		KingStipend:       8,
		HistoryLimit:      500,
		Deck:              cards.DefaultCounts(),
	}
}

// MaxRoundsFor returns the round limit for a game with n players.
func (r Rules) MaxRoundsFor(n int) int {
	return r.MaxRounds[n]
}

// ArmyCap returns the army cap of a title, doubled while Big War is active.
func (r Rules) ArmyCap(title Title, bigWar bool) int {
	var limit int
	switch title {
	case TitleKing:
		limit = r.KingArmyCap
	case TitleDuke:
		limit = r.DukeArmyCap
	case TitleCount:
		limit = r.CountArmyCap
	default:
		limit = r.BaronArmyCap
	}
	if bigWar {
		limit *= 2
	}
	return limit
}

// TitleCost returns the gold needed to claim title.
func (r Rules) TitleCost(title Title) int {
	switch title {
	case TitleCount:
		return r.CountCost
	case TitleDuke:
		return r.DukeCost
	case TitleKing:
		return r.KingCost
	}
	return 0
}

// RecruitCost returns the gold needed for soldiers, which must be a positive
// multiple of RecruitBlock.
func (r Rules) RecruitCost(soldiers int) int {
	return soldiers / r.RecruitBlock * r.RecruitBlockCost
}

// Validate checks the rule set for values the engine cannot work with.
func (r Rules) Validate() error {
	if r.VictoryThreshold <= 0 {
		return fmt.Errorf("victory threshold must be positive, got %d", r.VictoryThreshold)
	}
	for n := MinPlayers; n <= MaxPlayers; n++ {
		if r.MaxRounds[n] <= 0 {
			return fmt.Errorf("max rounds for %d players must be positive", n)
		}
	}
	if r.RecruitBlock <= 0 {
		return fmt.Errorf("recruit block must be positive, got %d", r.RecruitBlock)
	}
	if r.MinAttackSoldiers <= 0 {
		return fmt.Errorf("minimum attack must be positive, got %d", r.MinAttackSoldiers)
	}
	if r.HandLimit <= 0 {
		return fmt.Errorf("hand limit must be positive, got %d", r.HandLimit)
	}
	if r.MaxFortsPerOwner > r.MaxFortsPerTown {
		return fmt.Errorf("per-owner fortification cap %d exceeds per-town cap %d", r.MaxFortsPerOwner, r.MaxFortsPerTown)
	}
	for _, c := range []int{r.CountCost, r.DukeCost, r.KingCost, r.FakeClaimCost, r.ClaimTownCost, r.FortificationCost, r.AdventurerCost, r.RecruitBlockCost} {
		if c < 0 {
			return fmt.Errorf("costs must not be negative, got %d", c)
		}
	}
	if r.Deck.Total() == 0 {
		return fmt.Errorf("deck must contain at least one card")
	}
	return nil
}

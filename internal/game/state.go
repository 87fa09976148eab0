package game

import (
	"sort"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/board"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/cards"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/combat"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/core"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/states"
)

// Title is a player's rank. A player holds exactly one.
type Title string

const (
	TitleBaron Title = "baron"
	TitleCount Title = "count"
	TitleDuke  Title = "duke"
	TitleKing  Title = "king"
)

// Rank orders titles from baron (0) to king (3).
func (t Title) Rank() int {
	switch t {
	case TitleCount:
		return 1
	case TitleDuke:
		return 2
	case TitleKing:
		return 3
	}
	return 0
}

// Territory is the mutable part of a holding.
type Territory struct {
	ID      string
	OwnerID string
	// Forts counts fortifications per player who placed them.
	Forts map[string]int
}

// FortCount is the total number of fortifications on the territory.
func (t *Territory) FortCount() int {
	n := 0
	for _, c := range t.Forts {
		n += c
	}
	return n
}

// Player is one seat at the table.
type Player struct {
	ID    string
	Name  string
	Seat  int
	Human bool

	Gold     int
	Soldiers int

	// Derived by recomputeDerived
	Title    Title
	Counties []string
	Duchies  []string
	IsKing   bool
	Prestige int

	// KingRounds counts completed rounds spent as King; it survives losing the crown.
	KingRounds int

	Hand   []string
	Claims map[string]bool

	// Armed combat cards, consumed by the next combat
	Armed        combat.Effects
	VassalRevolt bool
	BigWar       bool

	LastIncomeGold int
	Stats          PlayerStats
}

func (p *Player) holdsCounty(county string) bool {
	for _, c := range p.Counties {
		if c == county {
			return true
		}
	}
	return false
}

func (p *Player) holdsDuchy(duchy string) bool {
	for _, d := range p.Duchies {
		if d == duchy {
			return true
		}
	}
	return false
}

func (p *Player) handIndex(cardID string) int {
	for i, id := range p.Hand {
		if id == cardID {
			return i
		}
	}
	return -1
}

func (p *Player) removeFromHand(cardID string) {
	if i := p.handIndex(cardID); i >= 0 {
		p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	}
}

func (p *Player) claimList() []string {
	out := make([]string, 0, len(p.Claims))
	for id := range p.Claims {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// PendingCombat is an attack waiting for a human defender.
type PendingCombat struct {
	AttackerID string
	DefenderID string
	Source     string
	Target     string
	Soldiers   int
	// Cards are the attacker's committed card ids; they leave the hand at attack time.
	Cards   []string
	Effects combat.Effects
	Round   int
}

// HistoryEntry is one line of the audit log.
type HistoryEntry struct {
	Round   int
	Phase   states.GamePhase
	Action  *core.Action
	Message string
	Combat  *combat.Result
}

// GameState is the root aggregate of one game.
type GameState struct {
	Round         int
	CurrentPlayer int

	CardDrawn bool
	WarFought bool
	// Round-wide effects, cleared when the next round starts
	ForbidMercenaries bool
	EnforcePeace      bool
	ActionsThisTurn   int

	Board       *board.Board
	Catalogue   *cards.Catalogue
	Deck        *cards.Deck
	Territories map[string]*Territory
	Players     []*Player

	Pending *PendingCombat
	History []HistoryEntry

	WinnerID string
}

func (gs *GameState) player(id string) *Player {
	for _, p := range gs.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (gs *GameState) current() *Player {
	if gs.CurrentPlayer < 0 || gs.CurrentPlayer >= len(gs.Players) {
		return nil
	}
	return gs.Players[gs.CurrentPlayer]
}

// ownedTowns returns the towns owned by playerID in board order.
func (gs *GameState) ownedTowns(playerID string) []string {
	var out []string
	for _, id := range gs.Board.Towns() {
		if gs.Territories[id].OwnerID == playerID {
			out = append(out, id)
		}
	}
	return out
}

// ownedHoldings returns every holding (towns and seats) owned by playerID in board order.
func (gs *GameState) ownedHoldings(playerID string) []string {
	var out []string
	for _, id := range gs.Board.IDs() {
		if gs.Territories[id].OwnerID == playerID {
			out = append(out, id)
		}
	}
	return out
}

func (gs *GameState) townsInCountyOwnedBy(playerID, county string) int {
	n := 0
	for _, id := range gs.Board.TownsInCounty(county) {
		if gs.Territories[id].OwnerID == playerID {
			n++
		}
	}
	return n
}

func (gs *GameState) ownsTownInDuchy(playerID, duchy string) bool {
	for _, c := range gs.Board.CountiesInDuchy(duchy) {
		if gs.townsInCountyOwnedBy(playerID, c) > 0 {
			return true
		}
	}
	return false
}

// fortsPlacedBy sums the player's fortifications across the board.
func (gs *GameState) fortsPlacedBy(playerID string) int {
	n := 0
	for _, t := range gs.Territories {
		n += t.Forts[playerID]
	}
	return n
}

func (gs *GameState) king() *Player {
	for _, p := range gs.Players {
		if p.IsKing {
			return p
		}
	}
	return nil
}

// cardsInPlay counts every card id tracked by the state: draw pile, discard
// pile, hands and cards committed to a pending combat.
func (gs *GameState) cardsInPlay() int {
	n := gs.Deck.Len() + gs.Deck.DiscardLen()
	for _, p := range gs.Players {
		n += len(p.Hand)
	}
	if gs.Pending != nil {
		n += len(gs.Pending.Cards)
	}
	return n
}
